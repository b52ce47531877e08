package dag

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// ID is the lowercase hex form of an object's SHA-1 digest.
type ID string

// idLen is the length of a full hex ID.
const idLen = 2 * 20

// Short returns the 7-character abbreviation used in log output.
func (id ID) Short() string {
	if len(id) < 7 {
		return string(id)
	}
	return string(id[:7])
}

// Valid reports whether id is a well-formed full ID.
func (id ID) Valid() bool {
	if len(id) != idLen {
		return false
	}
	_, err := hex.DecodeString(string(id))
	return err == nil
}

// Codecs distinguishing the two object kinds.
const (
	CodecBlob   = gocid.Raw
	CodecCommit = gocid.DagJSON
)

// ObjectStore manages content-addressed immutable objects of a single kind on disk.
type ObjectStore struct {
	dir   string
	codec uint64
}

// NewObjectStore creates an ObjectStore at the given directory.
func NewObjectStore(dir string, codec uint64) (*ObjectStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create objects dir: %w", err)
	}
	return &ObjectStore{dir: dir, codec: codec}, nil
}

// ComputeCID computes a CIDv1 (SHA-1 multihash) for data under the given codec.
func ComputeCID(codec uint64, data []byte) (gocid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA1, -1)
	if err != nil {
		return gocid.Undef, fmt.Errorf("multihash: %w", err)
	}
	return gocid.NewCidV1(codec, mh), nil
}

// IDFromCID extracts the hex digest from a CID.
func IDFromCID(c gocid.Cid) (ID, error) {
	dm, err := multihash.Decode(c.Hash())
	if err != nil {
		return "", fmt.Errorf("decode multihash: %w", err)
	}
	return ID(hex.EncodeToString(dm.Digest)), nil
}

// FormatCID returns the base32lower multibase encoding of a CID.
func FormatCID(c gocid.Cid) string {
	encoded, _ := multibase.Encode(multibase.Base32, c.Bytes())
	return encoded
}

// Digest computes the ID that Put would assign to data.
func (s *ObjectStore) Digest(data []byte) (ID, error) {
	c, err := ComputeCID(s.codec, data)
	if err != nil {
		return "", err
	}
	return IDFromCID(c)
}

// CID rebuilds the self-describing content identifier of an ID.
func (s *ObjectStore) CID(id ID) (gocid.Cid, error) {
	digest, err := hex.DecodeString(string(id))
	if err != nil || len(digest) != idLen/2 {
		return gocid.Undef, fmt.Errorf("%w: malformed id %q", ErrObjectNotFound, id)
	}
	mh, err := multihash.Encode(digest, multihash.SHA1)
	if err != nil {
		return gocid.Undef, fmt.Errorf("multihash: %w", err)
	}
	return gocid.NewCidV1(s.codec, mh), nil
}

func (s *ObjectStore) path(id ID) string {
	return filepath.Join(s.dir, string(id))
}

// Put writes data to the object store, returning its ID.
// If the object already exists, this is a no-op.
func (s *ObjectStore) Put(data []byte) (ID, error) {
	id, err := s.Digest(data)
	if err != nil {
		return "", err
	}
	path := s.path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}
	if err := SafeWrite(path, data, 0444); err != nil {
		return "", fmt.Errorf("write object %s: %w", id, err)
	}
	return id, nil
}

// Get reads an object by ID.
func (s *ObjectStore) Get(id ID) ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", id, err)
	}
	return data, nil
}

// Has checks if an object exists.
func (s *ObjectStore) Has(id ID) bool {
	if !id.Valid() {
		return false
	}
	_, err := os.Stat(s.path(id))
	return err == nil
}

// List returns the IDs of all stored objects in lexical order.
func (s *ObjectStore) List() ([]ID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	ids := make([]ID, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || isTempName(e.Name()) {
			continue
		}
		if id := ID(e.Name()); id.Valid() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
