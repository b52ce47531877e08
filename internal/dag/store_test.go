package dag

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T, codec uint64) *ObjectStore {
	t.Helper()
	s, err := NewObjectStore(filepath.Join(t.TempDir(), "objects"), codec)
	if err != nil {
		t.Fatalf("NewObjectStore: %v", err)
	}
	return s
}

func TestObjectStore_PutGet(t *testing.T) {
	s := newTestStore(t, CodecBlob)

	data := []byte("hello world\n")
	id, err := s.Put(data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !id.Valid() {
		t.Fatalf("Put returned malformed id %q", id)
	}
	// sha1("hello world\n")
	if want := ID("22596363b3de40b06f981fb85d82312e8c0ed511"); id != want {
		t.Errorf("id = %s, want %s", id, want)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Get = %q, want %q", got, data)
	}
}

func TestObjectStore_PutIdempotent(t *testing.T) {
	s := newTestStore(t, CodecBlob)

	first, err := s.Put([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Put([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("ids differ: %s vs %s", first, second)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("store holds %d files, want 1", len(entries))
	}
}

func TestObjectStore_GetMissing(t *testing.T) {
	s := newTestStore(t, CodecBlob)

	_, err := s.Get(ID(strings.Repeat("a", idLen)))
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get missing: err = %v, want ErrObjectNotFound", err)
	}
	_, err = s.Get("../../etc/passwd")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get malformed: err = %v, want ErrObjectNotFound", err)
	}
	if s.Has("nothex") {
		t.Error("Has(malformed) = true")
	}
}

func TestObjectStore_List(t *testing.T) {
	s := newTestStore(t, CodecBlob)

	for _, d := range []string{"c", "a", "b"} {
		if _, err := s.Put([]byte(d)); err != nil {
			t.Fatal(err)
		}
	}
	ids, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("List: got %d ids, want 3", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("List not sorted: %v", ids)
		}
	}
}

func TestObjectStore_CIDRoundTrip(t *testing.T) {
	blobs := newTestStore(t, CodecBlob)
	commits := newTestStore(t, CodecCommit)
	data := []byte("payload")

	blobID, err := blobs.Put(data)
	if err != nil {
		t.Fatal(err)
	}
	commitID, err := commits.Put(data)
	if err != nil {
		t.Fatal(err)
	}
	if blobID != commitID {
		t.Fatalf("digest depends on codec: %s vs %s", blobID, commitID)
	}

	bc, err := blobs.CID(blobID)
	if err != nil {
		t.Fatal(err)
	}
	cc, err := commits.CID(commitID)
	if err != nil {
		t.Fatal(err)
	}
	if bc.Equals(cc) {
		t.Error("blob and commit CIDs should differ by codec")
	}
	if bc.Type() != CodecBlob || cc.Type() != CodecCommit {
		t.Errorf("codecs = %x/%x, want %x/%x", bc.Type(), cc.Type(), CodecBlob, CodecCommit)
	}

	back, err := IDFromCID(bc)
	if err != nil {
		t.Fatal(err)
	}
	if back != blobID {
		t.Errorf("IDFromCID = %s, want %s", back, blobID)
	}
	if s := FormatCID(bc); !strings.HasPrefix(s, "b") {
		t.Errorf("FormatCID = %q, want base32 multibase prefix", s)
	}
}

func TestID_Short(t *testing.T) {
	id := ID("0123456789abcdef0123456789abcdef01234567")
	if got := id.Short(); got != "0123456" {
		t.Errorf("Short = %q, want %q", got, "0123456")
	}
	if got := ID("abc").Short(); got != "abc" {
		t.Errorf("Short of short id = %q", got)
	}
}
