package dag

import (
	"fmt"
	"os"
	"path/filepath"
)

// On-disk layout inside a .gitlet directory.
const (
	ObjectsDir = "objects"
	BlobsDir   = "blobs"
	CommitsDir = "commits"
	RefsDir    = "refs"
	HeadsDir   = "heads"
	HeadFile   = "HEAD"
)

// Database groups the object stores, the commit graph and the refs that live in
// one .gitlet directory. It holds no working-directory state, so a remote
// repository is opened as a Database too.
type Database struct {
	dir     string
	Blobs   *ObjectStore
	Commits *Graph
	Refs    *RefStore
	Head    *Head
}

// OpenDatabase opens or creates the object and ref layout under dir.
func OpenDatabase(dir string) (*Database, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", dir, err)
	}
	blobs, err := NewObjectStore(filepath.Join(dir, ObjectsDir, BlobsDir), CodecBlob)
	if err != nil {
		return nil, err
	}
	commits, err := NewObjectStore(filepath.Join(dir, ObjectsDir, CommitsDir), CodecCommit)
	if err != nil {
		return nil, err
	}
	refs, err := NewRefStore(filepath.Join(dir, RefsDir, HeadsDir))
	if err != nil {
		return nil, err
	}
	return &Database{
		dir:     dir,
		Blobs:   blobs,
		Commits: NewGraph(commits),
		Refs:    refs,
		Head:    NewHead(filepath.Join(dir, HeadFile)),
	}, nil
}

// Dir returns the .gitlet directory the database lives in.
func (d *Database) Dir() string {
	return d.dir
}

// Tip resolves a branch to its commit.
func (d *Database) Tip(branch string) (*Commit, error) {
	id, err := d.Refs.Get(branch)
	if err != nil {
		return nil, err
	}
	return d.Commits.Lookup(id)
}

// CommitCID returns the base32 CID of a stored commit.
func (d *Database) CommitCID(id ID) (string, error) {
	if !d.Commits.Has(id) {
		return "", fmt.Errorf("%w: %s", ErrCommitNotFound, id)
	}
	c, err := d.Commits.store.CID(id)
	if err != nil {
		return "", err
	}
	return FormatCID(c), nil
}

// Copy transfers every commit reachable from tip that dst lacks, together with
// the blobs those commits track. Commits are discovered breadth-first and
// written in topological order, parents before children, so dst never holds a
// commit whose parents are missing; traversal therefore stops at any commit dst
// already has.
// It returns the copied commit IDs in discovery order.
func (d *Database) Copy(dst *Database, tip ID) ([]ID, error) {
	var missing []*Commit
	byID := make(map[ID]*Commit)
	seen := map[ID]bool{tip: true}
	queue := []ID{tip}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if dst.Commits.Has(id) {
			continue
		}
		c, err := d.Commits.Lookup(id)
		if err != nil {
			return nil, err
		}
		missing = append(missing, c)
		byID[id] = c
		for _, p := range c.Parents {
			if !seen[p] {
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}

	for _, c := range parentsFirst(missing, byID) {
		for _, path := range c.Snapshot.Paths() {
			blob, _ := c.Snapshot.Get(path)
			if err := copyObject(d.Blobs, dst.Blobs, blob); err != nil {
				return nil, err
			}
		}
		if err := copyObject(d.Commits.store, dst.Commits.store, c.ID); err != nil {
			return nil, err
		}
	}

	ids := make([]ID, len(missing))
	for i, c := range missing {
		ids[i] = c.ID
	}
	return ids, nil
}

// parentsFirst orders commits so each one follows every parent that is also
// in byID. It is a depth-first post-order walk.
func parentsFirst(commits []*Commit, byID map[ID]*Commit) []*Commit {
	type frame struct {
		c    *Commit
		next int
	}
	order := make([]*Commit, 0, len(commits))
	visited := make(map[ID]bool, len(commits))
	for i := len(commits) - 1; i >= 0; i-- {
		start := commits[i]
		if visited[start.ID] {
			continue
		}
		visited[start.ID] = true
		stack := []frame{{c: start}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.c.Parents) {
				p := top.c.Parents[top.next]
				top.next++
				if pc, ok := byID[p]; ok && !visited[p] {
					visited[p] = true
					stack = append(stack, frame{c: pc})
				}
				continue
			}
			order = append(order, top.c)
			stack = stack[:len(stack)-1]
		}
	}
	return order
}

func copyObject(src, dst *ObjectStore, id ID) error {
	if dst.Has(id) {
		return nil
	}
	data, err := src.Get(id)
	if err != nil {
		return err
	}
	got, err := dst.Put(data)
	if err != nil {
		return err
	}
	if got != id {
		return fmt.Errorf("object %s rehashed to %s", id, got)
	}
	return nil
}
