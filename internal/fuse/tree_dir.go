package fuse

import (
	"context"
	"sort"
	"strings"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

// TreeDir is one directory level of a commit's snapshot. prefix is empty at
// the top level and ends in "/" below it.
type TreeDir struct {
	fs.Inode
	db     *dag.Database
	commit *dag.Commit
	base   string
	prefix string
}

var _ = (fs.NodeLookuper)((*TreeDir)(nil))
var _ = (fs.NodeReaddirer)((*TreeDir)(nil))
var _ = (fs.NodeGetattrer)((*TreeDir)(nil))

type treeEntry struct {
	name string
	dir  bool
}

// treeEntries lists the immediate children of prefix in snap.
func treeEntries(snap dag.Snapshot, prefix string) []treeEntry {
	seen := map[string]bool{}
	var entries []treeEntry
	for _, p := range snap.Paths() {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		name, _, nested := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, treeEntry{name: name, dir: nested})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries
}

func (d *TreeDir) ino() uint64 {
	return stableIno(d.base, d.prefix)
}

func (d *TreeDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	dirAttr(out, d.ino())
	out.SetTimes(nil, &d.commit.Timestamp, nil)
	return fs.OK
}

func (d *TreeDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children := treeEntries(d.commit.Snapshot, d.prefix)
	entries := make([]fuse.DirEntry, len(children))
	for i, e := range children {
		mode := uint32(syscall.S_IFREG)
		if e.dir {
			mode = syscall.S_IFDIR
		}
		entries[i] = fuse.DirEntry{
			Name: e.name,
			Mode: mode,
			Ino:  stableIno(d.base, d.prefix+e.name),
		}
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *TreeDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	for _, e := range treeEntries(d.commit.Snapshot, d.prefix) {
		if e.name != name {
			continue
		}
		if e.dir {
			sub := &TreeDir{db: d.db, commit: d.commit, base: d.base, prefix: d.prefix + name + "/"}
			return d.NewInode(ctx, sub, fs.StableAttr{Mode: syscall.S_IFDIR, Ino: sub.ino()}), fs.OK
		}
		blob, _ := d.commit.Snapshot.Get(d.prefix + name)
		return newDataFile(ctx, &d.Inode, stableIno(d.base, d.prefix+name), func() ([]byte, error) {
			return d.db.Blobs.Get(blob)
		}), fs.OK
	}
	return nil, syscall.ENOENT
}
