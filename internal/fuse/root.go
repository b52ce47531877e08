package fuse

import (
	"context"
	"net/url"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

// RootNode is the mountpoint directory. Contains "HEAD", "branches/",
// "commits/", "cids/" and "log/".
type RootNode struct {
	fs.Inode
	db *dag.Database
}

var _ = (fs.NodeOnAdder)((*RootNode)(nil))
var _ = (fs.NodeGetattrer)((*RootNode)(nil))

func (r *RootNode) OnAdd(ctx context.Context) {
	head := newLiveFile(ctx, &r.Inode, stableIno("HEAD"), r.headBytes)
	r.AddChild("HEAD", head, true)

	dirs := []struct {
		name string
		node fs.InodeEmbedder
	}{
		{"branches", &BranchesDir{db: r.db}},
		{"commits", &CommitsDir{db: r.db}},
		{"cids", &CidsDir{db: r.db}},
		{"log", &LogDir{db: r.db}},
	}
	for _, d := range dirs {
		child := r.NewPersistentInode(ctx, d.node, fs.StableAttr{
			Mode: syscall.S_IFDIR,
			Ino:  stableIno(d.name),
		})
		r.AddChild(d.name, child, true)
	}
}

func (r *RootNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	dirAttr(out, stableIno("/"))
	return fs.OK
}

// headBytes names the current branch and its tip.
func (r *RootNode) headBytes() ([]byte, error) {
	branch, err := r.db.Head.Branch()
	if err != nil {
		return nil, err
	}
	tip, err := r.db.Refs.Get(branch)
	if err != nil {
		return nil, err
	}
	return []byte(branch + " " + string(tip) + "\n"), nil
}

// BranchesDir lists every branch as a snapshot directory. Names containing
// "/" are path-escaped.
type BranchesDir struct {
	fs.Inode
	db *dag.Database
}

var _ = (fs.NodeLookuper)((*BranchesDir)(nil))
var _ = (fs.NodeReaddirer)((*BranchesDir)(nil))
var _ = (fs.NodeGetattrer)((*BranchesDir)(nil))

func (d *BranchesDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	dirAttr(out, stableIno("branches"))
	return fs.OK
}

func (d *BranchesDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	names, err := d.db.Refs.List()
	if err != nil {
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, len(names))
	for i, name := range names {
		file := url.PathEscape(name)
		entries[i] = fuse.DirEntry{
			Name: file,
			Mode: syscall.S_IFDIR,
			Ino:  stableIno("branches", file),
		}
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *BranchesDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	branch, err := url.PathUnescape(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	c, err := d.db.Tip(branch)
	if err != nil {
		return nil, syscall.ENOENT
	}
	tree := &TreeDir{db: d.db, commit: c, base: "branches/" + name}
	child := d.NewInode(ctx, tree, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  tree.ino(),
	})
	return child, fs.OK
}

// CommitsDir lists every stored commit by full ID.
type CommitsDir struct {
	fs.Inode
	db *dag.Database
}

var _ = (fs.NodeLookuper)((*CommitsDir)(nil))
var _ = (fs.NodeReaddirer)((*CommitsDir)(nil))
var _ = (fs.NodeGetattrer)((*CommitsDir)(nil))

func (d *CommitsDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	dirAttr(out, stableIno("commits"))
	return fs.OK
}

func (d *CommitsDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	var entries []fuse.DirEntry
	for c, err := range d.db.Commits.All() {
		if err != nil {
			return nil, syscall.EIO
		}
		entries = append(entries, fuse.DirEntry{
			Name: string(c.ID),
			Mode: syscall.S_IFDIR,
			Ino:  stableIno("commits", string(c.ID)),
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *CommitsDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	id := dag.ID(name)
	if !id.Valid() {
		return nil, syscall.ENOENT
	}
	c, err := d.db.Commits.Lookup(id)
	if err != nil {
		return nil, syscall.ENOENT
	}
	tree := &TreeDir{db: d.db, commit: c, base: "commits/" + name}
	child := d.NewInode(ctx, tree, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  tree.ino(),
	})
	return child, fs.OK
}
