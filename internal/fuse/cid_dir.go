package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

// CidsDir holds one file per stored commit, named by commit ID and
// containing the commit's base32 CID.
type CidsDir struct {
	fs.Inode
	db *dag.Database
}

var _ = (fs.NodeLookuper)((*CidsDir)(nil))
var _ = (fs.NodeReaddirer)((*CidsDir)(nil))
var _ = (fs.NodeGetattrer)((*CidsDir)(nil))

func (d *CidsDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	dirAttr(out, stableIno("cids"))
	return fs.OK
}

func (d *CidsDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	var entries []fuse.DirEntry
	for c, err := range d.db.Commits.All() {
		if err != nil {
			return nil, syscall.EIO
		}
		entries = append(entries, fuse.DirEntry{
			Name: string(c.ID),
			Mode: syscall.S_IFREG,
			Ino:  stableIno("cids", string(c.ID)),
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *CidsDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	id := dag.ID(name)
	if !id.Valid() || !d.db.Commits.Has(id) {
		return nil, syscall.ENOENT
	}
	return newDataFile(ctx, &d.Inode, stableIno("cids", name), func() ([]byte, error) {
		return d.cidBytes(id)
	}), fs.OK
}

func (d *CidsDir) cidBytes(id dag.ID) ([]byte, error) {
	c, err := d.db.CommitCID(id)
	if err != nil {
		return nil, err
	}
	return []byte(c + "\n"), nil
}
