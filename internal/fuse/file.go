package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// dataFile is a read-only file whose content is produced on demand. Live
// files follow the repository as it changes and bypass the page cache.
type dataFile struct {
	fs.Inode
	ino     uint64
	live    bool
	content func() ([]byte, error)
}

var _ = (fs.NodeGetattrer)((*dataFile)(nil))
var _ = (fs.NodeReader)((*dataFile)(nil))
var _ = (fs.NodeOpener)((*dataFile)(nil))

func (f *dataFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	data, err := f.content()
	if err != nil {
		return syscall.EIO
	}
	out.Mode = 0444
	out.Size = uint64(len(data))
	out.Ino = f.ino
	return fs.OK
}

func (f *dataFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	if f.live {
		return nil, fuse.FOPEN_DIRECT_IO, fs.OK
	}
	return nil, fuse.FOPEN_KEEP_CACHE, fs.OK
}

func (f *dataFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := f.content()
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(sliceAt(data, len(dest), off)), fs.OK
}

// sliceAt returns at most n bytes of data starting at off.
func sliceAt(data []byte, n int, off int64) []byte {
	if off >= int64(len(data)) || off < 0 {
		return nil
	}
	end := off + int64(n)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[off:end]
}

// newDataFile adds a file whose content never changes, such as a blob.
func newDataFile(ctx context.Context, parent *fs.Inode, ino uint64, content func() ([]byte, error)) *fs.Inode {
	return parent.NewInode(ctx, &dataFile{ino: ino, content: content}, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  ino,
	})
}

// newLiveFile adds a file that is recomputed on every read.
func newLiveFile(ctx context.Context, parent *fs.Inode, ino uint64, content func() ([]byte, error)) *fs.Inode {
	return parent.NewInode(ctx, &dataFile{ino: ino, live: true, content: content}, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  ino,
	})
}

func dirAttr(out *fuse.AttrOut, ino uint64) {
	out.Mode = 0555
	out.Ino = ino
}
