package fuse

import (
	"context"
	"strconv"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

const maxLogEntries = 64

// LogDir exposes the first-parent history of HEAD.
// Layout: log/HEAD (commit ID), log/0 (newest entry), log/1, ...
type LogDir struct {
	fs.Inode
	db *dag.Database
}

var _ = (fs.NodeLookuper)((*LogDir)(nil))
var _ = (fs.NodeReaddirer)((*LogDir)(nil))
var _ = (fs.NodeGetattrer)((*LogDir)(nil))

func (d *LogDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	dirAttr(out, stableIno("log"))
	return fs.OK
}

// history returns up to limit commits of HEAD's first-parent chain.
func history(db *dag.Database, limit int) ([]*dag.Commit, error) {
	branch, err := db.Head.Branch()
	if err != nil {
		return nil, err
	}
	tip, err := db.Refs.Get(branch)
	if err != nil {
		return nil, err
	}
	var commits []*dag.Commit
	for c, err := range db.Commits.FirstParentChain(tip) {
		if err != nil {
			return nil, err
		}
		if len(commits) == limit {
			break
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func (d *LogDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries := []fuse.DirEntry{
		{Name: "HEAD", Mode: syscall.S_IFREG, Ino: stableIno("log", "HEAD")},
	}
	commits, _ := history(d.db, maxLogEntries)
	for i := range commits {
		name := strconv.Itoa(i)
		entries = append(entries, fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFREG,
			Ino:  stableIno("log", name),
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *LogDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if name == "HEAD" {
		return newLiveFile(ctx, &d.Inode, stableIno("log", "HEAD"), d.headBytes), fs.OK
	}

	idx, err := strconv.Atoi(name)
	if err != nil || idx < 0 || idx >= maxLogEntries || strconv.Itoa(idx) != name {
		return nil, syscall.ENOENT
	}
	commits, _ := history(d.db, idx+1)
	if idx >= len(commits) {
		return nil, syscall.ENOENT
	}

	return newLiveFile(ctx, &d.Inode, stableIno("log", name), d.entryBytes(idx)), fs.OK
}

// entryBytes reads the idx-th entry of HEAD's history each time it is called.
func (d *LogDir) entryBytes(idx int) func() ([]byte, error) {
	return func() ([]byte, error) {
		commits, err := history(d.db, idx+1)
		if err != nil {
			return nil, err
		}
		if idx >= len(commits) {
			return nil, nil
		}
		return []byte(commits[idx].LogEntry()), nil
	}
}

func (d *LogDir) headBytes() ([]byte, error) {
	commits, err := history(d.db, 1)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return []byte("(none)\n"), nil
	}
	return []byte(string(commits[0].ID) + "\n"), nil
}
