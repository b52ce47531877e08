// Package fuse exposes a repository's history as a read-only filesystem:
// every branch and every commit appears as a directory holding its snapshot.
package fuse

import (
	"github.com/hanwen/go-fuse/v2/fs"
	gofuse "github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

// Mount mounts a read-only view of db at mountpoint.
// Returns the server (call server.Wait() to block, server.Unmount() to stop).
func Mount(mountpoint string, db *dag.Database, debug bool) (*gofuse.Server, error) {
	root := &RootNode{db: db}

	opts := &fs.Options{
		MountOptions: gofuse.MountOptions{
			FsName:        "gitlet",
			Name:          "gitlet",
			DisableXAttrs: true,
			Debug:         debug,
		},
	}

	server, err := fs.Mount(mountpoint, root, opts)
	if err != nil {
		return nil, err
	}
	return server, nil
}
