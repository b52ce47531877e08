// Package worktree is the working-directory side of a repository: the files a
// user edits, addressed by slash-separated paths relative to the repository root.
package worktree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// ControlDir is the repository metadata directory, never treated as user content.
const ControlDir = ".gitlet"

// Worktree reads and writes working-directory files.
type Worktree interface {
	// List returns every regular file outside the control directory, sorted.
	List() ([]string, error)
	Read(name string) ([]byte, error)
	// Write replaces name with data, creating parent directories as needed.
	Write(name string, data []byte) error
	// Remove deletes name and any parent directories it leaves empty.
	// Removing a missing file is not an error.
	Remove(name string) error
	Exists(name string) bool
}

// BillyWorktree implements Worktree over a go-billy filesystem.
type BillyWorktree struct {
	fs billy.Filesystem
}

var _ Worktree = (*BillyWorktree)(nil)

// New wraps fs, whose root is the repository root.
func New(fs billy.Filesystem) *BillyWorktree {
	return &BillyWorktree{fs: fs}
}

// NewOS returns a worktree rooted at dir on the local filesystem.
func NewOS(dir string) *BillyWorktree {
	return New(osfs.New(dir))
}

func (w *BillyWorktree) List() ([]string, error) {
	var files []string
	if _, err := w.fs.Lstat("."); errors.Is(err, fs.ErrNotExist) {
		return files, nil
	}
	err := util.Walk(w.fs, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ControlDir {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, filepath.ToSlash(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list working directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (w *BillyWorktree) Read(name string) ([]byte, error) {
	data, err := util.ReadFile(w.fs, filepath.FromSlash(name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func (w *BillyWorktree) Write(name string, data []byte) error {
	if dir := path.Dir(name); dir != "." {
		if err := w.fs.MkdirAll(filepath.FromSlash(dir), 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := util.WriteFile(w.fs, filepath.FromSlash(name), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (w *BillyWorktree) Remove(name string) error {
	err := w.fs.Remove(filepath.FromSlash(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	w.pruneEmpty(path.Dir(name))
	return nil
}

// pruneEmpty removes dir and its ancestors while they are empty.
func (w *BillyWorktree) pruneEmpty(dir string) {
	for dir != "." && dir != "/" {
		entries, err := w.fs.ReadDir(filepath.FromSlash(dir))
		if err != nil || len(entries) > 0 {
			return
		}
		if err := w.fs.Remove(filepath.FromSlash(dir)); err != nil {
			return
		}
		dir = path.Dir(dir)
	}
}

func (w *BillyWorktree) Exists(name string) bool {
	info, err := w.fs.Stat(filepath.FromSlash(name))
	return err == nil && !info.IsDir()
}
