package worktree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillyWorktree_Memory(t *testing.T) {
	w := New(memfs.New())

	files, err := w.List()
	require.NoError(t, err)
	assert.Empty(t, files)

	require.NoError(t, w.Write("b.txt", []byte("b")))
	require.NoError(t, w.Write("dir/a.txt", []byte("a")))
	require.NoError(t, w.Write(".gitlet/HEAD", []byte("master")))

	files, err = w.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt", "dir/a.txt"}, files)

	data, err := w.Read("dir/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	assert.True(t, w.Exists("b.txt"))
	assert.False(t, w.Exists("dir"), "directories are not files")

	require.NoError(t, w.Remove("b.txt"))
	require.NoError(t, w.Remove("b.txt"), "removing twice is fine")
	assert.False(t, w.Exists("b.txt"))

	_, err = w.Read("b.txt")
	assert.Error(t, err)
}

func TestBillyWorktree_RemovePrunesEmptyDirs(t *testing.T) {
	fs := memfs.New()
	w := New(fs)
	require.NoError(t, w.Write("a/b/c.txt", []byte("c")))
	require.NoError(t, w.Write("a/keep.txt", []byte("k")))

	require.NoError(t, w.Remove("a/b/c.txt"))
	_, err := fs.Stat("a/b")
	assert.True(t, os.IsNotExist(err), "empty a/b is pruned")
	assert.True(t, w.Exists("a/keep.txt"))

	require.NoError(t, w.Remove("a/keep.txt"))
	_, err = fs.Stat("a")
	assert.True(t, os.IsNotExist(err), "empty a is pruned")

	// A file may now take the directory's place.
	require.NoError(t, w.Write("a", []byte("file")))
	assert.True(t, w.Exists("a"))
}

func TestBillyWorktree_OS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ControlDir, "objects"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ControlDir, "objects", "x"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.txt"), []byte("top"), 0644))

	w := NewOS(dir)
	require.NoError(t, w.Write("nested/deep/f.txt", []byte("deep")))

	files, err := w.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"nested/deep/f.txt", "top.txt"}, files)

	got, err := os.ReadFile(filepath.Join(dir, "nested", "deep", "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "deep", string(got))

	require.NoError(t, w.Write("top.txt", []byte("overwritten")))
	data, err := w.Read("top.txt")
	require.NoError(t, err)
	assert.Equal(t, "overwritten", string(data))
}
