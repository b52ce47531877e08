package stage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
)

const (
	blobA = dag.ID("1111111111111111111111111111111111111111")
	blobB = dag.ID("2222222222222222222222222222222222222222")
)

func TestStage_AddRemoveExclusive(t *testing.T) {
	s := New()
	require.True(t, s.IsClean())

	s.Add("f.txt", blobA)
	id, ok := s.StagedID("f.txt")
	assert.True(t, ok)
	assert.Equal(t, blobA, id)
	assert.False(t, s.IsRemoved("f.txt"))

	s.Remove("f.txt")
	_, ok = s.StagedID("f.txt")
	assert.False(t, ok, "removal must drop the addition")
	assert.True(t, s.IsRemoved("f.txt"))

	s.Add("f.txt", blobB)
	assert.False(t, s.IsRemoved("f.txt"), "addition must drop the removal")
	id, _ = s.StagedID("f.txt")
	assert.Equal(t, blobB, id)
}

func TestStage_AddOverwrites(t *testing.T) {
	s := New()
	s.Add("f.txt", blobA)
	s.Add("f.txt", blobB)
	assert.Equal(t, map[string]dag.ID{"f.txt": blobB}, s.Added())
}

func TestStage_UnstageAndRestore(t *testing.T) {
	s := New()
	s.Add("a", blobA)
	s.Remove("b")

	s.Unstage("a")
	s.Unstage("b")
	assert.Empty(t, s.Added())
	assert.Equal(t, []string{"b"}, s.Removed(), "Unstage only touches additions")

	s.Restore("b")
	assert.True(t, s.IsClean())
}

func TestStage_Clear(t *testing.T) {
	s := New()
	s.Add("a", blobA)
	s.Remove("b")
	require.False(t, s.IsClean())

	s.Clear()
	assert.True(t, s.IsClean())
	assert.Empty(t, s.Removed())
}

func TestStage_Apply(t *testing.T) {
	base := dag.NewSnapshot(map[string]dag.ID{"keep": blobA, "drop": blobA, "edit": blobA})
	s := New()
	s.Add("edit", blobB)
	s.Add("new", blobB)
	s.Remove("drop")

	got := s.Apply(base)
	assert.Equal(t, map[string]dag.ID{"keep": blobA, "edit": blobB, "new": blobB}, got.Map())
	assert.Equal(t, 3, base.Len(), "base snapshot must not change")
}

func TestStage_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "STAGE")

	empty, err := Load(path)
	require.NoError(t, err)
	assert.True(t, empty.IsClean())

	s := New()
	s.Add("z.txt", blobA)
	s.Add("a.txt", blobB)
	s.Remove("gone.txt")
	s.Remove("also-gone.txt")
	require.NoError(t, s.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Added(), got.Added())
	assert.Equal(t, []string{"also-gone.txt", "gone.txt"}, got.Removed())
	assert.Equal(t, []string{"a.txt", "z.txt"}, got.AddedPaths())
}

func TestStage_RejectsOverlap(t *testing.T) {
	s := New()
	err := s.UnmarshalJSON([]byte(`{"added":{"f":"` + string(blobA) + `"},"removed":["f"]}`))
	assert.Error(t, err)
}
