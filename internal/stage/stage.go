// Package stage holds the staging index: the pending additions and removals
// that the next commit will apply on top of the current commit's snapshot.
package stage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/systemshift/gitlet/internal/dag"
)

// Stage records files staged for addition (path -> blob) and paths staged for
// removal. A path is never in both.
type Stage struct {
	added   map[string]dag.ID
	removed mapset.Set[string]
}

// New returns an empty stage.
func New() *Stage {
	return &Stage{
		added:   make(map[string]dag.ID),
		removed: mapset.NewThreadUnsafeSet[string](),
	}
}

// Add stages path for addition at blob id, replacing any earlier entry and
// cancelling a pending removal.
func (s *Stage) Add(path string, id dag.ID) {
	s.added[path] = id
	s.removed.Remove(path)
}

// Remove stages path for removal.
func (s *Stage) Remove(path string) {
	delete(s.added, path)
	s.removed.Add(path)
}

// Unstage drops a pending addition of path.
func (s *Stage) Unstage(path string) {
	delete(s.added, path)
}

// Restore drops any pending addition or removal of path.
func (s *Stage) Restore(path string) {
	delete(s.added, path)
	s.removed.Remove(path)
}

// IsClean reports whether nothing is staged.
func (s *Stage) IsClean() bool {
	return len(s.added) == 0 && s.removed.Cardinality() == 0
}

// Clear empties both sets.
func (s *Stage) Clear() {
	s.added = make(map[string]dag.ID)
	s.removed.Clear()
}

// StagedID returns the blob staged for path, if any.
func (s *Stage) StagedID(path string) (dag.ID, bool) {
	id, ok := s.added[path]
	return id, ok
}

// IsRemoved reports whether path is staged for removal.
func (s *Stage) IsRemoved(path string) bool {
	return s.removed.Contains(path)
}

// Added returns a copy of the staged additions.
func (s *Stage) Added() map[string]dag.ID {
	m := make(map[string]dag.ID, len(s.added))
	for p, id := range s.added {
		m[p] = id
	}
	return m
}

// AddedPaths returns the paths staged for addition in lexical order.
func (s *Stage) AddedPaths() []string {
	paths := make([]string, 0, len(s.added))
	for p := range s.added {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Removed returns the paths staged for removal in lexical order.
func (s *Stage) Removed() []string {
	paths := s.removed.ToSlice()
	sort.Strings(paths)
	return paths
}

// Apply overlays the stage onto a snapshot.
func (s *Stage) Apply(base dag.Snapshot) dag.Snapshot {
	return base.Apply(s.added, s.Removed())
}

type stageFile struct {
	Added   map[string]dag.ID `json:"added"`
	Removed []string          `json:"removed"`
}

func (s *Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(stageFile{Added: s.Added(), Removed: s.Removed()})
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var f stageFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	fresh := New()
	for p, id := range f.Added {
		fresh.added[p] = id
	}
	for _, p := range f.Removed {
		if _, ok := fresh.added[p]; ok {
			return fmt.Errorf("path %q staged for both addition and removal", p)
		}
		fresh.removed.Add(p)
	}
	*s = *fresh
	return nil
}

// Load reads a stage file. A missing file yields an empty stage.
func Load(path string) (*Stage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stage: %w", err)
	}
	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode stage: %w", err)
	}
	return s, nil
}

// Save writes the stage file atomically.
func (s *Stage) Save(path string) error {
	data, err := dag.CanonicalJSON(s)
	if err != nil {
		return fmt.Errorf("encode stage: %w", err)
	}
	return dag.SafeWrite(path, data, 0644)
}
