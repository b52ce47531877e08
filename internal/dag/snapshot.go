package dag

import (
	"encoding/json"
	"sort"
)

// Snapshot maps repository-relative paths to blob IDs. It is a value type:
// methods that change it return a new Snapshot and leave the receiver intact.
type Snapshot struct {
	files map[string]ID
}

// NewSnapshot builds a snapshot from a path -> blob map. The map is copied.
func NewSnapshot(files map[string]ID) Snapshot {
	m := make(map[string]ID, len(files))
	for p, id := range files {
		m[p] = id
	}
	return Snapshot{files: m}
}

// Get returns the blob tracked for path.
func (s Snapshot) Get(path string) (ID, bool) {
	id, ok := s.files[path]
	return id, ok
}

// Has reports whether path is tracked.
func (s Snapshot) Has(path string) bool {
	_, ok := s.files[path]
	return ok
}

// Len returns the number of tracked paths.
func (s Snapshot) Len() int { return len(s.files) }

// Paths returns the tracked paths in lexical order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Map returns a copy of the underlying map.
func (s Snapshot) Map() map[string]ID {
	m := make(map[string]ID, len(s.files))
	for p, id := range s.files {
		m[p] = id
	}
	return m
}

// Apply returns a new snapshot with additions overlaid and removals dropped.
func (s Snapshot) Apply(additions map[string]ID, removals []string) Snapshot {
	m := s.Map()
	for p, id := range additions {
		m[p] = id
	}
	for _, p := range removals {
		delete(m, p)
	}
	return Snapshot{files: m}
}

// Equal reports whether two snapshots track the same paths at the same blobs.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.files) != len(o.files) {
		return false
	}
	for p, id := range s.files {
		if other, ok := o.files[p]; !ok || other != id {
			return false
		}
	}
	return true
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.files == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.files)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var m map[string]ID
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		m = make(map[string]ID)
	}
	s.files = m
	return nil
}
