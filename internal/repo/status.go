package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/systemshift/gitlet/internal/dag"
)

// ChangeKind describes an unstaged modification.
type ChangeKind string

const (
	Modified ChangeKind = "modified"
	Deleted  ChangeKind = "deleted"
)

// Change is a working file whose content differs from what would be committed.
type Change struct {
	Path string
	Kind ChangeKind
}

func (c Change) String() string {
	return fmt.Sprintf("%s (%s)", c.Path, c.Kind)
}

// Status summarizes branches, the stage and the working directory.
// Every list is sorted.
type Status struct {
	Current   string
	Branches  []string
	Staged    []string
	Removed   []string
	Changes   []Change
	Untracked []string
}

// Status compares the working directory against HEAD and the stage.
func (r *Repository) Status() (*Status, error) {
	current, head, err := r.head()
	if err != nil {
		return nil, err
	}
	branches, err := r.db.Refs.List()
	if err != nil {
		return nil, err
	}
	files, err := r.work.List()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Current:  current,
		Branches: branches,
		Staged:   r.stage.AddedPaths(),
		Removed:  r.stage.Removed(),
	}

	onDisk := make(map[string]bool, len(files))
	for _, p := range files {
		onDisk[p] = true
		staged, isStaged := r.stage.StagedID(p)
		tracked, isTracked := head.Snapshot.Get(p)
		removed := r.stage.IsRemoved(p)

		switch {
		case isStaged:
			id, err := r.digestWorking(p)
			if err != nil {
				return nil, err
			}
			if id != staged {
				st.Changes = append(st.Changes, Change{Path: p, Kind: Modified})
			}
		case isTracked && !removed:
			id, err := r.digestWorking(p)
			if err != nil {
				return nil, err
			}
			if id != tracked {
				st.Changes = append(st.Changes, Change{Path: p, Kind: Modified})
			}
		default:
			st.Untracked = append(st.Untracked, p)
		}
	}

	for _, p := range st.Staged {
		if !onDisk[p] {
			st.Changes = append(st.Changes, Change{Path: p, Kind: Deleted})
		}
	}
	for _, p := range head.Snapshot.Paths() {
		if onDisk[p] || r.stage.IsRemoved(p) {
			continue
		}
		if _, staged := r.stage.StagedID(p); staged {
			continue
		}
		st.Changes = append(st.Changes, Change{Path: p, Kind: Deleted})
	}
	sort.Slice(st.Changes, func(i, j int) bool { return st.Changes[i].Path < st.Changes[j].Path })
	return st, nil
}

func (r *Repository) digestWorking(p string) (dag.ID, error) {
	data, err := r.work.Read(p)
	if err != nil {
		return "", err
	}
	return r.db.Blobs.Digest(data)
}

// String renders the status report.
func (s *Status) String() string {
	var b strings.Builder
	section := func(title string, lines []string) {
		fmt.Fprintf(&b, "=== %s ===\n", title)
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	branches := make([]string, len(s.Branches))
	for i, name := range s.Branches {
		if name == s.Current {
			name = "*" + name
		}
		branches[i] = name
	}
	changes := make([]string, len(s.Changes))
	for i, c := range s.Changes {
		changes[i] = c.String()
	}

	section("Branches", branches)
	section("Staged Files", s.Staged)
	section("Removed Files", s.Removed)
	section("Modifications Not Staged For Commit", changes)
	section("Untracked Files", s.Untracked)
	return b.String()
}
