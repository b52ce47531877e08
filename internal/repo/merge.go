package repo

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/logging"
)

// MergeOutcome says what Merge did.
type MergeOutcome int

const (
	// MergeCommitted recorded a merge commit with two parents.
	MergeCommitted MergeOutcome = iota
	// MergeUpToDate changed nothing: the given branch is an ancestor of HEAD.
	MergeUpToDate
	// MergeFastForward moved the current branch to the given tip.
	MergeFastForward
)

func (o MergeOutcome) String() string {
	switch o {
	case MergeCommitted:
		return "committed"
	case MergeUpToDate:
		return "up-to-date"
	case MergeFastForward:
		return "fast-forward"
	}
	return fmt.Sprintf("MergeOutcome(%d)", int(o))
}

// MergeResult describes a successful merge.
type MergeResult struct {
	Outcome MergeOutcome
	// Commit is the merge commit, or the new tip after a fast-forward.
	Commit *dag.Commit
	// Conflicts lists paths written with conflict markers, sorted.
	Conflicts []string
}

// Conflict reports whether any file was written with conflict markers.
func (m *MergeResult) Conflict() bool {
	return len(m.Conflicts) > 0
}

// ConflictContent renders a conflicted file. A nil side is an absent file.
func ConflictContent(current, given []byte) []byte {
	var b bytes.Buffer
	b.WriteString("<<<<<<< HEAD\n")
	b.Write(current)
	b.WriteString("=======\n")
	b.Write(given)
	b.WriteString(">>>>>>>\n")
	return b.Bytes()
}

// sameVersion compares two optional blob references.
func sameVersion(a dag.ID, aok bool, b dag.ID, bok bool) bool {
	return aok == bok && a == b
}

// Merge merges branch into the current branch.
func (r *Repository) Merge(branch string) (*MergeResult, error) {
	if !r.stage.IsClean() {
		return nil, ErrUncommittedChanges
	}
	if !r.db.Refs.Has(branch) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchBranch, branch)
	}
	current, head, err := r.head()
	if err != nil {
		return nil, err
	}
	if branch == current {
		return nil, ErrSelfMerge
	}
	other, err := r.db.Tip(branch)
	if err != nil {
		return nil, err
	}
	if err := r.checkUntracked(head, other); err != nil {
		return nil, err
	}

	splitID, err := r.db.Commits.SplitPoint(head.ID, other.ID)
	if err != nil {
		return nil, err
	}
	log := r.log.WithFields(logging.Fields{
		logging.BranchFieldKey: current,
		"given":                branch,
		"split":                splitID,
	})

	switch splitID {
	case other.ID:
		log.Debug("given branch is an ancestor")
		return &MergeResult{Outcome: MergeUpToDate, Commit: head}, nil
	case head.ID:
		if err := r.materialize(head, other); err != nil {
			return nil, err
		}
		if err := r.db.Refs.Set(current, other.ID); err != nil {
			return nil, err
		}
		r.stage.Clear()
		if err := r.saveStage(); err != nil {
			return nil, err
		}
		log.WithField(logging.CommitFieldKey, other.ID).Debug("fast-forwarded")
		return &MergeResult{Outcome: MergeFastForward, Commit: other}, nil
	}

	split, err := r.db.Commits.Lookup(splitID)
	if err != nil {
		return nil, err
	}
	conflicts, err := r.mergeSnapshots(split, head, other)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Merged %s into %s.", branch, current)
	c, err := r.commitStage(current, msg, head.ID, other.ID)
	if err != nil {
		return nil, err
	}
	log.WithFields(logging.Fields{
		logging.CommitFieldKey: c.ID,
		"conflicts":            len(conflicts),
	}).Debug("merged")
	return &MergeResult{Outcome: MergeCommitted, Commit: c, Conflicts: conflicts}, nil
}

// mergeSnapshots classifies every path known to split, head or other, updates
// the working directory and stages the result. It returns the conflicted paths.
func (r *Repository) mergeSnapshots(split, head, other *dag.Commit) ([]string, error) {
	paths := map[string]struct{}{}
	for _, c := range []*dag.Commit{split, head, other} {
		for _, p := range c.Snapshot.Paths() {
			paths[p] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	type write struct {
		path string
		data []byte
	}
	var (
		conflicts []string
		writes    []write
		removes   []string
	)
	for _, p := range sorted {
		s, sok := split.Snapshot.Get(p)
		c, cok := head.Snapshot.Get(p)
		g, gok := other.Snapshot.Get(p)

		headChanged := !sameVersion(s, sok, c, cok)
		otherChanged := !sameVersion(s, sok, g, gok)
		switch {
		case !otherChanged:
			// Keep HEAD's version, including an absence.
		case !headChanged:
			if gok {
				data, err := r.blobFromCommit(other, p)
				if err != nil {
					return nil, err
				}
				writes = append(writes, write{p, data})
				r.stage.Add(p, g)
			} else {
				removes = append(removes, p)
				r.stage.Remove(p)
			}
		case sameVersion(c, cok, g, gok):
			// Both sides made the same change.
		default:
			cur, err := r.readBlob(c, cok)
			if err != nil {
				return nil, err
			}
			giv, err := r.readBlob(g, gok)
			if err != nil {
				return nil, err
			}
			data := ConflictContent(cur, giv)
			id, err := r.db.Blobs.Put(data)
			if err != nil {
				return nil, err
			}
			writes = append(writes, write{p, data})
			r.stage.Add(p, id)
			conflicts = append(conflicts, p)
			r.log.WithField(logging.PathFieldKey, p).Debug("conflict")
		}
	}

	// Removals go first so a file may replace a directory that empties out.
	for _, p := range removes {
		if err := r.work.Remove(p); err != nil {
			return nil, err
		}
	}
	for _, w := range writes {
		if err := r.work.Write(w.path, w.data); err != nil {
			return nil, err
		}
	}
	return conflicts, nil
}
