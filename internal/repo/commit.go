package repo

import (
	"iter"
	"strings"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/logging"
)

// Commit records the stage applied to HEAD's snapshot as a new commit on the
// current branch and clears the stage.
func (r *Repository) Commit(message string) (*dag.Commit, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyCommitMessage
	}
	if r.stage.IsClean() {
		return nil, ErrNothingToCommit
	}
	branch, head, err := r.head()
	if err != nil {
		return nil, err
	}
	return r.commitStage(branch, message, head.ID)
}

// commitStage writes the commit object, then moves branch, then clears the stage.
func (r *Repository) commitStage(branch, message string, parents ...dag.ID) (*dag.Commit, error) {
	head, err := r.db.Commits.Lookup(parents[0])
	if err != nil {
		return nil, err
	}
	c, err := r.db.Commits.Create(message, parents, r.stage.Apply(head.Snapshot))
	if err != nil {
		return nil, err
	}
	if err := r.db.Refs.Set(branch, c.ID); err != nil {
		return nil, err
	}
	r.stage.Clear()
	if err := r.saveStage(); err != nil {
		return nil, err
	}
	r.log.WithFields(logging.Fields{
		logging.BranchFieldKey: branch,
		logging.CommitFieldKey: c.ID,
		"parents":              len(parents),
	}).Debug("committed")
	return c, nil
}

// Log yields the first-parent history of HEAD, newest first. Each range
// re-reads HEAD.
func (r *Repository) Log() iter.Seq2[*dag.Commit, error] {
	return func(yield func(*dag.Commit, error) bool) {
		head, err := r.HeadCommit()
		if err != nil {
			yield(nil, err)
			return
		}
		for c, err := range r.db.Commits.FirstParentChain(head.ID) {
			if !yield(c, err) || err != nil {
				return
			}
		}
	}
}

// GlobalLog yields every stored commit in no particular order.
func (r *Repository) GlobalLog() iter.Seq2[*dag.Commit, error] {
	return r.db.Commits.All()
}

// Find returns the IDs of every commit whose message is exactly message.
func (r *Repository) Find(message string) ([]dag.ID, error) {
	var ids []dag.ID
	for c, err := range r.db.Commits.All() {
		if err != nil {
			return nil, err
		}
		if c.Message == message {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoCommitWithMessage
	}
	return ids, nil
}
