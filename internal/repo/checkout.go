package repo

import (
	"fmt"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/logging"
)

// CheckoutFile restores name to its version in HEAD. The stage is untouched.
func (r *Repository) CheckoutFile(name string) error {
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	return r.checkoutFile(head, name)
}

// CheckoutFileFromCommit restores name to its version in the commit id
// abbreviates.
func (r *Repository) CheckoutFileFromCommit(id, name string) error {
	c, err := r.db.Commits.Get(id)
	if err != nil {
		return err
	}
	return r.checkoutFile(c, name)
}

func (r *Repository) checkoutFile(c *dag.Commit, name string) error {
	p, err := r.cleanPath(name)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFoundInCommit, name)
	}
	if !c.Snapshot.Has(p) {
		return fmt.Errorf("%w: %s", ErrFileNotFoundInCommit, p)
	}
	if err := r.writeFromCommit(c, p); err != nil {
		return err
	}
	r.log.WithFields(logging.Fields{
		logging.PathFieldKey:   p,
		logging.CommitFieldKey: c.ID,
	}).Debug("checked out file")
	return nil
}

// CheckoutBranch makes name the current branch, replacing the working
// directory with its tip's snapshot and clearing the stage.
func (r *Repository) CheckoutBranch(name string) error {
	if !r.db.Refs.Has(name) {
		return fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	current, head, err := r.head()
	if err != nil {
		return err
	}
	if name == current {
		return ErrAlreadyOnBranch
	}
	target, err := r.db.Tip(name)
	if err != nil {
		return err
	}
	if err := r.checkUntracked(head, target); err != nil {
		return err
	}
	if err := r.materialize(head, target); err != nil {
		return err
	}
	if err := r.db.Head.Set(name); err != nil {
		return err
	}
	r.stage.Clear()
	if err := r.saveStage(); err != nil {
		return err
	}
	r.log.WithFields(logging.Fields{
		logging.BranchFieldKey: name,
		logging.CommitFieldKey: target.ID,
	}).Debug("switched branch")
	return nil
}

// Reset checks out the commit id abbreviates and moves the current branch to it.
func (r *Repository) Reset(id string) error {
	target, err := r.db.Commits.Get(id)
	if err != nil {
		return err
	}
	branch, head, err := r.head()
	if err != nil {
		return err
	}
	if err := r.checkUntracked(head, target); err != nil {
		return err
	}
	if err := r.materialize(head, target); err != nil {
		return err
	}
	if err := r.db.Refs.Set(branch, target.ID); err != nil {
		return err
	}
	r.stage.Clear()
	if err := r.saveStage(); err != nil {
		return err
	}
	r.log.WithFields(logging.Fields{
		logging.BranchFieldKey: branch,
		logging.CommitFieldKey: target.ID,
	}).Debug("reset")
	return nil
}

// Branch creates name pointing at HEAD's commit. HEAD does not move.
func (r *Repository) Branch(name string) error {
	if !dag.ValidRefName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}
	if r.db.Refs.Has(name) {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	if err := r.db.Refs.Set(name, head.ID); err != nil {
		return err
	}
	r.log.WithFields(logging.Fields{
		logging.BranchFieldKey: name,
		logging.CommitFieldKey: head.ID,
	}).Debug("created branch")
	return nil
}

// RemoveBranch deletes the pointer name. Commits stay in the store.
func (r *Repository) RemoveBranch(name string) error {
	if !r.db.Refs.Has(name) {
		return fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	if name == current {
		return ErrRemoveCurrentBranch
	}
	if err := r.db.Refs.Delete(name); err != nil {
		return err
	}
	r.log.WithField(logging.BranchFieldKey, name).Debug("removed branch")
	return nil
}

// Branches lists every branch name, sorted.
func (r *Repository) Branches() ([]string, error) {
	return r.db.Refs.List()
}
