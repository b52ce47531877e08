package repo

import (
	"errors"

	"github.com/systemshift/gitlet/internal/dag"
)

// User errors. Each leaves the repository unchanged.
var (
	ErrAlreadyInitialized    = errors.New("repository already initialized")
	ErrNotInitialized        = errors.New("not in an initialized repository")
	ErrFileNotFound          = errors.New("file does not exist")
	ErrNothingToRemove       = errors.New("no reason to remove the file")
	ErrEmptyCommitMessage    = errors.New("empty commit message")
	ErrNothingToCommit       = errors.New("no changes added to the commit")
	ErrFileNotFoundInCommit  = errors.New("file does not exist in that commit")
	ErrNoSuchBranch          = errors.New("no such branch")
	ErrAlreadyOnBranch       = errors.New("already on branch")
	ErrUntrackedFileConflict = errors.New("untracked file in the way")
	ErrBranchExists          = errors.New("branch already exists")
	ErrInvalidBranchName     = errors.New("invalid branch name")
	ErrRemoveCurrentBranch   = errors.New("cannot remove the current branch")
	ErrNoCommitWithMessage   = errors.New("found no commit with that message")
	ErrUncommittedChanges    = errors.New("uncommitted changes")
	ErrSelfMerge             = errors.New("cannot merge a branch with itself")
	ErrInvalidRemoteName     = errors.New("invalid remote name")
	ErrRemoteExists          = errors.New("remote already exists")
	ErrNoSuchRemote          = errors.New("no such remote")
	ErrRemoteUnavailable     = errors.New("remote directory not found")
	ErrNonFastForward        = errors.New("remote branch is not an ancestor of the local head")
	ErrRemoteBranchNotFound  = errors.New("remote does not have that branch")
)

// Errors surfaced from the object layer.
var (
	ErrCommitNotFound = dag.ErrCommitNotFound
	ErrAmbiguousID    = dag.ErrAmbiguousID
	ErrObjectNotFound = dag.ErrObjectNotFound
)
