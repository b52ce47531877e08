package cli

import (
	"errors"

	"github.com/systemshift/gitlet/internal/repo"
)

var (
	ErrNoCommand         = errors.New("no command")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrIncorrectOperands = errors.New("incorrect operands")

	// errBranchNotFound marks a missing branch named as an operand rather
	// than as a checkout target; the two read differently.
	errBranchNotFound = errors.New("named branch does not exist")
)

// userMessages maps user errors to the line printed for them. Order matters:
// the first match wins.
var userMessages = []struct {
	err error
	msg string
}{
	{ErrNoCommand, "Please enter a command."},
	{ErrUnknownCommand, "No command with that name exists."},
	{ErrIncorrectOperands, "Incorrect operands."},
	{errBranchNotFound, "A branch with that name does not exist."},
	{repo.ErrAlreadyInitialized, "A Gitlet version-control system already exists in the current directory."},
	{repo.ErrNotInitialized, "Not in an initialized Gitlet directory."},
	{repo.ErrFileNotFound, "File does not exist."},
	{repo.ErrNothingToRemove, "No reason to remove the file."},
	{repo.ErrEmptyCommitMessage, "Please enter a commit message."},
	{repo.ErrNothingToCommit, "No changes added to the commit."},
	{repo.ErrFileNotFoundInCommit, "File does not exist in that commit."},
	{repo.ErrCommitNotFound, "No commit with that id exists."},
	{repo.ErrAmbiguousID, "Ambiguous commit id."},
	{repo.ErrNoSuchBranch, "No such branch exists."},
	{repo.ErrAlreadyOnBranch, "No need to checkout the current branch."},
	{repo.ErrUntrackedFileConflict, "There is an untracked file in the way; delete it, or add and commit it first."},
	{repo.ErrBranchExists, "A branch with that name already exists."},
	{repo.ErrInvalidBranchName, "Invalid branch name."},
	{repo.ErrRemoveCurrentBranch, "Cannot remove the current branch."},
	{repo.ErrNoCommitWithMessage, "Found no commit with that message."},
	{repo.ErrUncommittedChanges, "You have uncommitted changes."},
	{repo.ErrSelfMerge, "Cannot merge a branch with itself."},
	{repo.ErrInvalidRemoteName, "Invalid remote name."},
	{repo.ErrRemoteExists, "A remote with that name already exists."},
	{repo.ErrNoSuchRemote, "A remote with that name does not exist."},
	{repo.ErrRemoteUnavailable, "Remote directory not found."},
	{repo.ErrNonFastForward, "Please pull down remote changes before pushing."},
	{repo.ErrRemoteBranchNotFound, "That remote does not have that branch."},
}

// Message returns the one-line message for a user error. ok is false for
// integrity errors.
func Message(err error) (msg string, ok bool) {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	return "", false
}
