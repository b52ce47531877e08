package repo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
)

// linked returns a local repository with "origin" registered as a second one.
func linked(t *testing.T) (local, origin *testRepo) {
	t.Helper()
	local = newTestRepo(t)
	origin = newTestRepo(t)
	require.NoError(t, local.AddRemote("origin", ControlDir(origin.Root())))
	return local, origin
}

func TestRemoteRegistry(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.AddRemote("origin", "../elsewhere/.gitlet"))
	assert.ErrorIs(t, r.AddRemote("origin", "/tmp/x"), ErrRemoteExists)
	for _, bad := range []string{"", ".hidden", "up/stream"} {
		err := r.AddRemote(bad, "/tmp/x")
		assert.ErrorIs(t, err, ErrInvalidRemoteName, "name %q", bad)
		assert.NotErrorIs(t, err, ErrInvalidBranchName)
	}

	remotes, err := r.Remotes()
	require.NoError(t, err)
	assert.Equal(t, []Remote{{Name: "origin", Path: filepath.FromSlash("../elsewhere/.gitlet")}}, remotes)

	require.NoError(t, r.RemoveRemote("origin"))
	assert.ErrorIs(t, r.RemoveRemote("origin"), ErrNoSuchRemote)

	remotes, err = r.Remotes()
	require.NoError(t, err)
	assert.Empty(t, remotes)
}

func TestRemoteUnavailable(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.AddRemote("gone", filepath.Join(t.TempDir(), "missing", ".gitlet")))

	assert.ErrorIs(t, r.Push("gone", "master"), ErrRemoteUnavailable)
	_, err := r.Fetch("gone", "master")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.ErrorIs(t, r.Push("unknown", "master"), ErrNoSuchRemote)
}

func TestPush(t *testing.T) {
	local, origin := linked(t)
	first := local.commitFiles("one", map[string]string{"a.txt": "a"})
	second := local.commitFiles("two", map[string]string{"b.txt": "b"})

	require.NoError(t, local.Push("origin", "master"))
	assert.Equal(t, second.ID, origin.tip("master"))
	assert.True(t, origin.DB().Commits.Has(first.ID))
	for _, p := range second.Snapshot.Paths() {
		blob, _ := second.Snapshot.Get(p)
		assert.True(t, origin.DB().Blobs.Has(blob), p)
	}

	// A missing remote branch is created.
	require.NoError(t, local.Push("origin", "mirror"))
	assert.Equal(t, second.ID, origin.tip("mirror"))

	// Pushing again is a no-op.
	require.NoError(t, local.Push("origin", "master"))
	assert.Equal(t, second.ID, origin.tip("master"))
}

func TestPushNonFastForward(t *testing.T) {
	local, origin := linked(t)
	remoteTip := origin.commitFiles("remote only", map[string]string{"r.txt": "r"}).ID
	local.commitFiles("local only", map[string]string{"l.txt": "l"})

	err := local.Push("origin", "master")
	assert.ErrorIs(t, err, ErrNonFastForward)
	assert.Equal(t, remoteTip, origin.tip("master"))
}

func TestPushAfterMergingRemote(t *testing.T) {
	local, origin := linked(t)
	origin.commitFiles("remote", map[string]string{"r.txt": "r"})
	local.commitFiles("local", map[string]string{"l.txt": "l"})

	res, err := local.Pull("origin", "master")
	require.NoError(t, err)
	require.Equal(t, MergeCommitted, res.Outcome)
	assert.Equal(t, "Merged origin/master into master.", res.Commit.Message)

	// The remote tip is reachable only through the merge's second parent.
	require.NoError(t, local.Push("origin", "master"))
	assert.Equal(t, res.Commit.ID, origin.tip("master"))
}

func TestFetch(t *testing.T) {
	local, origin := linked(t)
	origin.commitFiles("one", map[string]string{"a.txt": "a"})
	require.NoError(t, origin.Branch("side"))
	require.NoError(t, origin.CheckoutBranch("side"))
	side := origin.commitFiles("side", map[string]string{"s.txt": "s"})
	require.NoError(t, origin.CheckoutBranch("master"))
	origin.commitFiles("two", map[string]string{"b.txt": "b"})
	res, err := origin.Merge("side")
	require.NoError(t, err)
	require.Equal(t, MergeCommitted, res.Outcome)
	tip := origin.tip("master")

	tracking, err := local.Fetch("origin", "master")
	require.NoError(t, err)
	assert.Equal(t, "origin/master", tracking)
	assert.Equal(t, tip, local.tip("origin/master"))
	assert.True(t, local.DB().Commits.Has(side.ID), "second parents are copied")

	head, err := local.HeadCommit()
	require.NoError(t, err)
	assert.Equal(t, dag.GenesisMessage, head.Message, "fetch does not touch the current branch")

	_, err = local.Fetch("origin", "nope")
	assert.ErrorIs(t, err, ErrRemoteBranchNotFound)
}

func TestPullFastForward(t *testing.T) {
	local, origin := linked(t)
	tip := origin.commitFiles("remote", map[string]string{"a.txt": "from origin"}).ID

	res, err := local.Pull("origin", "master")
	require.NoError(t, err)
	assert.Equal(t, MergeFastForward, res.Outcome)
	assert.Equal(t, tip, local.tip("master"))
	assert.Equal(t, "from origin", local.read("a.txt"))
}

func TestRemoteRelativePath(t *testing.T) {
	parent := t.TempDir()
	localRoot := filepath.Join(parent, "local")
	originRoot := filepath.Join(parent, "origin")

	origin, err := Init(originRoot, Options{Clock: tickingClock()})
	require.NoError(t, err)
	local, err := Init(localRoot, Options{Clock: tickingClock()})
	require.NoError(t, err)

	require.NoError(t, local.AddRemote("origin", "../origin/.gitlet"))
	require.NoError(t, local.Push("origin", "feature"))
	assert.True(t, origin.DB().Refs.Has("feature"))
}
