package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/logging"
)

// Remote is a registered repository reachable through the filesystem.
type Remote struct {
	Name string
	// Path is the remote repository's .gitlet directory.
	Path string
}

// TrackingBranch names the local branch that mirrors branch on remote.
func TrackingBranch(remote, branch string) string {
	return remote + "/" + branch
}

func (r *Repository) remotesPath() string {
	return filepath.Join(r.db.Dir(), RemotesFile)
}

func (r *Repository) loadRemotes() (map[string]string, error) {
	data, err := os.ReadFile(r.remotesPath())
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read remotes: %w", err)
	}
	remotes := map[string]string{}
	if err := json.Unmarshal(data, &remotes); err != nil {
		return nil, fmt.Errorf("decode remotes: %w", err)
	}
	return remotes, nil
}

func (r *Repository) saveRemotes(remotes map[string]string) error {
	data, err := dag.CanonicalJSON(remotes)
	if err != nil {
		return fmt.Errorf("encode remotes: %w", err)
	}
	return dag.SafeWrite(r.remotesPath(), data, 0644)
}

// validRemoteName rejects names that would make a tracking branch
// remote/branch ambiguous.
func validRemoteName(name string) bool {
	return dag.ValidRefName(name) && !strings.Contains(name, "/")
}

// AddRemote registers name at path, the remote's .gitlet directory.
// The path is not checked until the remote is used.
func (r *Repository) AddRemote(name, path string) error {
	if !validRemoteName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidRemoteName, name)
	}
	remotes, err := r.loadRemotes()
	if err != nil {
		return err
	}
	if _, ok := remotes[name]; ok {
		return fmt.Errorf("%w: %s", ErrRemoteExists, name)
	}
	remotes[name] = filepath.FromSlash(path)
	if err := r.saveRemotes(remotes); err != nil {
		return err
	}
	r.log.WithField(logging.RemoteFieldKey, name).Debug("added remote")
	return nil
}

// RemoveRemote forgets name. Tracking branches are kept.
func (r *Repository) RemoveRemote(name string) error {
	remotes, err := r.loadRemotes()
	if err != nil {
		return err
	}
	if _, ok := remotes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchRemote, name)
	}
	delete(remotes, name)
	if err := r.saveRemotes(remotes); err != nil {
		return err
	}
	r.log.WithField(logging.RemoteFieldKey, name).Debug("removed remote")
	return nil
}

// Remotes lists the registered remotes sorted by name.
func (r *Repository) Remotes() ([]Remote, error) {
	remotes, err := r.loadRemotes()
	if err != nil {
		return nil, err
	}
	out := make([]Remote, 0, len(remotes))
	for name, path := range remotes {
		out = append(out, Remote{Name: name, Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// openRemote opens the database of a registered remote. "~" expands to the
// home directory; other relative paths are taken from the repository root.
func (r *Repository) openRemote(name string) (*dag.Database, error) {
	remotes, err := r.loadRemotes()
	if err != nil {
		return nil, err
	}
	path, ok := remotes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchRemote, name)
	}
	path, err = homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	for _, required := range []string{path, filepath.Join(path, dag.ObjectsDir), filepath.Join(path, dag.RefsDir)} {
		info, err := os.Stat(required)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrRemoteUnavailable, path)
		}
	}
	return dag.OpenDatabase(path)
}

// Push copies the current branch's history to branch on remote. The remote
// branch is created when missing; otherwise its tip must be an ancestor of HEAD.
func (r *Repository) Push(remote, branch string) error {
	dst, err := r.openRemote(remote)
	if err != nil {
		return err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	log := r.log.WithFields(logging.Fields{
		logging.RemoteFieldKey: remote,
		logging.BranchFieldKey: branch,
	})

	if dst.Refs.Has(branch) {
		tip, err := dst.Refs.Get(branch)
		if err != nil {
			return err
		}
		ok, err := r.db.Commits.IsAncestor(tip, head.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s/%s at %s", ErrNonFastForward, remote, branch, tip.Short())
		}
	}
	copied, err := r.db.Copy(dst, head.ID)
	if err != nil {
		return fmt.Errorf("push to %s: %w", remote, err)
	}
	if err := dst.Refs.Set(branch, head.ID); err != nil {
		return err
	}
	log.WithFields(logging.Fields{
		logging.CommitFieldKey: head.ID,
		"copied":               len(copied),
	}).Debug("pushed")
	return nil
}

// Fetch copies branch's history from remote and points the local tracking
// branch remote/branch at its tip. It returns the tracking branch name.
func (r *Repository) Fetch(remote, branch string) (string, error) {
	src, err := r.openRemote(remote)
	if err != nil {
		return "", err
	}
	if !src.Refs.Has(branch) {
		return "", fmt.Errorf("%w: %s/%s", ErrRemoteBranchNotFound, remote, branch)
	}
	tip, err := src.Refs.Get(branch)
	if err != nil {
		return "", err
	}
	copied, err := src.Copy(r.db, tip)
	if err != nil {
		return "", fmt.Errorf("fetch from %s: %w", remote, err)
	}
	tracking := TrackingBranch(remote, branch)
	if err := r.db.Refs.Set(tracking, tip); err != nil {
		return "", err
	}
	r.log.WithFields(logging.Fields{
		logging.RemoteFieldKey: remote,
		logging.BranchFieldKey: tracking,
		logging.CommitFieldKey: tip,
		"copied":               len(copied),
	}).Debug("fetched")
	return tracking, nil
}

// Pull fetches branch from remote and merges the tracking branch.
func (r *Repository) Pull(remote, branch string) (*MergeResult, error) {
	tracking, err := r.Fetch(remote, branch)
	if err != nil {
		return nil, err
	}
	return r.Merge(tracking)
}
