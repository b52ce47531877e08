// Package repo implements the repository engine: staging, committing,
// checking out, merging and synchronizing with remotes over a working
// directory and a .gitlet object database.
package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/logging"
	"github.com/systemshift/gitlet/internal/stage"
	"github.com/systemshift/gitlet/internal/worktree"
)

const (
	StageFile   = "STAGE"
	RemotesFile = "remotes"

	DefaultBranch = "master"
)

// Options configure Init and Open. Zero values select the defaults.
type Options struct {
	// Worktree overrides the working directory. Defaults to the OS directory at root.
	Worktree worktree.Worktree
	// DefaultBranch names the branch Init creates.
	DefaultBranch string
	Logger        logrus.FieldLogger
	// Clock stamps new commits.
	Clock func() time.Time
}

// Repository is a working directory paired with its .gitlet database.
type Repository struct {
	root  string
	db    *dag.Database
	work  worktree.Worktree
	stage *stage.Stage
	log   logrus.FieldLogger
}

// ControlDir returns the .gitlet directory for a repository rooted at root.
func ControlDir(root string) string {
	return filepath.Join(root, worktree.ControlDir)
}

func newRepository(root string, db *dag.Database, opts Options) *Repository {
	r := &Repository{
		root: root,
		db:   db,
		work: opts.Worktree,
		log:  opts.Logger,
	}
	if r.work == nil {
		r.work = worktree.NewOS(root)
	}
	if r.log == nil {
		r.log = logging.Default()
	}
	if opts.Clock != nil {
		db.Commits.Clock = opts.Clock
	}
	return r
}

// Init creates a repository at root holding the shared initial commit on a
// single default branch.
func Init(root string, opts Options) (*Repository, error) {
	dir := ControlDir(root)
	if _, err := os.Stat(dir); err == nil {
		return nil, ErrAlreadyInitialized
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}

	branch := opts.DefaultBranch
	if branch == "" {
		branch = DefaultBranch
	}
	if !dag.ValidRefName(branch) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBranchName, branch)
	}

	db, err := dag.OpenDatabase(dir)
	if err != nil {
		return nil, err
	}
	r := newRepository(root, db, opts)
	r.stage = stage.New()

	initial, err := db.Commits.Init()
	if err != nil {
		return nil, err
	}
	if err := r.saveStage(); err != nil {
		return nil, err
	}
	if err := r.saveRemotes(map[string]string{}); err != nil {
		return nil, err
	}
	if err := db.Refs.Set(branch, initial.ID); err != nil {
		return nil, err
	}
	if err := db.Head.Set(branch); err != nil {
		return nil, err
	}
	r.log.WithFields(logging.Fields{
		logging.BranchFieldKey: branch,
		logging.CommitFieldKey: initial.ID,
	}).Debug("initialized repository")
	return r, nil
}

// Open opens the repository at root.
func Open(root string, opts Options) (*Repository, error) {
	dir := ControlDir(root)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, ErrNotInitialized
	}
	db, err := dag.OpenDatabase(dir)
	if err != nil {
		return nil, err
	}
	r := newRepository(root, db, opts)
	r.stage, err = stage.Load(filepath.Join(dir, StageFile))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Root returns the working directory root.
func (r *Repository) Root() string { return r.root }

// DB returns the object database.
func (r *Repository) DB() *dag.Database { return r.db }

// Stage returns the staging index. Callers must not mutate it.
func (r *Repository) Stage() *stage.Stage { return r.stage }

func (r *Repository) saveStage() error {
	if err := r.stage.Save(filepath.Join(r.db.Dir(), StageFile)); err != nil {
		return fmt.Errorf("save stage: %w", err)
	}
	return nil
}

// CurrentBranch returns the branch HEAD names.
func (r *Repository) CurrentBranch() (string, error) {
	return r.db.Head.Branch()
}

// HeadCommit returns the commit at the tip of the current branch.
func (r *Repository) HeadCommit() (*dag.Commit, error) {
	_, c, err := r.head()
	return c, err
}

func (r *Repository) head() (string, *dag.Commit, error) {
	branch, err := r.db.Head.Branch()
	if err != nil {
		return "", nil, err
	}
	c, err := r.db.Tip(branch)
	if err != nil {
		return "", nil, fmt.Errorf("resolve HEAD (%s): %w", branch, err)
	}
	return branch, c, nil
}

// cleanPath normalizes a user-supplied path to the slash-separated,
// root-relative form snapshots use.
func (r *Repository) cleanPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		rel, err := filepath.Rel(r.root, name)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		name = rel
	}
	p := path.Clean(filepath.ToSlash(name))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") ||
		p == worktree.ControlDir || strings.HasPrefix(p, worktree.ControlDir+"/") {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return p, nil
}

// untrackedConflicts lists working files that are untracked in current, not
// staged for addition, and would be overwritten by target.
func (r *Repository) untrackedConflicts(current, target *dag.Commit) ([]string, error) {
	files, err := r.work.List()
	if err != nil {
		return nil, err
	}
	var conflicts []string
	for _, p := range files {
		if current.Snapshot.Has(p) {
			continue
		}
		if _, staged := r.stage.StagedID(p); staged {
			continue
		}
		if target.Snapshot.Has(p) {
			conflicts = append(conflicts, p)
		}
	}
	sort.Strings(conflicts)
	return conflicts, nil
}

func (r *Repository) checkUntracked(current, target *dag.Commit) error {
	conflicts, err := r.untrackedConflicts(current, target)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("%w: %s", ErrUntrackedFileConflict, strings.Join(conflicts, ", "))
	}
	return nil
}

// materialize makes the working directory match target: every file current
// tracks that target does not is deleted, then every file target tracks is
// written. Blobs are read and path collisions checked before anything changes.
func (r *Repository) materialize(current, target *dag.Commit) error {
	var removed []string
	for _, p := range current.Snapshot.Paths() {
		if !target.Snapshot.Has(p) {
			removed = append(removed, p)
		}
	}
	if err := r.checkPathCollisions(target, removed); err != nil {
		return err
	}

	paths := target.Snapshot.Paths()
	contents := make([][]byte, len(paths))
	for i, p := range paths {
		data, err := r.blobFromCommit(target, p)
		if err != nil {
			return err
		}
		contents[i] = data
	}

	for _, p := range removed {
		if err := r.work.Remove(p); err != nil {
			return err
		}
	}
	for i, p := range paths {
		if err := r.work.Write(p, contents[i]); err != nil {
			return err
		}
	}
	return nil
}

// checkPathCollisions fails when a file target tracks would land on a
// directory still holding files, or under a path that stays a regular file,
// once the removed paths are gone.
func (r *Repository) checkPathCollisions(target *dag.Commit, removed []string) error {
	files, err := r.work.List()
	if err != nil {
		return err
	}
	gone := make(map[string]bool, len(removed))
	for _, p := range removed {
		gone[p] = true
	}
	remaining := make(map[string]bool, len(files))
	for _, f := range files {
		if !gone[f] {
			remaining[f] = true
		}
	}

	var blocked []string
	for _, p := range target.Snapshot.Paths() {
		for f := range remaining {
			if strings.HasPrefix(f, p+"/") {
				blocked = append(blocked, f)
			}
		}
		for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
			if remaining[dir] {
				blocked = append(blocked, dir)
			}
		}
	}
	if len(blocked) == 0 {
		return nil
	}
	sort.Strings(blocked)
	blocked = slices.Compact(blocked)
	return fmt.Errorf("%w: %s", ErrUntrackedFileConflict, strings.Join(blocked, ", "))
}

func (r *Repository) blobFromCommit(c *dag.Commit, p string) ([]byte, error) {
	blob, ok := c.Snapshot.Get(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFoundInCommit, p)
	}
	data, err := r.db.Blobs.Get(blob)
	if err != nil {
		return nil, fmt.Errorf("blob %s for %s in commit %s: %w", blob.Short(), p, c.ID.Short(), err)
	}
	return data, nil
}

func (r *Repository) writeFromCommit(c *dag.Commit, p string) error {
	data, err := r.blobFromCommit(c, p)
	if err != nil {
		return err
	}
	return r.work.Write(p, data)
}

// readBlob returns the content of blob, or nil when ok is false.
func (r *Repository) readBlob(blob dag.ID, ok bool) ([]byte, error) {
	if !ok {
		return nil, nil
	}
	return r.db.Blobs.Get(blob)
}
