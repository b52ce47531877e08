package dag

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RefStore manages branch name -> commit ID mappings as files.
// Each ref is a file in the heads directory whose content is the commit ID.
// Filenames are path-escaped so tracking branches like "origin/master" stay flat.
type RefStore struct {
	dir string
}

// NewRefStore creates a RefStore at the given directory.
func NewRefStore(dir string) (*RefStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create refs dir: %w", err)
	}
	return &RefStore{dir: dir}, nil
}

func refFilename(name string) string {
	return url.PathEscape(name)
}

func refNameFromFilename(file string) (string, error) {
	return url.PathUnescape(file)
}

// ValidRefName reports whether name can be used as a branch name.
func ValidRefName(name string) bool {
	if name == "" || strings.TrimSpace(name) != name {
		return false
	}
	return !strings.HasPrefix(name, ".") && !strings.ContainsAny(name, "\x00\n")
}

// Set writes a ref mapping name -> id.
func (r *RefStore) Set(name string, id ID) error {
	if !ValidRefName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	}
	path := filepath.Join(r.dir, refFilename(name))
	if err := SafeWrite(path, []byte(string(id)+"\n"), 0644); err != nil {
		return fmt.Errorf("write ref %s: %w", name, err)
	}
	return nil
}

// Get resolves a branch name to a commit ID.
func (r *RefStore) Get(name string) (ID, error) {
	path := filepath.Join(r.dir, refFilename(name))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrRefNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("read ref %s: %w", name, err)
	}
	id := ID(strings.TrimSpace(string(data)))
	if !id.Valid() {
		return "", fmt.Errorf("ref %s holds malformed id %q", name, id)
	}
	return id, nil
}

// Delete removes a ref.
func (r *RefStore) Delete(name string) error {
	err := os.Remove(filepath.Join(r.dir, refFilename(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRefNotFound, name)
	}
	return err
}

// Has checks if a ref exists.
func (r *RefStore) Has(name string) bool {
	_, err := os.Stat(filepath.Join(r.dir, refFilename(name)))
	return err == nil
}

// List returns all ref names in lexical order.
func (r *RefStore) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || isTempName(e.Name()) {
			continue
		}
		name, err := refNameFromFilename(e.Name())
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Head is the single-line file naming the current branch.
type Head struct {
	path string
}

// NewHead returns the HEAD file at path.
func NewHead(path string) *Head {
	return &Head{path: path}
}

// Branch returns the current branch name.
func (h *Head) Branch() (string, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", errors.New("HEAD is empty")
	}
	return name, nil
}

// Set points HEAD at branch.
func (h *Head) Set(branch string) error {
	if err := SafeWrite(h.path, []byte(branch+"\n"), 0644); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}
