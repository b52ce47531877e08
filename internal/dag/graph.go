package dag

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

// Graph manages the commit DAG stored in an ObjectStore.
type Graph struct {
	store *ObjectStore
	// Clock stamps new commits. Defaults to time.Now.
	Clock func() time.Time
}

// NewGraph creates a Graph over the commit object store.
func NewGraph(store *ObjectStore) *Graph {
	return &Graph{store: store, Clock: time.Now}
}

// Put serializes and stores c, setting c.ID.
func (g *Graph) Put(c *Commit) (ID, error) {
	data, err := c.Encode()
	if err != nil {
		return "", fmt.Errorf("serialize commit: %w", err)
	}
	id, err := g.store.Put(data)
	if err != nil {
		return "", fmt.Errorf("store commit: %w", err)
	}
	c.ID = id
	return id, nil
}

// Init persists the genesis commit and returns it.
func (g *Graph) Init() (*Commit, error) {
	c := Genesis()
	if _, err := g.Put(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Create builds a commit over snapshot with the given parents, stamps it with
// the current time and persists it.
func (g *Graph) Create(message string, parents []ID, snapshot Snapshot) (*Commit, error) {
	if len(parents) > 2 {
		return nil, fmt.Errorf("commit with %d parents", len(parents))
	}
	ps := make([]ID, len(parents))
	copy(ps, parents)
	c := &Commit{
		Message:   message,
		Timestamp: g.Clock().UTC().Round(0),
		Parents:   ps,
		Snapshot:  snapshot,
	}
	if _, err := g.Put(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Has reports whether a commit with the full ID id is stored.
func (g *Graph) Has(id ID) bool {
	return g.store.Has(id)
}

// Raw returns the stored bytes of a commit.
func (g *Graph) Raw(id ID) ([]byte, error) {
	data, err := g.store.Get(id)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, id)
	}
	return data, err
}

// Lookup reads a commit by its full ID.
func (g *Graph) Lookup(id ID) (*Commit, error) {
	data, err := g.Raw(id)
	if err != nil {
		return nil, err
	}
	return DecodeCommit(id, data)
}

// Resolve expands an abbreviated ID to the unique full ID it prefixes.
func (g *Graph) Resolve(prefix string) (ID, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrCommitNotFound)
	}
	if id := ID(prefix); id.Valid() {
		if g.store.Has(id) {
			return id, nil
		}
		return "", fmt.Errorf("%w: %s", ErrCommitNotFound, prefix)
	}
	ids, err := g.store.List()
	if err != nil {
		return "", err
	}
	var match ID
	for _, id := range ids {
		if !strings.HasPrefix(string(id), prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
		}
		match = id
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrCommitNotFound, prefix)
	}
	return match, nil
}

// Get resolves a full or abbreviated ID and reads the commit.
func (g *Graph) Get(prefix string) (*Commit, error) {
	id, err := g.Resolve(prefix)
	if err != nil {
		return nil, err
	}
	return g.Lookup(id)
}

// Ancestors walks every parent link from id breadth-first and returns each
// reachable commit (id included, at depth 0) with the minimum number of
// parent hops needed to reach it.
func (g *Graph) Ancestors(id ID) (map[ID]int, error) {
	depths := map[ID]int{id: 0}
	queue := []ID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		c, err := g.Lookup(cur)
		if err != nil {
			return nil, err
		}
		for _, p := range c.Parents {
			if _, seen := depths[p]; seen {
				continue
			}
			depths[p] = depths[cur] + 1
			queue = append(queue, p)
		}
	}
	return depths, nil
}

// SplitPoint returns the common ancestor of a and b closest to a.
// Ties are broken by distance from b, then by the lexically smallest ID.
func (g *Graph) SplitPoint(a, b ID) (ID, error) {
	fromA, err := g.Ancestors(a)
	if err != nil {
		return "", err
	}
	fromB, err := g.Ancestors(b)
	if err != nil {
		return "", err
	}
	var best ID
	for id, da := range fromA {
		db, ok := fromB[id]
		if !ok {
			continue
		}
		if best == "" {
			best = id
			continue
		}
		bestA, bestB := fromA[best], fromB[best]
		switch {
		case da != bestA:
			if da < bestA {
				best = id
			}
		case db != bestB:
			if db < bestB {
				best = id
			}
		case id < best:
			best = id
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s and %s", ErrNoCommonAncestor, a.Short(), b.Short())
	}
	return best, nil
}

// IsAncestor reports whether ancestor is reachable from tip through any
// parent link. A commit is its own ancestor.
func (g *Graph) IsAncestor(ancestor, tip ID) (bool, error) {
	depths, err := g.Ancestors(tip)
	if err != nil {
		return false, err
	}
	_, ok := depths[ancestor]
	return ok, nil
}

// FirstParentChain yields commits from id back to the root following only
// first parents. Each range over the result starts again from id.
func (g *Graph) FirstParentChain(id ID) iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		cur := id
		for cur != "" {
			c, err := g.Lookup(cur)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
			cur = c.Parent()
		}
	}
}

// All yields every stored commit in ID order.
func (g *Graph) All() iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		ids, err := g.store.List()
		if err != nil {
			yield(nil, err)
			return
		}
		for _, id := range ids {
			c, err := g.Lookup(id)
			if !yield(c, err) || err != nil {
				return
			}
		}
	}
}
