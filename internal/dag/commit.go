package dag

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GenesisMessage is the message of the root commit shared by every repository.
const GenesisMessage = "initial commit"

// LogDateFormat is the date layout used in log entries.
const LogDateFormat = "Mon Jan 2 15:04:05 2006 -0700"

// Commit is an immutable snapshot node in the history DAG.
// Serialized via CanonicalJSON and stored in the commit ObjectStore.
type Commit struct {
	ID        ID        `json:"-"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Parents   []ID      `json:"parents"` // first parent is the checked-out branch
	Snapshot  Snapshot  `json:"snapshot"`
}

// Genesis returns the root commit. Its content is fixed, so its ID is the same
// in every repository.
func Genesis() *Commit {
	c := &Commit{
		Message:   GenesisMessage,
		Timestamp: time.Unix(0, 0).UTC(),
		Parents:   []ID{},
		Snapshot:  NewSnapshot(nil),
	}
	return c
}

// Parent returns the first parent, or "" for the root commit.
func (c *Commit) Parent() ID {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// IsMerge reports whether the commit has two parents.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Encode returns the canonical bytes the commit ID is computed over.
func (c *Commit) Encode() ([]byte, error) {
	wire := *c
	if wire.Parents == nil {
		wire.Parents = []ID{}
	}
	wire.Timestamp = wire.Timestamp.UTC()
	return CanonicalJSON(&wire)
}

// DecodeCommit unmarshals a stored commit and stamps it with id.
func DecodeCommit(id ID, data []byte) (*Commit, error) {
	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal commit %s: %w", id, err)
	}
	if c.Parents == nil {
		c.Parents = []ID{}
	}
	c.ID = id
	return &c, nil
}

// LogEntry formats the commit the way log and global-log print it.
func (c *Commit) LogEntry() string {
	var b strings.Builder
	b.WriteString("===\n")
	fmt.Fprintf(&b, "commit %s\n", c.ID)
	if c.IsMerge() {
		fmt.Fprintf(&b, "Merge: %s %s\n", c.Parents[0].Short(), c.Parents[1].Short())
	}
	fmt.Fprintf(&b, "Date: %s\n", c.Timestamp.Local().Format(LogDateFormat))
	b.WriteString(c.Message)
	b.WriteString("\n")
	return b.String()
}
