package repo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	r := newTestRepo(t)
	r.commitFiles("base", map[string]string{
		"a.txt": "a",
		"b.txt": "b",
		"c.txt": "c",
		"d.txt": "d",
	})
	require.NoError(t, r.Branch("other"))

	r.write("a.txt", "a changed")
	require.NoError(t, r.Remove("b.txt"))
	r.write("b.txt", "b is back")
	r.delete("c.txt")
	r.write("e.txt", "e")
	require.NoError(t, r.Add("e.txt"))
	r.write("e.txt", "e changed")
	r.write("f.txt", "f")
	require.NoError(t, r.Add("f.txt"))
	r.delete("f.txt")
	r.write("g.txt", "g")

	got, err := r.Status()
	require.NoError(t, err)
	want := &Status{
		Current:  "master",
		Branches: []string{"master", "other"},
		Staged:   []string{"e.txt", "f.txt"},
		Removed:  []string{"b.txt"},
		Changes: []Change{
			{Path: "a.txt", Kind: Modified},
			{Path: "c.txt", Kind: Deleted},
			{Path: "e.txt", Kind: Modified},
			{Path: "f.txt", Kind: Deleted},
		},
		Untracked: []string{"b.txt", "g.txt"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Status() mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusClean(t *testing.T) {
	r := newTestRepo(t)
	r.commitFiles("base", map[string]string{"a.txt": "a"})

	got, err := r.Status()
	require.NoError(t, err)
	want := &Status{Current: "master", Branches: []string{"master"}}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Status() mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusString(t *testing.T) {
	st := &Status{
		Current:  "master",
		Branches: []string{"master", "other-branch"},
		Staged:   []string{"wug.txt", "wug2.txt"},
		Removed:  []string{"goodbye.txt"},
		Changes: []Change{
			{Path: "junk.txt", Kind: Deleted},
			{Path: "wug3.txt", Kind: Modified},
		},
		Untracked: []string{"random.stuff"},
	}
	want := `=== Branches ===
*master
other-branch

=== Staged Files ===
wug.txt
wug2.txt

=== Removed Files ===
goodbye.txt

=== Modifications Not Staged For Commit ===
junk.txt (deleted)
wug3.txt (modified)

=== Untracked Files ===
random.stuff

`
	if diff := cmp.Diff(want, st.String()); diff != "" {
		t.Errorf("String() mismatch (-want +got):\n%s", diff)
	}
}
