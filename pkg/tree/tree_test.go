package tree_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/tree"
)

type section struct {
	id       string
	children []*item
}

type item struct {
	id       string
	label    string
	children []*item
	sections []*section
	leaf     bool
}

func (i *item) NodeID() string      { return i.id }
func (i *item) SetNodeID(id string) { i.id = id }

func (i *item) Branches() []tree.Branch[*item] {
	if i.leaf {
		return nil
	}
	if len(i.sections) > 0 {
		out := make([]tree.Branch[*item], 0, len(i.sections))
		for _, s := range i.sections {
			out = append(out, tree.Branch[*item]{ID: s.id, Children: &s.children})
		}
		return out
	}
	return []tree.Branch[*item]{{Children: &i.children}}
}

func (i *item) Clone() *item {
	out := &item{id: i.id, label: i.label, leaf: i.leaf}
	for _, c := range i.children {
		out.children = append(out.children, c.Clone())
	}
	for _, s := range i.sections {
		cs := &section{id: s.id}
		for _, c := range s.children {
			cs.children = append(cs.children, c.Clone())
		}
		out.sections = append(out.sections, cs)
	}
	return out
}

func (i *item) RelabelBranches(next func() string) {
	for _, s := range i.sections {
		s.id = next()
	}
}

func leaf(id string) *item { return &item{id: id, label: id, leaf: true} }

func fixture() []*item {
	return []*item{
		leaf("a"),
		{id: "grid", children: []*item{leaf("b"), leaf("c")}},
		{id: "tabs", sections: []*section{
			{id: "tab-1", children: []*item{leaf("d")}},
			{id: "tab-2", children: []*item{leaf("e")}},
		}},
	}
}

func ids(nodes []*item) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.id)
	}
	return out
}

func TestFindDescendsIntoEveryBranch(t *testing.T) {
	roots := fixture()
	for _, id := range []string{"a", "grid", "c", "tabs", "e"} {
		node, ok := tree.Find(roots, id)
		if !ok || node.id != id {
			t.Fatalf("Find(%q) = %v, %v", id, node, ok)
		}
	}
	if _, ok := tree.Find(roots, "missing"); ok {
		t.Fatalf("expected missing id to be absent")
	}
	if _, ok := tree.Find(roots, ""); ok {
		t.Fatalf("expected empty id to be absent")
	}
}

func TestLocateReportsParentKey(t *testing.T) {
	roots := fixture()
	cases := []struct {
		id    string
		key   string
		index int
	}{
		{id: "a", key: "", index: 0},
		{id: "c", key: "grid", index: 1},
		{id: "e", key: "tab-2", index: 0},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			loc, ok := tree.Locate(&roots, tc.id)
			if !ok {
				t.Fatalf("locate %q failed", tc.id)
			}
			if loc.ParentKey() != tc.key || loc.Index != tc.index {
				t.Fatalf("got key=%q index=%d, want key=%q index=%d", loc.ParentKey(), loc.Index, tc.key, tc.index)
			}
		})
	}
}

func TestRemoveAndInsert(t *testing.T) {
	roots := fixture()

	removed, ok := tree.Remove(&roots, "b")
	if !ok || removed.id != "b" {
		t.Fatalf("remove b: %v %v", removed, ok)
	}
	grid, _ := tree.Find(roots, "grid")
	if diff := cmp.Diff([]string{"c"}, ids(grid.children)); diff != "" {
		t.Fatalf("grid children mismatch (-want +got):\n%s", diff)
	}

	if !tree.Insert(&roots, "tab-1", 0, removed) {
		t.Fatalf("insert into branch id failed")
	}
	tabs, _ := tree.Find(roots, "tabs")
	if diff := cmp.Diff([]string{"b", "d"}, ids(tabs.sections[0].children)); diff != "" {
		t.Fatalf("tab children mismatch (-want +got):\n%s", diff)
	}

	if !tree.Insert(&roots, "", tree.End, leaf("z")) {
		t.Fatalf("append at root failed")
	}
	if diff := cmp.Diff([]string{"a", "grid", "tabs", "z"}, ids(roots)); diff != "" {
		t.Fatalf("root mismatch (-want +got):\n%s", diff)
	}

	if tree.Insert(&roots, "a", 0, leaf("y")) {
		t.Fatalf("leaf must not accept children")
	}
	if tree.Insert(&roots, "nope", 0, leaf("y")) {
		t.Fatalf("unknown parent must not resolve")
	}
	if _, ok := tree.Remove(&roots, "nope"); ok {
		t.Fatalf("removing unknown id must report false")
	}
}

func TestInsertAtClampsIndex(t *testing.T) {
	children := []*item{leaf("a")}
	branch := tree.Branch[*item]{Children: &children}
	if got := tree.InsertAt(branch, 42, leaf("b")); got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	if got := tree.InsertAt(branch, 0, leaf("c")); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, ids(children)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveTargetUsesFirstBranchForNodeID(t *testing.T) {
	roots := fixture()
	target, ok := tree.ResolveTarget(&roots, "tabs")
	if !ok {
		t.Fatalf("expected tabs to resolve")
	}
	if target.Key() != "tab-1" || target.Len() != 1 {
		t.Fatalf("unexpected target key=%q len=%d", target.Key(), target.Len())
	}
	root, ok := tree.ResolveTarget(&roots, "")
	if !ok || root.Key() != "" || root.Len() != 3 {
		t.Fatalf("unexpected root target %+v", root)
	}
}

func TestPath(t *testing.T) {
	roots := fixture()
	path, ok := tree.Path(roots, "e")
	if !ok {
		t.Fatalf("expected path")
	}
	if diff := cmp.Diff([]string{"tabs", "e"}, ids(path)); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestRegenerateIDsCoversBranchEntries(t *testing.T) {
	original := fixture()[2]
	clone := original.Clone()

	n := 0
	tree.RegenerateIDs(clone, func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	})

	seen := map[string]bool{}
	for _, id := range tree.IDs([]*item{original}) {
		seen[id] = true
	}
	for _, id := range tree.IDs([]*item{clone}) {
		if seen[id] {
			t.Fatalf("id %q survived regeneration", id)
		}
	}
	if original.sections[0].children[0].id != "d" {
		t.Fatalf("regeneration leaked into the original")
	}
	if got := tree.Count([]*item{clone}); got != 3 {
		t.Fatalf("expected 3 nodes, got %d", got)
	}
}

func TestDuplicateIDs(t *testing.T) {
	roots := fixture()
	roots = append(roots, leaf("c"), leaf("tab-2"))
	if diff := cmp.Diff([]string{"c", "tab-2"}, tree.DuplicateIDs(roots)); diff != "" {
		t.Fatalf("duplicates mismatch (-want +got):\n%s", diff)
	}
}
