package editor_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/tree"
)

type box struct {
	ID     string
	Name   string
	Frozen bool
	Leaf   bool
	Kids   []*box
}

func (b *box) NodeID() string      { return b.ID }
func (b *box) SetNodeID(id string) { b.ID = id }

func (b *box) Branches() []tree.Branch[*box] {
	if b.Leaf {
		return nil
	}
	return []tree.Branch[*box]{{Children: &b.Kids}}
}

func (b *box) Clone() *box {
	out := *b
	out.Kids = nil
	for _, k := range b.Kids {
		out.Kids = append(out.Kids, k.Clone())
	}
	return &out
}

type doc struct {
	Items []*box
}

func (d *doc) Roots() *[]*box { return &d.Items }

func (d *doc) Clone() *doc {
	out := &doc{Items: []*box{}}
	for _, b := range d.Items {
		out.Items = append(out.Items, b.Clone())
	}
	return out
}

// frozenPolicy refuses to detach or insert into frozen boxes.
type frozenPolicy struct{}

func (frozenPolicy) CanInsert(ancestors []*box, _ tree.Target[*box], _ *box) bool {
	for _, a := range ancestors {
		if a.Frozen {
			return false
		}
	}
	return true
}

func (frozenPolicy) CanDetach(path []*box) bool {
	for _, b := range path {
		if b.Frozen {
			return false
		}
	}
	return true
}

func (frozenPolicy) Patch(node *box, patch map[string]any) (*box, error) {
	out := node.Clone()
	for key, value := range patch {
		if key != "name" {
			return nil, fmt.Errorf("unknown key %s", key)
		}
		out.Name, _ = value.(string)
	}
	return out, nil
}

type engine = editor.Engine[*doc, *box]

func newEngine(t *testing.T, initial *doc, opts ...editor.Option) *engine {
	t.Helper()
	if initial == nil {
		initial = &doc{Items: []*box{}}
	}
	opts = append([]editor.Option{editor.WithIDGenerator(ids.NewSequence("b"))}, opts...)
	e, err := editor.New[*doc, *box](initial, frozenPolicy{}, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func names(items []*box) []string {
	out := make([]string, 0, len(items))
	for _, b := range items {
		out = append(out, b.Name)
	}
	return out
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := editor.New[*doc, *box](&doc{Items: []*box{{ID: "a"}, {ID: "a"}}}, frozenPolicy{})
	if !errors.Is(err, editor.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	_, err = editor.New[*doc, *box](&doc{}, nil)
	if err == nil {
		t.Fatalf("expected error for missing policy")
	}
}

func TestPolicyGuardsFrozenSubtree(t *testing.T) {
	initial := &doc{Items: []*box{
		{ID: "frozen", Name: "header", Frozen: true, Kids: []*box{{ID: "title", Name: "title", Leaf: true}}},
		{ID: "open", Name: "body"},
	}}
	e := newEngine(t, initial)
	before := e.Document()

	if e.Remove("frozen") || e.Remove("title") {
		t.Fatalf("frozen subtree should not be removable")
	}
	if e.Move("title", editor.AtEnd("open")) {
		t.Fatalf("frozen child should not move")
	}
	if _, ok := e.Duplicate("frozen"); ok {
		t.Fatalf("frozen node should not duplicate")
	}
	if e.Copy("title") {
		t.Fatalf("frozen child should not copy")
	}
	if _, ok := e.Add(&box{Name: "x", Leaf: true}, editor.AtEnd("frozen")); ok {
		t.Fatalf("frozen node should not accept drops")
	}
	if diff := cmp.Diff(before, e.Document()); diff != "" {
		t.Fatalf("document changed (-want +got):\n%s", diff)
	}

	if changed, err := e.Update("frozen", map[string]any{"name": "Header"}); err != nil || !changed {
		t.Fatalf("updates stay allowed on frozen nodes: %v %v", changed, err)
	}
}

func TestUpdatePatchError(t *testing.T) {
	e := newEngine(t, &doc{Items: []*box{{ID: "a"}}})
	changed, err := e.Update("a", map[string]any{"color": "red"})
	if err == nil || changed {
		t.Fatalf("expected patch error, got changed=%v err=%v", changed, err)
	}
	if e.State().HistoryLen != 1 {
		t.Fatalf("failed patch pushed history")
	}
}

func TestAddAssignsMissingAndCollidingIDs(t *testing.T) {
	e := newEngine(t, &doc{Items: []*box{{ID: "b-1"}}})

	id, ok := e.Add(&box{ID: "b-1", Kids: []*box{{Leaf: true}, {ID: "dup", Leaf: true}, {ID: "dup", Leaf: true}}}, editor.AtEnd(""))
	if !ok {
		t.Fatalf("add failed")
	}
	if id == "b-1" || id == "" {
		t.Fatalf("colliding root id kept: %q", id)
	}
	got := tree.IDs(e.Document().Items)
	if dupes := tree.DuplicateIDs(e.Document().Items); len(dupes) > 0 {
		t.Fatalf("duplicates after add: %v (%v)", dupes, got)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 ids, got %v", got)
	}
}

func TestSubscribersSeeCommittedState(t *testing.T) {
	e := newEngine(t, nil)
	var seen []string
	e.Subscribe(func(s editor.State[*doc]) {
		seen = append(seen, strings.Join(names(s.Document.Items), ","))
	})

	e.Add(&box{Name: "a"}, editor.AtEnd(""))
	e.Add(&box{Name: "b"}, editor.At("", 0))
	e.Undo()
	e.Select("missing")

	if diff := cmp.Diff([]string{"a", "b,a", "a"}, seen); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestTargetAndLocate(t *testing.T) {
	e := newEngine(t, &doc{Items: []*box{{ID: "g", Kids: []*box{{ID: "x", Leaf: true}}}}})

	key, size, ok := e.Target("g")
	if !ok || key != "g" || size != 1 {
		t.Fatalf("target = %q %d %v", key, size, ok)
	}
	if _, _, ok := e.Target("x"); ok {
		t.Fatalf("leaf should not resolve as a target")
	}
	pos, ok := e.Locate("x")
	if !ok || pos != editor.At("g", 0) {
		t.Fatalf("locate = %+v %v", pos, ok)
	}
	path, _ := e.Ancestors("x")
	if len(path) != 2 || path[0].ID != "g" {
		t.Fatalf("ancestors = %v", path)
	}
}

func TestConcurrentUse(t *testing.T) {
	e := newEngine(t, nil)
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				e.Add(&box{Leaf: true}, editor.AtEnd(""))
				_ = e.State()
			}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	items := e.Document().Items
	if len(items) != 200 {
		t.Fatalf("expected 200 items, got %d", len(items))
	}
	seen := map[string]bool{}
	for _, b := range items {
		seen[b.ID] = true
	}
	if len(seen) != 200 {
		t.Fatalf("ids collided under concurrency: %d unique", len(seen))
	}
}
