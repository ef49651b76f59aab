package history_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/history"
)

func TestUndoRedoBounds(t *testing.T) {
	h := history.New("a", 0)

	if _, ok := h.Undo(); ok {
		t.Fatalf("undo at index 0 should be a no-op")
	}
	if h.Index() != 0 || h.Current() != "a" {
		t.Fatalf("cursor moved at lower bound: %d %q", h.Index(), h.Current())
	}

	h.Push("b")
	h.Push("c")
	if _, ok := h.Redo(); ok {
		t.Fatalf("redo at the end should be a no-op")
	}

	got, ok := h.Undo()
	if !ok || got != "b" {
		t.Fatalf("undo = %q %v", got, ok)
	}
	got, ok = h.Redo()
	if !ok || got != "c" {
		t.Fatalf("redo = %q %v", got, ok)
	}
}

func TestPushTruncatesRedoBranch(t *testing.T) {
	h := history.New("a", 0)
	h.Push("b")
	h.Undo()
	h.Push("c")

	if h.CanRedo() {
		t.Fatalf("redo branch should be gone")
	}
	if h.Len() != 2 || h.Current() != "c" {
		t.Fatalf("len=%d current=%q", h.Len(), h.Current())
	}
	got, _ := h.Undo()
	if got != "a" {
		t.Fatalf("undo should reach the common ancestor, got %q", got)
	}
}

func TestLimitDropsOldest(t *testing.T) {
	h := history.New(0, 3)
	for i := 1; i <= 5; i++ {
		h.Push(i)
	}
	if h.Len() != 3 || h.Index() != 2 || h.Current() != 5 {
		t.Fatalf("len=%d index=%d current=%d", h.Len(), h.Index(), h.Current())
	}

	var seen []int
	seen = append(seen, h.Current())
	for h.CanUndo() {
		v, _ := h.Undo()
		seen = append(seen, v)
	}
	if diff := cmp.Diff([]int{5, 4, 3}, seen); diff != "" {
		t.Fatalf("undo sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestReset(t *testing.T) {
	h := history.New("a", 0)
	h.Push("b")
	h.Push("c")
	h.Undo()

	h.Reset("saved")
	if h.Len() != 1 || h.Index() != 0 || h.Current() != "saved" {
		t.Fatalf("reset left len=%d index=%d current=%q", h.Len(), h.Index(), h.Current())
	}
	if h.CanUndo() || h.CanRedo() {
		t.Fatalf("reset history should not navigate")
	}
}
