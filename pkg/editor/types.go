package editor

import (
	"errors"

	"github.com/goliatone/go-formbuilder/pkg/tree"
)

// End appends when used as a Position index.
const End = tree.End

// ErrDuplicateID is returned when a document handed to the engine reuses ids.
var ErrDuplicateID = errors.New("editor: duplicate id")

// Document is a tree flavor the engine can edit. Clone must return a copy
// sharing no references with the receiver.
type Document[D any, N any] interface {
	Roots() *[]N
	Clone() D
}

// Policy carries the rules that differ between tree flavors.
type Policy[N tree.Node[N]] interface {
	// CanInsert reports whether node may be placed in target. ancestors is the
	// chain from a root to target's owner, empty for the root collection.
	CanInsert(ancestors []N, target tree.Target[N], node N) bool
	// CanDetach reports whether the last node of path may be removed, moved,
	// duplicated or copied.
	CanDetach(path []N) bool
	// Patch returns a copy of node with patch applied.
	Patch(node N, patch map[string]any) (N, error)
}

// Position addresses an insertion point: a placement key (empty for the root,
// a container id or a branch id) and an index into that collection.
type Position struct {
	ParentID string
	Index    int
}

// AtEnd appends to the collection addressed by parentID.
func AtEnd(parentID string) Position {
	return Position{ParentID: parentID, Index: End}
}

// At inserts at index in the collection addressed by parentID.
func At(parentID string, index int) Position {
	return Position{ParentID: parentID, Index: index}
}

// Mode is the builder's UI mode. It has no effect on the document.
type Mode string

const (
	ModeDesign  Mode = "design"
	ModePreview Mode = "preview"
	ModeLogic   Mode = "logic"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDesign, ModePreview, ModeLogic:
		return true
	}
	return false
}

// State is a point-in-time view of an engine.
type State[D any] struct {
	Document     D
	SelectedID   string
	HasClipboard bool
	HistoryIndex int
	HistoryLen   int
	CanUndo      bool
	CanRedo      bool
	Dirty        bool
	Saving       bool
	Mode         Mode
	Revision     uint64
}

type snapshot[D any] struct {
	doc D
	rev uint64
}
