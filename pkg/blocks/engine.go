// Package blocks is the row/column layout builder. Its tree is deliberately
// shallow: the root holds layout blocks, layouts hold leaf blocks, and
// locked structural blocks (header and footer) stay where they are.
package blocks

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/tree"
)

// State is a point-in-time view of the block builder.
type State = editor.State[*Document]

// Engine edits one block Document.
type Engine struct {
	core *editor.Engine[*Document, *Instance]
}

// New returns an engine editing NewDocument.
func New(opts ...editor.Option) *Engine {
	engine, err := NewWithDocument(NewDocument(), opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// NewWithDocument returns an engine editing a copy of doc.
func NewWithDocument(doc *Document, opts ...editor.Option) (*Engine, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	core, err := editor.New[*Document, *Instance](doc.Clone(), policy{}, opts...)
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}
	return &Engine{core: core}, nil
}

// Document returns a copy of the current block tree.
func (e *Engine) Document() *Document { return e.core.Document() }

// State returns the current engine state.
func (e *Engine) State() State { return e.core.State() }

// Subscribe registers fn for state changes.
func (e *Engine) Subscribe(fn func(State)) func() { return e.core.Subscribe(fn) }

// SetDocument replaces the tree and pushes a history entry.
func (e *Engine) SetDocument(doc *Document) error {
	if err := Validate(doc); err != nil {
		return err
	}
	return e.core.Replace(doc)
}

// Load replaces the tree with a persisted one, leaving the engine clean.
func (e *Engine) Load(doc *Document) error {
	if err := Validate(doc); err != nil {
		return err
	}
	return e.core.Load(doc)
}

// AddBlock drops a copy of b at pos. Layouts only land at the root, leaves
// only inside an unlocked layout. Root insertions never pass the pinned
// header or footer.
func (e *Engine) AddBlock(b *Instance, pos editor.Position) (string, bool) {
	if b == nil || !b.BlockType.Known() {
		return "", false
	}
	return e.core.Add(b, e.pin(pos, ""))
}

// UpdateBlock patches the block's attributes. Locked blocks stay editable.
func (e *Engine) UpdateBlock(id string, patch map[string]any) (bool, error) {
	return e.core.Update(id, patch)
}

// RemoveBlock deletes an unlocked block.
func (e *Engine) RemoveBlock(id string) bool { return e.core.Remove(id) }

// MoveBlock relocates an unlocked block.
func (e *Engine) MoveBlock(id string, pos editor.Position) bool {
	return e.core.Move(id, e.pin(pos, id))
}

// DuplicateBlock copies an unlocked block next to itself.
func (e *Engine) DuplicateBlock(id string) (string, bool) { return e.core.Duplicate(id) }

// SelectBlock selects id; an empty id clears the selection.
func (e *Engine) SelectBlock(id string) bool { return e.core.Select(id) }

// CopyBlock copies an unlocked block to the clipboard.
func (e *Engine) CopyBlock(id string) bool { return e.core.Copy(id) }

// PasteBlock inserts a fresh copy of the clipboard at pos.
func (e *Engine) PasteBlock(pos editor.Position) (string, bool) {
	return e.core.Paste(e.pin(pos, ""))
}

// MoveUp swaps the block with its previous sibling.
func (e *Engine) MoveUp(id string) bool { return e.shift(id, -1) }

// MoveDown swaps the block with its next sibling.
func (e *Engine) MoveDown(id string) bool { return e.shift(id, 1) }

// CanMove reports whether MoveUp (delta -1) or MoveDown (delta 1) would
// succeed for id.
func (e *Engine) CanMove(id string, delta int) bool {
	_, ok := e.neighbour(id, delta)
	return ok
}

// Undo steps back one history entry.
func (e *Engine) Undo() bool { return e.core.Undo() }

// Redo steps forward one history entry.
func (e *Engine) Redo() bool { return e.core.Redo() }

// MarkSaving flags an external save in progress.
func (e *Engine) MarkSaving(saving bool) { e.core.MarkSaving(saving) }

// SaveState records the current tree as persisted.
func (e *Engine) SaveState() { e.core.SaveState() }

// SaveStateAt records the tree at revision rev as persisted.
func (e *Engine) SaveStateAt(rev uint64) { e.core.SaveStateAt(rev) }

// IsDirty reports unsaved changes.
func (e *Engine) IsDirty() bool { return e.core.IsDirty() }

// Find returns a copy of the block with the given id.
func (e *Engine) Find(id string) (*Instance, bool) { return e.core.Find(id) }

// Locate returns the canonical placement of id.
func (e *Engine) Locate(id string) (editor.Position, bool) { return e.core.Locate(id) }

// Target resolves a placement key.
func (e *Engine) Target(parentID string) (string, int, bool) { return e.core.Target(parentID) }

// Ancestors returns copies of the blocks from a root down to id.
func (e *Engine) Ancestors(id string) ([]*Instance, bool) { return e.core.Ancestors(id) }

func (e *Engine) shift(id string, delta int) bool {
	pos, ok := e.neighbour(id, delta)
	if !ok {
		e.core.Logger().Debug("blocks: shift ignored", "id", id, "delta", delta)
		return false
	}
	return e.core.Move(id, pos)
}

// neighbour returns the position a one-step shift would move id to. Locked
// blocks do not move and are never jumped over.
func (e *Engine) neighbour(id string, delta int) (editor.Position, bool) {
	path, ok := e.core.Ancestors(id)
	if !ok || locked(path) {
		return editor.Position{}, false
	}
	pos, _ := e.core.Locate(id)
	siblings := e.siblings(pos.ParentID)
	next := pos.Index + delta
	if next < 0 || next >= len(siblings) || siblings[next].IsLocked {
		return editor.Position{}, false
	}
	return editor.At(pos.ParentID, next), true
}

func (e *Engine) siblings(parentID string) []*Instance {
	doc := e.core.Document()
	target, ok := tree.ResolveTarget(doc.Roots(), parentID)
	if !ok {
		return nil
	}
	return *target.Branch.Children
}

// pin keeps root insertions between the leading and trailing locked blocks.
// moving names a block about to leave the root, if any.
func (e *Engine) pin(pos editor.Position, moving string) editor.Position {
	key, _, ok := e.core.Target(pos.ParentID)
	if !ok || key != "" {
		return pos
	}
	roots := e.core.Document().Blocks
	if moving != "" {
		if at, ok := e.core.Locate(moving); ok && at.ParentID == "" {
			roots = append(roots[:at.Index:at.Index], roots[at.Index+1:]...)
		}
	}
	lead := 0
	for lead < len(roots) && roots[lead].IsLocked {
		lead++
	}
	trail := len(roots)
	for trail > lead && roots[trail-1].IsLocked {
		trail--
	}
	index := pos.Index
	if index < 0 || index > trail {
		index = trail
	}
	if index < lead {
		index = lead
	}
	return editor.At(pos.ParentID, index)
}

func locked(path []*Instance) bool {
	for _, b := range path {
		if b.IsLocked {
			return true
		}
	}
	return false
}

type policy struct{}

func (policy) CanInsert(ancestors []*Instance, target tree.Target[*Instance], b *Instance) bool {
	if b == nil || locked(ancestors) {
		return false
	}
	if !target.HasOwner {
		return b.BlockType.IsLayout() && !b.BlockType.IsZone()
	}
	return target.Owner.BlockType.IsLayout() && !b.BlockType.IsLayout()
}

func (policy) CanDetach(path []*Instance) bool { return !locked(path) }

func (policy) Patch(b *Instance, patch map[string]any) (*Instance, error) {
	return ApplyPatch(b, patch)
}
