// Package builder is the form-schema editor: the single authority through
// which a FormSchema changes while a user composes it. It owns selection,
// the clipboard and the undo/redo history.
package builder

import (
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/tree"
)

// Option customises an Engine.
type Option = editor.Option

// State is a point-in-time view of the builder.
type State = editor.State[*schema.FormSchema]

// Position addresses an insertion point.
type Position = editor.Position

// Mode is the builder UI mode.
type Mode = editor.Mode

// Builder UI modes.
const (
	ModeDesign  = editor.ModeDesign
	ModePreview = editor.ModePreview
	ModeLogic   = editor.ModeLogic
)

var (
	WithLogger                = editor.WithLogger
	WithIDGenerator           = editor.WithIDGenerator
	WithHistoryLimit          = editor.WithHistoryLimit
	WithCollapseHistoryOnSave = editor.WithCollapseHistoryOnSave
	WithRecordNoopUpdates     = editor.WithRecordNoopUpdates
)

// Root appends to the root fields collection.
func Root() Position { return editor.AtEnd("") }

// Into appends to the collection addressed by parentID.
func Into(parentID string) Position { return editor.AtEnd(parentID) }

// At inserts at index of the collection addressed by parentID.
func At(parentID string, index int) Position { return editor.At(parentID, index) }

// Engine edits one FormSchema.
type Engine struct {
	core *editor.Engine[*schema.FormSchema, *schema.Node]
}

// New returns an engine editing an empty schema.
func New(opts ...Option) *Engine {
	engine, err := NewWithSchema(schema.New(), opts...)
	if err != nil {
		// An empty schema always validates.
		panic(err)
	}
	return engine
}

// NewWithSchema returns an engine editing a copy of s, which becomes the
// clean saved state.
func NewWithSchema(s *schema.FormSchema, opts ...Option) (*Engine, error) {
	doc, err := prepare(s)
	if err != nil {
		return nil, err
	}
	core, err := editor.New[*schema.FormSchema, *schema.Node](doc, policy{}, opts...)
	if err != nil {
		return nil, fmt.Errorf("builder: %w", err)
	}
	return &Engine{core: core}, nil
}

func prepare(s *schema.FormSchema) (*schema.FormSchema, error) {
	if s == nil {
		return nil, fmt.Errorf("builder: nil schema: %w", schema.ErrInvalidSchema)
	}
	doc := s.Clone()
	if doc.Version == "" {
		doc.Version = schema.CurrentVersion
	}
	if err := schema.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.core.Logger() }

// Schema returns a copy of the current document.
func (e *Engine) Schema() *schema.FormSchema { return e.core.Document() }

// State returns the current builder state.
func (e *Engine) State() State { return e.core.State() }

// Subscribe registers fn for state changes and returns the unsubscribe func.
func (e *Engine) Subscribe(fn func(State)) func() { return e.core.Subscribe(fn) }

// SetSchema replaces the document wholesale and pushes a history entry.
// Malformed documents are rejected before anything changes.
func (e *Engine) SetSchema(s *schema.FormSchema) error {
	doc, err := prepare(s)
	if err != nil {
		return err
	}
	return e.core.Replace(doc)
}

// Load replaces the document with a persisted one and resets history, leaving
// the engine clean.
func (e *Engine) Load(s *schema.FormSchema) error {
	doc, err := prepare(s)
	if err != nil {
		return err
	}
	return e.core.Load(doc)
}

// AddField inserts a copy of node at pos, assigning ids where missing or
// colliding, and returns the new node's id.
func (e *Engine) AddField(node *schema.Node, pos Position) (string, bool) {
	if node == nil || node.Type == "" {
		return "", false
	}
	return e.core.Add(node, pos)
}

// UpdateField merges patch into the node with the given id. It reports
// whether the document changed; attribute errors come from schema.ApplyPatch.
func (e *Engine) UpdateField(id string, patch schema.Patch) (bool, error) {
	return e.core.Update(id, patch)
}

// RemoveField deletes the node and its subtree.
func (e *Engine) RemoveField(id string) bool { return e.core.Remove(id) }

// MoveField relocates the node, keeping its attributes and descendants.
func (e *Engine) MoveField(id string, pos Position) bool { return e.core.Move(id, pos) }

// DuplicateField inserts a copy with fresh ids right after the original.
func (e *Engine) DuplicateField(id string) (string, bool) { return e.core.Duplicate(id) }

// SelectField selects id; an empty id clears the selection.
func (e *Engine) SelectField(id string) bool { return e.core.Select(id) }

// SelectedField returns a copy of the selected node.
func (e *Engine) SelectedField() (*schema.Node, bool) {
	id := e.core.Selected()
	if id == "" {
		return nil, false
	}
	return e.core.Find(id)
}

// CopyField copies the node into the clipboard.
func (e *Engine) CopyField(id string) bool { return e.core.Copy(id) }

// PasteField inserts a fresh copy of the clipboard at pos.
func (e *Engine) PasteField(pos Position) (string, bool) { return e.core.Paste(pos) }

// Undo steps back one history entry.
func (e *Engine) Undo() bool { return e.core.Undo() }

// Redo steps forward one history entry.
func (e *Engine) Redo() bool { return e.core.Redo() }

// MarkSaving flags an external save in progress.
func (e *Engine) MarkSaving(saving bool) { e.core.MarkSaving(saving) }

// SaveState records the current document as persisted.
func (e *Engine) SaveState() { e.core.SaveState() }

// SaveStateAt records the document at revision rev as persisted.
func (e *Engine) SaveStateAt(rev uint64) { e.core.SaveStateAt(rev) }

// IsDirty reports unsaved changes.
func (e *Engine) IsDirty() bool { return e.core.IsDirty() }

// SetMode switches between design, preview and logic modes.
func (e *Engine) SetMode(mode Mode) bool { return e.core.SetMode(mode) }

// Mode returns the current UI mode.
func (e *Engine) Mode() Mode { return e.core.Mode() }

// Find returns a copy of the node with the given id.
func (e *Engine) Find(id string) (*schema.Node, bool) { return e.core.Find(id) }

// Locate returns the canonical placement of id.
func (e *Engine) Locate(id string) (Position, bool) { return e.core.Locate(id) }

// Target resolves a placement key to its canonical form and collection size.
func (e *Engine) Target(parentID string) (string, int, bool) { return e.core.Target(parentID) }

// Ancestors returns copies of the nodes from a root down to id.
func (e *Engine) Ancestors(id string) ([]*schema.Node, bool) { return e.core.Ancestors(id) }

// policy lets any container hold any node; the field-schema tree nests
// freely.
type policy struct{}

func (policy) CanInsert(_ []*schema.Node, _ tree.Target[*schema.Node], node *schema.Node) bool {
	return node != nil
}

func (policy) CanDetach([]*schema.Node) bool { return true }

func (policy) Patch(node *schema.Node, patch map[string]any) (*schema.Node, error) {
	return schema.ApplyPatch(node, schema.Patch(patch))
}
