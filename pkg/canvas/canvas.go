// Package canvas is the composition surface: it turns pointer gestures (drag,
// hover, click, per-node buttons) into editor calls and tracks the transient
// visual state the canvas renders. It never edits a tree directly.
package canvas

import (
	"log/slog"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/editor"
)

// Editor is the slice of a builder engine the surface drives. Adapters exist
// for the form-schema builder and the block builder.
type Editor interface {
	// Insert builds a node from the palette entry and places it at pos.
	Insert(paletteType string, pos editor.Position) (string, bool)
	Move(id string, pos editor.Position) bool
	Duplicate(id string) (string, bool)
	Remove(id string) bool
	Select(id string) bool
	Selected() string
	Shift(id string, delta int) bool
	CanShift(id string, delta int) bool
	Exists(id string) bool
	Locked(id string) bool
	IsContainer(id string) bool
	Locate(id string) (editor.Position, bool)
	// Target resolves a placement key to its canonical key.
	Target(parentID string) (string, int, bool)
	// Accepts reports whether src may be dropped into the collection
	// addressed by parentID.
	Accepts(parentID string, src Source) bool
}

// Source is what is being dragged: a palette entry or an existing node.
type Source struct {
	PaletteType string
	NodeID      string
}

// FromPalette drags a new node of the given palette type.
func FromPalette(paletteType string) Source { return Source{PaletteType: paletteType} }

// FromNode drags an existing node.
func FromNode(id string) Source { return Source{NodeID: id} }

// IsNode reports whether the source is an existing node.
func (s Source) IsNode() bool { return s.NodeID != "" }

// Zone is an insertion point on the canvas: before item Index of the
// collection addressed by ParentID, or at its end with editor.End.
type Zone struct {
	ParentID string
	Index    int
}

// EndOf is the trailing zone of a collection, including the empty-canvas zone
// when parentID is empty.
func EndOf(parentID string) Zone { return Zone{ParentID: parentID, Index: editor.End} }

// Before is the zone in front of item index.
func Before(parentID string, index int) Zone { return Zone{ParentID: parentID, Index: index} }

// VisualState is the per-node state the canvas renders.
type VisualState string

const (
	StateIdle     VisualState = "idle"
	StateHovered  VisualState = "hovered"
	StateSelected VisualState = "selected"
	StateDragging VisualState = "dragging"
)

// Controls lists the per-node buttons and whether each is usable.
type Controls struct {
	Visible   bool
	Duplicate bool
	Delete    bool
	MoveUp    bool
	MoveDown  bool
}

// Option customises a Surface.
type Option func(*Surface)

// WithLogger routes surface diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surface) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Surface holds the transient drag, hover and armed-zone state of one canvas.
type Surface struct {
	mu      sync.Mutex
	ed      Editor
	logger  *slog.Logger
	drag    *Source
	armed   *Zone
	hovered string
}

// New returns a surface driving ed.
func New(ed Editor, opts ...Option) *Surface {
	s := &Surface{ed: ed, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// DragStart begins a drag. Locked or unknown nodes cannot be dragged.
func (s *Surface) DragStart(src Source) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src.IsNode() {
		if !s.ed.Exists(src.NodeID) || s.ed.Locked(src.NodeID) {
			s.logger.Debug("canvas: drag refused", "id", src.NodeID)
			return false
		}
	} else if src.PaletteType == "" {
		return false
	}
	s.drag = &src
	s.armed = nil
	return true
}

// Dragging returns the source of the drag in progress.
func (s *Surface) Dragging() (Source, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return Source{}, false
	}
	return *s.drag, true
}

// DragOver arms z when it accepts the dragged source, disarming any other
// zone. It reports whether z is armed.
func (s *Surface) DragOver(z Zone) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return false
	}
	if !s.ed.Accepts(z.ParentID, *s.drag) {
		s.armed = nil
		return false
	}
	s.armed = &z
	return true
}

// DragLeave disarms the current zone.
func (s *Surface) DragLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = nil
}

// Armed returns the armed zone.
func (s *Surface) Armed() (Zone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed == nil {
		return Zone{}, false
	}
	return *s.armed, true
}

// Drop commits the drag onto the armed zone and resets the drag state. It
// reports whether the document changed.
func (s *Surface) Drop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, zone := s.drag, s.armed
	s.drag, s.armed = nil, nil
	if src == nil || zone == nil {
		return false
	}
	if !src.IsNode() {
		_, ok := s.ed.Insert(src.PaletteType, editor.At(zone.ParentID, zone.Index))
		return ok
	}
	return s.ed.Move(src.NodeID, s.reorderPosition(src.NodeID, *zone))
}

// reorderPosition converts a zone, expressed against the collection as the
// user sees it, into the index Move expects once the node has been taken out.
func (s *Surface) reorderPosition(id string, z Zone) editor.Position {
	pos := editor.At(z.ParentID, z.Index)
	from, ok := s.ed.Locate(id)
	if !ok || z.Index < 0 {
		return pos
	}
	key, _, ok := s.ed.Target(z.ParentID)
	if ok && key == from.ParentID && from.Index < z.Index {
		pos.Index--
	}
	return pos
}

// DragEnd cancels the drag. The document is never touched.
func (s *Surface) DragEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag, s.armed = nil, nil
}

// Hover marks id as hovered.
func (s *Surface) Hover(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovered = id
}

// Unhover clears the hover if it is on id.
func (s *Surface) Unhover(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hovered == id {
		s.hovered = ""
	}
}

// Click selects the node.
func (s *Surface) Click(id string) bool { return s.ed.Select(id) }

// ClickCanvas clears the selection.
func (s *Surface) ClickCanvas() bool { return s.ed.Select("") }

// Duplicate runs the node's duplicate button.
func (s *Surface) Duplicate(id string) (string, bool) {
	if !s.Controls(id).Duplicate {
		return "", false
	}
	return s.ed.Duplicate(id)
}

// Delete runs the node's delete button.
func (s *Surface) Delete(id string) bool {
	if !s.Controls(id).Delete {
		return false
	}
	return s.ed.Remove(id)
}

// MoveUp runs the node's move-up button.
func (s *Surface) MoveUp(id string) bool {
	if !s.Controls(id).MoveUp {
		return false
	}
	return s.ed.Shift(id, -1)
}

// MoveDown runs the node's move-down button.
func (s *Surface) MoveDown(id string) bool {
	if !s.Controls(id).MoveDown {
		return false
	}
	return s.ed.Shift(id, 1)
}

// StateOf returns the visual state of id.
func (s *Surface) StateOf(id string) VisualState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.drag != nil && s.drag.NodeID == id:
		return StateDragging
	case s.ed.Selected() == id:
		return StateSelected
	case s.hovered == id:
		return StateHovered
	}
	return StateIdle
}

// Controls reports the buttons shown for id. They are visible on hovered or
// selected nodes; locked nodes only show them disabled.
func (s *Surface) Controls(id string) Controls {
	if !s.ed.Exists(id) {
		return Controls{}
	}
	state := s.StateOf(id)
	c := Controls{Visible: state == StateHovered || state == StateSelected}
	if s.ed.Locked(id) {
		return c
	}
	c.Duplicate = true
	c.Delete = true
	c.MoveUp = s.ed.CanShift(id, -1)
	c.MoveDown = s.ed.CanShift(id, 1)
	return c
}
