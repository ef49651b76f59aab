package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/history"
	"github.com/goliatone/go-formbuilder/pkg/tree"
)

// Engine is the only way a document changes. Each mutating call clones the
// current snapshot, edits the clone and commits it as a new history entry,
// so committed snapshots are never modified. Expected failures (unknown ids,
// rejected drops, empty clipboard, history bounds) leave the state untouched
// and report false.
type Engine[D Document[D, N], N tree.Node[N]] struct {
	mu     sync.Mutex
	cfg    config
	policy Policy[N]
	hist   *history.History[snapshot[D]]

	selected  string
	clipboard N
	hasClip   bool
	rev       uint64
	savedRev  uint64
	saving    bool
	mode      Mode

	listeners    map[int]func(State[D])
	nextListener int
}

// New returns an engine editing a clone of initial. The initial document is
// the clean, saved state.
func New[D Document[D, N], N tree.Node[N]](initial D, policy Policy[N], opts ...Option) (*Engine[D, N], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if policy == nil {
		return nil, fmt.Errorf("editor: policy is required")
	}
	if err := checkIDs[D, N](initial); err != nil {
		return nil, err
	}
	e := &Engine[D, N]{
		cfg:       cfg,
		policy:    policy,
		mode:      ModeDesign,
		listeners: make(map[int]func(State[D])),
	}
	e.hist = history.New(snapshot[D]{doc: initial.Clone()}, cfg.historyLimit)
	return e, nil
}

func checkIDs[D Document[D, N], N tree.Node[N]](doc D) error {
	if dupes := tree.DuplicateIDs(*doc.Roots()); len(dupes) > 0 {
		return fmt.Errorf("%w: %v", ErrDuplicateID, dupes)
	}
	return nil
}

// Logger returns the engine's logger.
func (e *Engine[D, N]) Logger() *slog.Logger {
	return e.cfg.logger
}

// Document returns a copy of the current document.
func (e *Engine[D, N]) Document() D {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current().Clone()
}

// State returns a snapshot of the engine state.
func (e *Engine[D, N]) State() State[D] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Find returns a copy of the node with the given id.
func (e *Engine[D, N]) Find(id string) (N, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	node, ok := tree.Find(*e.current().Roots(), id)
	if !ok {
		var zero N
		return zero, false
	}
	return node.Clone(), true
}

// Locate returns the canonical placement of id: the key of the collection
// holding it and its index there.
func (e *Engine[D, N]) Locate(id string) (Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc := e.current()
	loc, ok := tree.Locate(doc.Roots(), id)
	if !ok {
		return Position{}, false
	}
	return Position{ParentID: loc.ParentKey(), Index: loc.Index}, true
}

// Target resolves parentID to its canonical key and the size of the
// collection it addresses.
func (e *Engine[D, N]) Target(parentID string) (key string, size int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, ok := tree.ResolveTarget(e.current().Roots(), parentID)
	if !ok {
		return "", 0, false
	}
	return target.Key(), target.Len(), true
}

// Ancestors returns copies of the nodes from a root down to id, inclusive.
func (e *Engine[D, N]) Ancestors(id string) ([]N, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	path, ok := tree.Path(*e.current().Roots(), id)
	if !ok {
		return nil, false
	}
	out := make([]N, len(path))
	for i, node := range path {
		out[i] = node.Clone()
	}
	return out, true
}

// Selected returns the selected node id, or an empty string.
func (e *Engine[D, N]) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// IsDirty reports whether the current snapshot differs from the last saved one.
func (e *Engine[D, N]) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Current().rev != e.savedRev
}

// Subscribe registers fn to receive the state after every committed change.
// The returned function removes the subscription.
func (e *Engine[D, N]) Subscribe(fn func(State[D])) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// Replace swaps the whole document and pushes a history entry. Documents
// reusing ids are rejected.
func (e *Engine[D, N]) Replace(doc D) error {
	if err := checkIDs[D, N](doc); err != nil {
		return err
	}
	e.do(func() bool {
		e.commit(doc.Clone())
		e.dropStaleSelection()
		return true
	})
	return nil
}

// Load replaces the document and collapses the history onto it, leaving the
// engine clean. Used when a persisted document is opened.
func (e *Engine[D, N]) Load(doc D) error {
	if err := checkIDs[D, N](doc); err != nil {
		return err
	}
	e.do(func() bool {
		e.rev++
		e.hist.Reset(snapshot[D]{doc: doc.Clone(), rev: e.rev})
		e.savedRev = e.rev
		e.selected = ""
		return true
	})
	return nil
}

// Add inserts node at pos. Nodes of the subtree without an id, or whose id is
// already in use, receive fresh ids. It returns the id of the inserted root.
func (e *Engine[D, N]) Add(node N, pos Position) (string, bool) {
	var id string
	ok := e.do(func() bool {
		doc := e.current().Clone()
		added := node.Clone()
		e.assignIDs(doc, added)
		if !e.insert(doc, pos, added, "add") {
			return false
		}
		id = added.NodeID()
		e.commit(doc)
		return true
	})
	return id, ok
}

// Update applies patch to the node with the given id. Unknown ids report
// false; patches the policy rejects return its error.
func (e *Engine[D, N]) Update(id string, patch map[string]any) (bool, error) {
	var perr error
	ok := e.do(func() bool {
		doc := e.current().Clone()
		loc, found := tree.Locate(doc.Roots(), id)
		if !found {
			e.reject("update", id, "not found")
			return false
		}
		original := (*loc.Branch.Children)[loc.Index]
		patched, err := e.policy.Patch(original, patch)
		if err != nil {
			perr = err
			return false
		}
		if patched.NodeID() != id {
			perr = fmt.Errorf("editor: patch changed id of %s", id)
			return false
		}
		if !e.cfg.recordNoops && sameContent(original, patched) {
			return false
		}
		(*loc.Branch.Children)[loc.Index] = patched
		e.commit(doc)
		return true
	})
	return ok, perr
}

// Remove deletes the node with the given id and its subtree. Selection is
// cleared when the selected node goes with it.
func (e *Engine[D, N]) Remove(id string) bool {
	return e.do(func() bool {
		doc := e.current().Clone()
		if !e.detachable(doc, id, "remove") {
			return false
		}
		tree.Remove(doc.Roots(), id)
		e.commit(doc)
		e.dropStaleSelection()
		return true
	})
}

// Move relocates the node with the given id to pos. The index is interpreted
// against the destination collection after the node has been taken out.
// Moving a node into itself or one of its descendants is refused.
func (e *Engine[D, N]) Move(id string, pos Position) bool {
	return e.do(func() bool {
		before := e.current()
		doc := before.Clone()
		if !e.detachable(doc, id, "move") {
			return false
		}
		node, _ := tree.Remove(doc.Roots(), id)
		if !e.insert(doc, pos, node, "move") {
			return false
		}
		if reflect.DeepEqual(before, doc) {
			return false
		}
		e.commit(doc)
		return true
	})
}

// Duplicate inserts a deep copy of the node, with fresh ids throughout,
// immediately after the original. It returns the copy's id.
func (e *Engine[D, N]) Duplicate(id string) (string, bool) {
	var dupID string
	ok := e.do(func() bool {
		doc := e.current().Clone()
		if !e.detachable(doc, id, "duplicate") {
			return false
		}
		loc, _ := tree.Locate(doc.Roots(), id)
		dup := (*loc.Branch.Children)[loc.Index].Clone()
		tree.RegenerateIDs(dup, e.cfg.ids.NewID)

		target := tree.Target[N]{Owner: loc.Parent, HasOwner: loc.HasParent, Branch: loc.Branch}
		if !e.policy.CanInsert(e.ownerPath(doc, target), target, dup) {
			e.reject("duplicate", id, "target refused")
			return false
		}
		tree.InsertAt(loc.Branch, loc.Index+1, dup)
		dupID = dup.NodeID()
		e.commit(doc)
		return true
	})
	return dupID, ok
}

// Select marks id as selected; an empty id clears the selection. Unknown ids
// are ignored. Selection never touches history.
func (e *Engine[D, N]) Select(id string) bool {
	return e.do(func() bool {
		if id != "" {
			if _, ok := tree.Find(*e.current().Roots(), id); !ok {
				e.reject("select", id, "not found")
				return false
			}
		}
		if e.selected == id {
			return false
		}
		e.selected = id
		return true
	})
}

// Copy places a deep copy of the node in the clipboard, replacing its
// previous content.
func (e *Engine[D, N]) Copy(id string) bool {
	return e.do(func() bool {
		doc := e.current()
		if !e.detachable(doc, id, "copy") {
			return false
		}
		node, _ := tree.Find(*doc.Roots(), id)
		e.clipboard = node.Clone()
		e.hasClip = true
		return true
	})
}

// Paste inserts a fresh copy of the clipboard at pos. The clipboard keeps its
// content so it can be pasted again. It returns the id of the pasted root.
func (e *Engine[D, N]) Paste(pos Position) (string, bool) {
	var id string
	ok := e.do(func() bool {
		if !e.hasClip {
			e.reject("paste", "", "clipboard empty")
			return false
		}
		doc := e.current().Clone()
		node := e.clipboard.Clone()
		tree.RegenerateIDs(node, e.cfg.ids.NewID)
		if !e.insert(doc, pos, node, "paste") {
			return false
		}
		id = node.NodeID()
		e.commit(doc)
		return true
	})
	return id, ok
}

// Undo steps back one history entry. It reports false at the first entry.
func (e *Engine[D, N]) Undo() bool {
	return e.do(func() bool {
		if _, ok := e.hist.Undo(); !ok {
			return false
		}
		e.dropStaleSelection()
		return true
	})
}

// Redo steps forward one history entry. It reports false at the last entry.
func (e *Engine[D, N]) Redo() bool {
	return e.do(func() bool {
		if _, ok := e.hist.Redo(); !ok {
			return false
		}
		e.dropStaleSelection()
		return true
	})
}

// MarkSaving flags an external save in progress.
func (e *Engine[D, N]) MarkSaving(saving bool) {
	e.do(func() bool {
		if e.saving == saving {
			return false
		}
		e.saving = saving
		return true
	})
}

// SaveState records the current snapshot as persisted. Unless disabled with
// WithCollapseHistoryOnSave(false) the history collapses onto it, so undo
// cannot cross the save.
func (e *Engine[D, N]) SaveState() {
	e.do(func() bool {
		e.markSaved(e.hist.Current().rev)
		return true
	})
}

// SaveStateAt records revision rev, as reported by State, as persisted. If
// edits landed after rev the engine stays dirty and history is kept.
func (e *Engine[D, N]) SaveStateAt(rev uint64) {
	e.do(func() bool {
		e.markSaved(rev)
		return true
	})
}

func (e *Engine[D, N]) markSaved(rev uint64) {
	current := e.hist.Current()
	if current.rev == rev && e.cfg.collapseOnSave {
		e.hist.Reset(current)
	}
	e.savedRev = rev
	e.saving = false
}

// SetMode switches the UI mode. Unknown modes are ignored.
func (e *Engine[D, N]) SetMode(mode Mode) bool {
	return e.do(func() bool {
		if !mode.Valid() || e.mode == mode {
			return false
		}
		e.mode = mode
		return true
	})
}

// Mode returns the current UI mode.
func (e *Engine[D, N]) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Engine[D, N]) do(fn func() bool) bool {
	e.mu.Lock()
	changed := fn()
	var (
		state     State[D]
		listeners []func(State[D])
	)
	if changed && len(e.listeners) > 0 {
		state = e.stateLocked()
		listeners = make([]func(State[D]), 0, len(e.listeners))
		for _, l := range e.listeners {
			listeners = append(listeners, l)
		}
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
	return changed
}

func (e *Engine[D, N]) current() D {
	return e.hist.Current().doc
}

func (e *Engine[D, N]) commit(doc D) {
	e.rev++
	e.hist.Push(snapshot[D]{doc: doc, rev: e.rev})
}

func (e *Engine[D, N]) stateLocked() State[D] {
	current := e.hist.Current()
	return State[D]{
		Document:     current.doc.Clone(),
		SelectedID:   e.selected,
		HasClipboard: e.hasClip,
		HistoryIndex: e.hist.Index(),
		HistoryLen:   e.hist.Len(),
		CanUndo:      e.hist.CanUndo(),
		CanRedo:      e.hist.CanRedo(),
		Dirty:        current.rev != e.savedRev,
		Saving:       e.saving,
		Mode:         e.mode,
		Revision:     current.rev,
	}
}

func (e *Engine[D, N]) dropStaleSelection() {
	if e.selected == "" {
		return
	}
	if _, ok := tree.Find(*e.current().Roots(), e.selected); !ok {
		e.selected = ""
	}
}

func (e *Engine[D, N]) detachable(doc D, id, op string) bool {
	path, ok := tree.Path(*doc.Roots(), id)
	if !ok {
		e.reject(op, id, "not found")
		return false
	}
	if !e.policy.CanDetach(path) {
		e.reject(op, id, "locked")
		return false
	}
	return true
}

func (e *Engine[D, N]) insert(doc D, pos Position, node N, op string) bool {
	target, ok := tree.ResolveTarget(doc.Roots(), pos.ParentID)
	if !ok {
		e.reject(op, node.NodeID(), "unknown parent "+pos.ParentID)
		return false
	}
	if !e.policy.CanInsert(e.ownerPath(doc, target), target, node) {
		e.reject(op, node.NodeID(), "target refused")
		return false
	}
	tree.InsertAt(target.Branch, pos.Index, node)
	return true
}

func (e *Engine[D, N]) ownerPath(doc D, target tree.Target[N]) []N {
	if !target.HasOwner {
		return nil
	}
	path, _ := tree.Path(*doc.Roots(), target.Owner.NodeID())
	return path
}

// assignIDs gives every node (and branch entry) of the subtree that lacks an
// id, or reuses one already present in doc or earlier in the subtree, a fresh
// id.
func (e *Engine[D, N]) assignIDs(doc D, node N) {
	used := make(map[string]struct{})
	for _, id := range tree.IDs(*doc.Roots()) {
		used[id] = struct{}{}
	}
	fresh := func() string {
		for {
			id := e.cfg.ids.NewID()
			if _, taken := used[id]; !taken {
				used[id] = struct{}{}
				return id
			}
		}
	}
	tree.Walk([]N{node}, func(current N, _ int) bool {
		if id := current.NodeID(); id == "" || isUsed(used, id) {
			current.SetNodeID(fresh())
		} else {
			used[id] = struct{}{}
		}
		relabeler, ok := any(current).(tree.Relabeler)
		if !ok {
			return true
		}
		for _, branch := range current.Branches() {
			if branch.ID == "" || isUsed(used, branch.ID) {
				relabeler.RelabelBranches(fresh)
				return true
			}
		}
		for _, branch := range current.Branches() {
			if branch.ID != "" {
				used[branch.ID] = struct{}{}
			}
		}
		return true
	})
}

func isUsed(used map[string]struct{}, id string) bool {
	_, ok := used[id]
	return ok
}

func (e *Engine[D, N]) reject(op, id, reason string) {
	e.cfg.logger.Debug("editor: operation ignored", "op", op, "id", id, "reason", reason)
}

// sameContent compares nodes by their persisted form, so nil and empty child
// slices or int and float64 values that encode alike count as equal.
func sameContent(a, b any) bool {
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(left, right)
}
