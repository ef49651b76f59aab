// Package cli is the terminal composition surface: an interactive loop that
// turns menu choices into canvas gestures and builder operations on a stored
// form.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/internal/prompt"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/canvas"
	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

// Menu actions.
const (
	ActionAdd       = "Add field"
	ActionEdit      = "Edit attribute"
	ActionMove      = "Move field"
	ActionDuplicate = "Duplicate field"
	ActionDelete    = "Delete field"
	ActionCopy      = "Copy field"
	ActionPaste     = "Paste"
	ActionUndo      = "Undo"
	ActionRedo      = "Redo"
	ActionTree      = "Show tree"
	ActionPreview   = "Preview to file"
	ActionSave      = "Save"
	ActionPublish   = "Publish"
	ActionQuit      = "Quit"
)

var actions = []string{
	ActionAdd, ActionEdit, ActionMove, ActionDuplicate, ActionDelete,
	ActionCopy, ActionPaste, ActionUndo, ActionRedo, ActionTree,
	ActionPreview, ActionSave, ActionPublish, ActionQuit,
}

// Option customises an App.
type Option func(*App)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithCatalog replaces the default palette.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(a *App) {
		if cat != nil {
			a.catalog = cat
		}
	}
}

// WithPreview sets the renderer used by the preview action.
func WithPreview(r *preview.Renderer) Option {
	return func(a *App) { a.preview = r }
}

// App runs the interactive editor over one session.
type App struct {
	driver  prompt.Driver
	session *session.Session
	engine  *builder.Engine
	catalog *catalog.Catalog
	surface *canvas.Surface
	preview *preview.Renderer
	logger  *slog.Logger
}

// New wires an App around an opened session.
func New(sess *session.Session, driver prompt.Driver, opts ...Option) *App {
	a := &App{
		driver:  driver,
		session: sess,
		engine:  sess.Engine(),
		catalog: catalog.Default(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.surface = canvas.New(canvas.NewSchemaEditor(a.engine, a.catalog), canvas.WithLogger(a.logger))
	return a
}

// Run loops until the user quits. An aborted prompt (Ctrl+C) ends the loop
// without error and without saving.
func (a *App) Run(ctx context.Context) error {
	for {
		choice, err := a.driver.Select(ctx, prompt.SelectConfig{
			Message:  a.title(),
			Options:  actions,
			PageSize: len(actions),
		})
		if err != nil {
			return a.finish(err)
		}
		if choice < 0 {
			continue
		}
		action := actions[choice]
		if action == ActionQuit {
			return a.finish(a.quit(ctx))
		}
		if err := a.dispatch(ctx, action); err != nil {
			if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
				return a.finish(err)
			}
			a.say(ctx, "error: "+err.Error())
		}
	}
}

func (a *App) finish(err error) error {
	if errors.Is(err, prompt.ErrAborted) {
		a.logger.Info("cli: aborted", "form", a.session.FormID(), "dirty", a.engine.IsDirty())
		return nil
	}
	return err
}

func (a *App) title() string {
	state := a.engine.State()
	mark := ""
	if state.Dirty {
		mark = " *"
	}
	return fmt.Sprintf("Form %s (%d nodes)%s", a.session.FormID(), state.Document.Count(), mark)
}

func (a *App) dispatch(ctx context.Context, action string) error {
	switch action {
	case ActionAdd:
		return a.add(ctx)
	case ActionEdit:
		return a.edit(ctx)
	case ActionMove:
		return a.move(ctx)
	case ActionDuplicate:
		id, err := a.pickNode(ctx, "Duplicate which field?")
		if err != nil || id == "" {
			return err
		}
		if _, ok := a.surface.Duplicate(id); !ok {
			a.say(ctx, "cannot duplicate "+id)
		}
	case ActionDelete:
		id, err := a.pickNode(ctx, "Delete which field?")
		if err != nil || id == "" {
			return err
		}
		if !a.surface.Delete(id) {
			a.say(ctx, "cannot delete "+id)
		}
	case ActionCopy:
		id, err := a.pickNode(ctx, "Copy which field?")
		if err != nil || id == "" {
			return err
		}
		a.engine.CopyField(id)
	case ActionPaste:
		return a.paste(ctx)
	case ActionUndo:
		if !a.engine.Undo() {
			a.say(ctx, "nothing to undo")
		}
	case ActionRedo:
		if !a.engine.Redo() {
			a.say(ctx, "nothing to redo")
		}
	case ActionTree:
		a.say(ctx, a.tree())
	case ActionPreview:
		return a.writePreview(ctx)
	case ActionSave:
		if _, err := a.session.Save(ctx); err != nil {
			return err
		}
		a.say(ctx, "saved")
	case ActionPublish:
		v, err := a.session.Publish(ctx)
		if err != nil {
			return err
		}
		a.say(ctx, fmt.Sprintf("published version %d", v.Number))
	}
	return nil
}

func (a *App) add(ctx context.Context) error {
	entries := a.catalog.Fields()
	labels := make([]string, 0, len(entries))
	for _, entry := range entries {
		labels = append(labels, fmt.Sprintf("%s (%s)", entry.Label, entry.Type))
	}
	idx, err := a.driver.Select(ctx, prompt.SelectConfig{Message: "Field type", Options: labels, PageSize: 12})
	if err != nil || idx < 0 {
		return err
	}
	return a.drag(ctx, canvas.FromPalette(string(entries[idx].Type)), "Drop where?")
}

func (a *App) move(ctx context.Context) error {
	id, err := a.pickNode(ctx, "Move which field?")
	if err != nil || id == "" {
		return err
	}
	return a.drag(ctx, canvas.FromNode(id), "Move where?")
}

// drag runs one drag gesture: start, pick a zone the surface accepts, drop.
func (a *App) drag(ctx context.Context, src canvas.Source, message string) error {
	if !a.surface.DragStart(src) {
		a.say(ctx, "cannot drag that")
		return nil
	}
	defer a.surface.DragEnd()

	zones := a.acceptedZones()
	if len(zones) == 0 {
		a.say(ctx, "no place accepts it")
		return nil
	}
	idx, err := a.driver.Select(ctx, prompt.SelectConfig{Message: message, Options: zoneLabels(zones), PageSize: 12})
	if err != nil || idx < 0 {
		return err
	}
	if !a.surface.DragOver(zones[idx].zone) || !a.surface.Drop() {
		a.say(ctx, "drop refused")
	}
	return nil
}

func (a *App) acceptedZones() []zoneChoice {
	var out []zoneChoice
	for _, z := range zonesOf(a.engine.Schema()) {
		if a.surface.DragOver(z.zone) {
			out = append(out, z)
		}
	}
	a.surface.DragLeave()
	return out
}

func (a *App) paste(ctx context.Context) error {
	if !a.engine.State().HasClipboard {
		a.say(ctx, "clipboard is empty")
		return nil
	}
	zones := zonesOf(a.engine.Schema())
	idx, err := a.driver.Select(ctx, prompt.SelectConfig{Message: "Paste where?", Options: zoneLabels(zones), PageSize: 12})
	if err != nil || idx < 0 {
		return err
	}
	z := zones[idx].zone
	if _, ok := a.engine.PasteField(builder.At(z.ParentID, z.Index)); !ok {
		a.say(ctx, "paste refused")
	}
	return nil
}

func (a *App) edit(ctx context.Context) error {
	id, err := a.pickNode(ctx, "Edit which field?")
	if err != nil || id == "" {
		return err
	}
	a.surface.Click(id)
	node, ok := a.engine.Find(id)
	if !ok {
		return nil
	}
	attrs := a.catalog.Attributes(node.Type)
	if len(attrs) == 0 {
		a.say(ctx, fmt.Sprintf("%s has no editable attributes", node.Type))
		return nil
	}
	labels := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		labels = append(labels, fmt.Sprintf("%s (%s)", attr.Label, attr.Key))
	}
	idx, err := a.driver.Select(ctx, prompt.SelectConfig{Message: "Attribute", Options: labels})
	if err != nil || idx < 0 {
		return err
	}
	attr := attrs[idx]
	value, err := a.askValue(ctx, attr)
	if err != nil {
		return err
	}
	if _, err := a.engine.UpdateField(id, schema.Patch{attr.Key: value}); err != nil {
		return err
	}
	return nil
}

// askValue prompts for one attribute value. An empty text answer clears the
// attribute.
func (a *App) askValue(ctx context.Context, attr catalog.Attribute) (any, error) {
	switch attr.Type {
	case catalog.AttrBool:
		return a.driver.Confirm(ctx, prompt.ConfirmConfig{Message: attr.Label})
	case catalog.AttrChoice:
		idx, err := a.driver.Select(ctx, prompt.SelectConfig{Message: attr.Label, Options: attr.Choices})
		if err != nil || idx < 0 {
			return nil, err
		}
		return attr.Choices[idx], nil
	case catalog.AttrNumber:
		raw, err := a.driver.Input(ctx, prompt.InputConfig{Message: attr.Label, Validator: validNumber})
		if err != nil || strings.TrimSpace(raw) == "" {
			return nil, err
		}
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case catalog.AttrOptions:
		raw, err := a.driver.TextArea(ctx, prompt.TextAreaConfig{Message: attr.Label + " (one per line, label=value)"})
		if err != nil {
			return nil, err
		}
		return parseOptions(raw), nil
	case catalog.AttrTextarea:
		raw, err := a.driver.TextArea(ctx, prompt.TextAreaConfig{Message: attr.Label})
		if err != nil || raw == "" {
			return nil, err
		}
		return raw, nil
	}
	raw, err := a.driver.Input(ctx, prompt.InputConfig{Message: attr.Label})
	if err != nil || raw == "" {
		return nil, err
	}
	return raw, nil
}

func validNumber(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func parseOptions(raw string) []schema.Option {
	var out []schema.Option
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, found := strings.Cut(line, "=")
		label = strings.TrimSpace(label)
		value = strings.TrimSpace(value)
		if !found || value == "" {
			value = strings.ToLower(strings.Join(strings.Fields(label), "-"))
		}
		out = append(out, schema.Option{Label: label, Value: value})
	}
	return out
}

func (a *App) pickNode(ctx context.Context, message string) (string, error) {
	nodes := nodesOf(a.engine.Schema())
	if len(nodes) == 0 {
		a.say(ctx, "the form is empty")
		return "", nil
	}
	labels := make([]string, 0, len(nodes))
	for _, n := range nodes {
		labels = append(labels, n.label)
	}
	idx, err := a.driver.Select(ctx, prompt.SelectConfig{Message: message, Options: labels, PageSize: 12})
	if err != nil || idx < 0 {
		return "", err
	}
	a.surface.Hover(nodes[idx].id)
	return nodes[idx].id, nil
}

func (a *App) tree() string {
	nodes := nodesOf(a.engine.Schema())
	if len(nodes) == 0 {
		return "(empty form)"
	}
	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		line := n.label
		if state := a.surface.StateOf(n.id); state != canvas.StateIdle {
			line += " [" + string(state) + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a *App) writePreview(ctx context.Context) error {
	path, err := a.driver.Input(ctx, prompt.InputConfig{Message: "Write preview to", Default: a.session.FormID() + ".html"})
	if err != nil {
		return err
	}
	if a.preview == nil {
		r, err := preview.New(preview.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.preview = r
	}
	previous := a.engine.Mode()
	a.engine.SetMode(builder.ModePreview)
	defer a.engine.SetMode(previous)

	html, err := a.preview.Render(ctx, a.engine.Schema())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("cli: write preview: %w", err)
	}
	a.say(ctx, "preview written to "+path)
	return nil
}

func (a *App) quit(ctx context.Context) error {
	if !a.engine.IsDirty() {
		return nil
	}
	save, err := a.driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Save changes before quitting?", Default: true})
	if err != nil {
		return err
	}
	if save {
		_, err = a.session.Save(ctx)
	}
	return err
}

func (a *App) say(ctx context.Context, msg string) {
	if err := a.driver.Info(ctx, msg); err != nil {
		a.logger.Debug("cli: info failed", "error", err)
	}
}
