// Package session binds a builder engine to the persistence collaborator:
// the document is loaded once into the engine, and saves hand the engine's
// current schema to the store before acknowledging the saved revision.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

// Session edits one stored form.
type Session struct {
	mu     sync.Mutex
	store  store.Store
	engine *builder.Engine
	formID string
	logger *slog.Logger
}

// Option customises a Session.
type Option func(*Session)

// WithLogger routes session diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open loads formID from st into engine. A missing form is created empty so
// the editor always starts from a persisted draft; an empty formID always
// creates a new form.
func Open(ctx context.Context, st store.Store, engine *builder.Engine, formID string, opts ...Option) (*Session, error) {
	if st == nil || engine == nil {
		return nil, errors.New("session: store and engine are required")
	}
	s := &Session{store: st, engine: engine, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	doc, id, err := s.fetch(ctx, formID)
	if err != nil {
		return nil, err
	}
	// Loading is not an edit: the engine starts clean with a single entry.
	if err := engine.Load(doc); err != nil {
		return nil, fmt.Errorf("session: load %s: %w", id, err)
	}
	s.formID = id
	s.logger.Info("session: opened", "form", id, "fields", doc.Count())
	return s, nil
}

func (s *Session) fetch(ctx context.Context, formID string) (*schema.FormSchema, string, error) {
	if formID != "" {
		form, err := s.store.Load(ctx, formID)
		if err == nil {
			return form.Schema, form.ID, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, "", fmt.Errorf("session: open %s: %w", formID, err)
		}
	}
	form, err := s.store.Create(ctx, schema.New())
	if err != nil {
		return nil, "", fmt.Errorf("session: create form: %w", err)
	}
	return form.Schema, form.ID, nil
}

// FormID returns the id of the stored form.
func (s *Session) FormID() string {
	return s.formID
}

// Engine returns the engine editing the form.
func (s *Session) Engine() *builder.Engine {
	return s.engine
}

// Save persists the engine's current schema. On failure the engine stays
// dirty and its document is left as is.
func (s *Session) Save(ctx context.Context) (store.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *Session) save(ctx context.Context) (store.Form, error) {
	s.engine.MarkSaving(true)
	snapshot := s.engine.State()
	form, err := s.store.Save(ctx, s.formID, snapshot.Document)
	if err != nil {
		s.engine.MarkSaving(false)
		s.logger.Warn("session: save failed", "form", s.formID, "error", err)
		return store.Form{}, fmt.Errorf("session: save %s: %w", s.formID, err)
	}
	s.engine.SaveStateAt(snapshot.Revision)
	s.logger.Info("session: saved", "form", s.formID, "revision", snapshot.Revision)
	return form, nil
}

// Publish saves the current schema and snapshots it as a new version.
func (s *Session) Publish(ctx context.Context) (store.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.save(ctx); err != nil {
		return store.Version{}, err
	}
	v, err := s.store.Publish(ctx, s.formID)
	if err != nil {
		return store.Version{}, fmt.Errorf("session: publish %s: %w", s.formID, err)
	}
	s.logger.Info("session: published", "form", s.formID, "version", v.Number)
	return v, nil
}

// Reload replaces the engine's document with the stored draft, discarding
// unsaved edits and history.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	form, err := s.store.Load(ctx, s.formID)
	if err != nil {
		return fmt.Errorf("session: reload %s: %w", s.formID, err)
	}
	return s.engine.Load(form.Schema)
}
