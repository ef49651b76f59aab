package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Memory is an in-process Store for tests and the CLI's scratch mode.
// Schemas are cloned on the way in and out.
type Memory struct {
	mu       sync.RWMutex
	cfg      config
	forms    map[string]*Form
	versions map[string][]Version
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		cfg:      newConfig(opts),
		forms:    make(map[string]*Form),
		versions: make(map[string][]Version),
	}
}

func (m *Memory) Create(_ context.Context, doc *schema.FormSchema) (Form, error) {
	doc, err := prepare(doc)
	if err != nil {
		return Form{}, fmt.Errorf("store: create: %w", err)
	}
	now := m.cfg.now()
	form := &Form{ID: m.cfg.newID(), Title: titleOf(doc), Schema: doc, CreatedAt: now, UpdatedAt: now}

	m.mu.Lock()
	m.forms[form.ID] = form
	m.mu.Unlock()
	return copyForm(form, true), nil
}

func (m *Memory) Load(_ context.Context, id string) (Form, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	form, ok := m.forms[id]
	if !ok {
		return Form{}, fmt.Errorf("store: form %s: %w", id, ErrNotFound)
	}
	return copyForm(form, true), nil
}

func (m *Memory) List(context.Context) ([]Form, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Form, 0, len(m.forms))
	for _, form := range m.forms {
		out = append(out, copyForm(form, false))
	}
	slices.SortFunc(out, func(a, b Form) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) Save(_ context.Context, id string, doc *schema.FormSchema) (Form, error) {
	doc, err := prepare(doc)
	if err != nil {
		return Form{}, fmt.Errorf("store: save %s: %w", id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	form, ok := m.forms[id]
	if !ok {
		return Form{}, fmt.Errorf("store: form %s: %w", id, ErrNotFound)
	}
	form.Schema = doc
	form.Title = titleOf(doc)
	form.UpdatedAt = m.cfg.now()
	return copyForm(form, true), nil
}

func (m *Memory) Publish(_ context.Context, id string) (Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	form, ok := m.forms[id]
	if !ok {
		return Version{}, fmt.Errorf("store: form %s: %w", id, ErrNotFound)
	}
	v := Version{
		FormID:      id,
		Number:      len(m.versions[id]) + 1,
		Schema:      form.Schema.Clone(),
		PublishedAt: m.cfg.now(),
	}
	m.versions[id] = append(m.versions[id], v)
	form.Published = v.Number
	v.Schema = v.Schema.Clone()
	return v, nil
}

func (m *Memory) Versions(_ context.Context, id string) ([]Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.forms[id]; !ok {
		return nil, fmt.Errorf("store: form %s: %w", id, ErrNotFound)
	}
	out := make([]Version, 0, len(m.versions[id]))
	for _, v := range m.versions[id] {
		v.Schema = nil
		out = append(out, v)
	}
	return out, nil
}

func (m *Memory) LoadVersion(_ context.Context, id string, number int) (Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.versions[id]
	if number < 1 || number > len(versions) {
		return Version{}, fmt.Errorf("store: form %s version %d: %w", id, number, ErrNotFound)
	}
	v := versions[number-1]
	v.Schema = v.Schema.Clone()
	return v, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forms[id]; !ok {
		return fmt.Errorf("store: form %s: %w", id, ErrNotFound)
	}
	delete(m.forms, id)
	delete(m.versions, id)
	return nil
}

func copyForm(form *Form, withSchema bool) Form {
	out := *form
	out.Schema = nil
	if withSchema {
		out.Schema = form.Schema.Clone()
	}
	return out
}
