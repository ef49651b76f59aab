// Package store persists form schemas: an editable draft per form plus
// immutable published versions.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// ErrNotFound is returned for unknown form ids or version numbers.
var ErrNotFound = errors.New("store: not found")

// Form is the current draft of one form.
type Form struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Schema    *schema.FormSchema `json:"schema,omitempty"`
	Published int                `json:"published"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Version is a published snapshot. Versions number from 1 per form.
type Version struct {
	FormID      string             `json:"formId"`
	Number      int                `json:"number"`
	Schema      *schema.FormSchema `json:"schema,omitempty"`
	PublishedAt time.Time          `json:"publishedAt"`
}

// Store is the persistence collaborator of a builder session. Schemas are
// validated before they are written; an invalid document wraps
// schema.ErrInvalidSchema.
type Store interface {
	// Create stores s as the draft of a new form. A nil schema starts empty.
	Create(ctx context.Context, s *schema.FormSchema) (Form, error)
	// Load returns the draft of the form.
	Load(ctx context.Context, id string) (Form, error)
	// List returns every form without its schema, most recently updated first.
	List(ctx context.Context) ([]Form, error)
	// Save overwrites the draft.
	Save(ctx context.Context, id string, s *schema.FormSchema) (Form, error)
	// Publish snapshots the current draft as the next version.
	Publish(ctx context.Context, id string) (Version, error)
	// Versions lists published versions without their schemas, oldest first.
	Versions(ctx context.Context, id string) ([]Version, error)
	// LoadVersion returns one published version.
	LoadVersion(ctx context.Context, id string, number int) (Version, error)
	// Delete removes the form and all its versions.
	Delete(ctx context.Context, id string) error
}

func titleOf(s *schema.FormSchema) string {
	if s == nil || s.Metadata == nil {
		return ""
	}
	return s.Metadata.Title
}

func prepare(s *schema.FormSchema) (*schema.FormSchema, error) {
	if s == nil {
		return schema.New(), nil
	}
	out := s.Clone()
	if out.Version == "" {
		out.Version = schema.CurrentVersion
	}
	if err := schema.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}
