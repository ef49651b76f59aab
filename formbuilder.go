// Package formbuilder is the top-level entry point: shortcuts for the field
// builder, the block builder, the form store and HTML previews.
package formbuilder

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/blocks"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

// Schema is the persisted form document.
type Schema = schema.FormSchema

// Node is one element of a form's field tree.
type Node = schema.Node

// NewBuilder returns a field builder over an empty form.
func NewBuilder(opts ...builder.Option) *builder.Engine {
	return builder.New(opts...)
}

// NewBlockBuilder returns a row/column block builder over an empty page.
func NewBlockBuilder(opts ...builder.Option) *blocks.Engine {
	return blocks.New(opts...)
}

// Catalog returns the embedded palette.
func Catalog() *catalog.Catalog {
	return catalog.Default()
}

// OpenStore opens (creating if needed) the SQLite form store at path.
func OpenStore(ctx context.Context, path string, opts ...store.Option) (*store.SQLite, error) {
	return store.OpenSQLite(ctx, path, opts...)
}

// RenderPreview renders s as a standalone HTML page.
func RenderPreview(ctx context.Context, s *Schema, opts ...preview.Option) ([]byte, error) {
	r, err := preview.New(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render(ctx, s)
}

// WithThemeSelector resolves form themes through a go-theme selector when
// rendering previews.
func WithThemeSelector(selector theme.ThemeSelector) preview.Option {
	return preview.WithThemeSelector(selector)
}

// EmbeddedTemplates exposes the preview templates so callers can copy or
// extend them.
func EmbeddedTemplates() fs.FS {
	return preview.TemplatesFS()
}
