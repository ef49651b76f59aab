package catalog

import (
	"errors"

	"github.com/goliatone/go-formbuilder/pkg/blocks"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// ErrUnknownType is returned when a palette type is not in the catalog.
var ErrUnknownType = errors.New("catalog: unknown type")

// Category groups palette entries.
type Category string

const (
	CategoryInput  Category = "input"
	CategoryStatic Category = "static"
	CategoryLayout Category = "layout"
)

// Attribute describes one editable property shown in the properties panel.
type Attribute struct {
	Key     string   `json:"key" yaml:"key"`
	Label   string   `json:"label" yaml:"label"`
	Type    string   `json:"type" yaml:"type"`
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Attribute editor types.
const (
	AttrText     = "text"
	AttrTextarea = "textarea"
	AttrNumber   = "number"
	AttrBool     = "boolean"
	AttrOptions  = "options"
	AttrChoice   = "choice"
)

// FieldEntry is a palette entry of the field-schema builder.
type FieldEntry struct {
	Type        schema.FieldType `json:"type" yaml:"type"`
	Label       string           `json:"label" yaml:"label"`
	Category    Category         `json:"category" yaml:"category"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string           `json:"icon,omitempty" yaml:"icon,omitempty"`
	Defaults    map[string]any   `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Sections    []string         `json:"sections,omitempty" yaml:"sections,omitempty"`
	Attributes  []Attribute      `json:"attributes" yaml:"attributes"`
}

// BlockEntry is a palette entry of the row/column block builder.
type BlockEntry struct {
	Type        blocks.BlockType `json:"type" yaml:"type"`
	Label       string           `json:"label" yaml:"label"`
	Category    Category         `json:"category" yaml:"category"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string           `json:"icon,omitempty" yaml:"icon,omitempty"`
	Defaults    map[string]any   `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Attributes  []Attribute      `json:"attributes" yaml:"attributes"`
}

// Catalog holds the palettes. It is safe for concurrent readers once built.
type Catalog struct {
	fields     map[schema.FieldType]FieldEntry
	fieldOrder []schema.FieldType
	blocks     map[blocks.BlockType]BlockEntry
	blockOrder []blocks.BlockType
}
