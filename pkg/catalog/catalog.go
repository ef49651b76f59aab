package catalog

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/blocks"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from EmbeddedFS.
func Default() *Catalog {
	defaultOnce.Do(func() {
		cat, err := LoadFS(EmbeddedFS())
		if err != nil {
			// The embedded catalog is covered by tests.
			panic(err)
		}
		defaultCatalog = cat
	})
	return defaultCatalog
}

// Fields returns the field palette in declaration order.
func (c *Catalog) Fields() []FieldEntry {
	if c == nil {
		return nil
	}
	out := make([]FieldEntry, 0, len(c.fieldOrder))
	for _, t := range c.fieldOrder {
		out = append(out, c.fields[t])
	}
	return out
}

// FieldsByCategory returns the field palette entries of one category.
func (c *Catalog) FieldsByCategory(cat Category) []FieldEntry {
	var out []FieldEntry
	for _, entry := range c.Fields() {
		if entry.Category == cat {
			out = append(out, entry)
		}
	}
	return out
}

// Field returns the palette entry for t.
func (c *Catalog) Field(t schema.FieldType) (FieldEntry, bool) {
	if c == nil {
		return FieldEntry{}, false
	}
	entry, ok := c.fields[t]
	return entry, ok
}

// HasField reports whether t is in the field palette.
func (c *Catalog) HasField(t schema.FieldType) bool {
	_, ok := c.Field(t)
	return ok
}

// Blocks returns the block palette in declaration order.
func (c *Catalog) Blocks() []BlockEntry {
	if c == nil {
		return nil
	}
	out := make([]BlockEntry, 0, len(c.blockOrder))
	for _, t := range c.blockOrder {
		out = append(out, c.blocks[t])
	}
	return out
}

// Block returns the palette entry for t.
func (c *Catalog) Block(t blocks.BlockType) (BlockEntry, bool) {
	if c == nil {
		return BlockEntry{}, false
	}
	entry, ok := c.blocks[t]
	return entry, ok
}

// Attributes returns the property descriptors for nodes of type t.
func (c *Catalog) Attributes(t schema.FieldType) []Attribute {
	entry, _ := c.Field(t)
	return entry.Attributes
}

// NewNode builds an id-less node of type t from the palette defaults, ready to
// be dropped through AddField. Multi-branch types get one empty section per
// configured title.
func (c *Catalog) NewNode(t schema.FieldType) (*schema.Node, error) {
	entry, ok := c.Field(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	node, err := schema.ApplyPatch(&schema.Node{Type: t}, schema.Patch(entry.Defaults))
	if err != nil {
		return nil, fmt.Errorf("catalog: defaults for %q: %w", t, err)
	}
	if len(entry.Sections) > 0 {
		sections := make([]*schema.Section, 0, len(entry.Sections))
		for _, title := range entry.Sections {
			sections = append(sections, &schema.Section{Title: title})
		}
		switch t.BranchKey() {
		case schema.BranchTabs:
			node.Tabs = sections
		case schema.BranchItems:
			node.Items = sections
		case schema.BranchSteps:
			node.Steps = sections
		}
	}
	return node, nil
}

// NewBlock builds an id-less block of type t from the palette defaults.
func (c *Catalog) NewBlock(t blocks.BlockType) (*blocks.Instance, error) {
	entry, ok := c.Block(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	block, err := blocks.ApplyPatch(&blocks.Instance{BlockType: t}, entry.Defaults)
	if err != nil {
		return nil, fmt.Errorf("catalog: defaults for %q: %w", t, err)
	}
	return block, nil
}
