package canvas

import (
	"slices"

	"github.com/goliatone/go-formbuilder/pkg/blocks"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/tree"
)

// SchemaEditor adapts a form-schema builder to the surface. Containers nest
// freely; move-up/down buttons are a block-builder feature and stay disabled.
type SchemaEditor struct {
	Engine  *builder.Engine
	Catalog *catalog.Catalog
}

// NewSchemaEditor returns an Editor for engine using cat as palette. A nil
// catalog uses catalog.Default.
func NewSchemaEditor(engine *builder.Engine, cat *catalog.Catalog) *SchemaEditor {
	if cat == nil {
		cat = catalog.Default()
	}
	return &SchemaEditor{Engine: engine, Catalog: cat}
}

func (a *SchemaEditor) Insert(paletteType string, pos editor.Position) (string, bool) {
	node, err := a.Catalog.NewNode(schema.FieldType(paletteType))
	if err != nil {
		a.Engine.Logger().Debug("canvas: palette entry refused", "type", paletteType, "error", err)
		return "", false
	}
	return a.Engine.AddField(node, pos)
}

func (a *SchemaEditor) Move(id string, pos editor.Position) bool { return a.Engine.MoveField(id, pos) }

func (a *SchemaEditor) Duplicate(id string) (string, bool) { return a.Engine.DuplicateField(id) }

func (a *SchemaEditor) Remove(id string) bool { return a.Engine.RemoveField(id) }

func (a *SchemaEditor) Select(id string) bool { return a.Engine.SelectField(id) }

func (a *SchemaEditor) Selected() string { return a.Engine.State().SelectedID }

func (a *SchemaEditor) Shift(string, int) bool { return false }

func (a *SchemaEditor) CanShift(string, int) bool { return false }

func (a *SchemaEditor) Exists(id string) bool {
	_, ok := a.Engine.Find(id)
	return ok
}

func (a *SchemaEditor) Locked(string) bool { return false }

func (a *SchemaEditor) IsContainer(id string) bool {
	node, ok := a.Engine.Find(id)
	return ok && node.Type.IsContainer()
}

func (a *SchemaEditor) Locate(id string) (editor.Position, bool) { return a.Engine.Locate(id) }

func (a *SchemaEditor) Target(parentID string) (string, int, bool) { return a.Engine.Target(parentID) }

// Accepts refuses unknown palette entries and drops of a node into its own
// subtree.
func (a *SchemaEditor) Accepts(parentID string, src Source) bool {
	key, _, ok := a.Engine.Target(parentID)
	if !ok {
		return false
	}
	if !src.IsNode() {
		return a.Catalog.HasField(schema.FieldType(src.PaletteType))
	}
	node, ok := a.Engine.Find(src.NodeID)
	if !ok {
		return false
	}
	return key == "" || !slices.Contains(tree.IDs([]*schema.Node{node}), key)
}

// BlockEditor adapts the row/column block builder to the surface.
type BlockEditor struct {
	Engine  *blocks.Engine
	Catalog *catalog.Catalog
}

// NewBlockEditor returns an Editor for engine using cat as palette. A nil
// catalog uses catalog.Default.
func NewBlockEditor(engine *blocks.Engine, cat *catalog.Catalog) *BlockEditor {
	if cat == nil {
		cat = catalog.Default()
	}
	return &BlockEditor{Engine: engine, Catalog: cat}
}

func (a *BlockEditor) Insert(paletteType string, pos editor.Position) (string, bool) {
	block, err := a.Catalog.NewBlock(blocks.BlockType(paletteType))
	if err != nil {
		return "", false
	}
	return a.Engine.AddBlock(block, pos)
}

func (a *BlockEditor) Move(id string, pos editor.Position) bool { return a.Engine.MoveBlock(id, pos) }

func (a *BlockEditor) Duplicate(id string) (string, bool) { return a.Engine.DuplicateBlock(id) }

func (a *BlockEditor) Remove(id string) bool { return a.Engine.RemoveBlock(id) }

func (a *BlockEditor) Select(id string) bool { return a.Engine.SelectBlock(id) }

func (a *BlockEditor) Selected() string { return a.Engine.State().SelectedID }

func (a *BlockEditor) Shift(id string, delta int) bool {
	if delta < 0 {
		return a.Engine.MoveUp(id)
	}
	return a.Engine.MoveDown(id)
}

func (a *BlockEditor) CanShift(id string, delta int) bool { return a.Engine.CanMove(id, delta) }

func (a *BlockEditor) Exists(id string) bool {
	_, ok := a.Engine.Find(id)
	return ok
}

func (a *BlockEditor) Locked(id string) bool {
	path, ok := a.Engine.Ancestors(id)
	if !ok {
		return false
	}
	for _, b := range path {
		if b.IsLocked {
			return true
		}
	}
	return false
}

func (a *BlockEditor) IsContainer(id string) bool {
	b, ok := a.Engine.Find(id)
	return ok && b.BlockType.IsLayout()
}

func (a *BlockEditor) Locate(id string) (editor.Position, bool) { return a.Engine.Locate(id) }

func (a *BlockEditor) Target(parentID string) (string, int, bool) { return a.Engine.Target(parentID) }

// Accepts applies the block layout rules: layouts land at the root, leaves
// land in unlocked layouts.
func (a *BlockEditor) Accepts(parentID string, src Source) bool {
	key, _, ok := a.Engine.Target(parentID)
	if !ok {
		return false
	}
	var typ blocks.BlockType
	if src.IsNode() {
		b, ok := a.Engine.Find(src.NodeID)
		if !ok || a.Locked(src.NodeID) {
			return false
		}
		typ = b.BlockType
	} else {
		entry, ok := a.Catalog.Block(blocks.BlockType(src.PaletteType))
		if !ok {
			return false
		}
		typ = entry.Type
	}
	if key == "" {
		return typ.IsLayout() && !typ.IsZone()
	}
	if a.Locked(key) || src.NodeID == key {
		return false
	}
	return !typ.IsLayout()
}
