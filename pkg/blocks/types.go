package blocks

import (
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formbuilder/pkg/tree"
)

// BlockType identifies a block. The string is persisted verbatim.
type BlockType string

// Layout blocks.
const (
	RowLayout    BlockType = "RowLayout"
	ColumnLayout BlockType = "ColumnLayout"
	Header       BlockType = "Header"
	Footer       BlockType = "Footer"
)

// Leaf blocks.
const (
	TextField   BlockType = "TextField"
	TextArea    BlockType = "TextArea"
	NumberField BlockType = "NumberField"
	Select      BlockType = "Select"
	RadioSelect BlockType = "RadioSelect"
	Checkbox    BlockType = "Checkbox"
	DatePicker  BlockType = "DatePicker"
	StarRating  BlockType = "StarRating"
	Heading     BlockType = "Heading"
	Paragraph   BlockType = "Paragraph"
	Divider     BlockType = "Divider"
)

// IsLayout reports whether t holds child blocks.
func (t BlockType) IsLayout() bool {
	switch t {
	case RowLayout, ColumnLayout, Header, Footer:
		return true
	}
	return false
}

// IsZone reports whether t is one of the structural header/footer regions.
func (t BlockType) IsZone() bool {
	return t == Header || t == Footer
}

// Known reports whether t is a built-in block type.
func (t BlockType) Known() bool {
	_, ok := attributeKinds[t]
	return ok
}

// Instance is one block of the layout tree (FormBlockInstance). Layout blocks
// hold ChildBlocks; leaves hold none. Locked blocks are structural and cannot
// be removed, reordered, duplicated or dropped into.
type Instance struct {
	ID          string         `json:"id"`
	BlockType   BlockType      `json:"blockType"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	ChildBlocks []*Instance    `json:"childblocks,omitempty"`
	IsLocked    bool           `json:"isLocked,omitempty"`
}

// NodeID implements tree.Node.
func (b *Instance) NodeID() string {
	if b == nil {
		return ""
	}
	return b.ID
}

// SetNodeID implements tree.Node.
func (b *Instance) SetNodeID(id string) { b.ID = id }

// Branches implements tree.Node.
func (b *Instance) Branches() []tree.Branch[*Instance] {
	if b == nil || !b.BlockType.IsLayout() {
		return nil
	}
	return []tree.Branch[*Instance]{{Children: &b.ChildBlocks}}
}

// Clone implements tree.Node.
func (b *Instance) Clone() *Instance {
	if b == nil {
		return nil
	}
	return deepcopy.Copy(b).(*Instance)
}

// String returns the attribute key as a string, or "".
func (b *Instance) String(key string) string {
	if b == nil {
		return ""
	}
	s, _ := b.Attributes[key].(string)
	return s
}

// Bool returns the attribute key as a bool.
func (b *Instance) Bool(key string) bool {
	if b == nil {
		return false
	}
	v, _ := b.Attributes[key].(bool)
	return v
}

// Document is the persisted block tree.
type Document struct {
	Version string      `json:"version"`
	Blocks  []*Instance `json:"blocks"`
}

// CurrentVersion is the block document version written by this package.
const CurrentVersion = "1.0"

// Roots exposes the root collection to tree helpers.
func (d *Document) Roots() *[]*Instance { return &d.Blocks }

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := deepcopy.Copy(d).(*Document)
	if out.Blocks == nil {
		out.Blocks = []*Instance{}
	}
	return out
}

// NewDocument returns the default layout: a locked header, one empty row and
// a locked footer. Ids are assigned by the engine.
func NewDocument() *Document {
	return &Document{
		Version: CurrentVersion,
		Blocks: []*Instance{
			{ID: "header", BlockType: Header, IsLocked: true, Attributes: map[string]any{"title": "Untitled form"}},
			{ID: "row-1", BlockType: RowLayout},
			{ID: "footer", BlockType: Footer, IsLocked: true, Attributes: map[string]any{"submitLabel": "Submit"}},
		},
	}
}
