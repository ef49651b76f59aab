package blocks

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
)

var (
	// ErrUnknownAttribute is returned for keys outside the block type's set.
	ErrUnknownAttribute = errors.New("blocks: unknown attribute")
	// ErrInvalidAttribute is returned when a value has the wrong type.
	ErrInvalidAttribute = errors.New("blocks: invalid attribute value")
	// ErrInvalidDocument marks block trees breaking the layout rules.
	ErrInvalidDocument = errors.New("blocks: invalid document")
)

type attrKind int

const (
	kindString attrKind = iota
	kindBool
	kindNumber
	kindOptions
)

var (
	fieldAttrs = map[string]attrKind{"label": kindString, "helperText": kindString, "required": kindBool}
	inputAttrs = with(fieldAttrs, map[string]attrKind{"placeholder": kindString})

	attributeKinds = map[BlockType]map[string]attrKind{
		RowLayout:    {"gap": kindNumber},
		ColumnLayout: {"gap": kindNumber},
		Header:       {"title": kindString, "description": kindString},
		Footer:       {"submitLabel": kindString, "note": kindString},
		TextField:    inputAttrs,
		TextArea:     with(inputAttrs, map[string]attrKind{"rows": kindNumber}),
		NumberField:  with(inputAttrs, map[string]attrKind{"min": kindNumber, "max": kindNumber}),
		Select:       with(inputAttrs, map[string]attrKind{"options": kindOptions}),
		RadioSelect:  with(fieldAttrs, map[string]attrKind{"options": kindOptions}),
		Checkbox:     fieldAttrs,
		DatePicker:   fieldAttrs,
		StarRating:   with(fieldAttrs, map[string]attrKind{"max": kindNumber}),
		Heading:      {"text": kindString, "level": kindNumber},
		Paragraph:    {"text": kindString},
		Divider:      {},
	}
)

func with(base, extra map[string]attrKind) map[string]attrKind {
	out := maps.Clone(base)
	maps.Copy(out, extra)
	return out
}

// AttributeKeys lists the attributes editable on t, sorted.
func AttributeKeys(t BlockType) []string {
	keys := slices.Collect(maps.Keys(attributeKinds[t]))
	sort.Strings(keys)
	return keys
}

// ApplyPatch returns a copy of b with patch merged into its attributes. A nil
// value removes the attribute.
func ApplyPatch(b *Instance, patch map[string]any) (*Instance, error) {
	if b == nil {
		return nil, fmt.Errorf("blocks: apply patch: %w", ErrInvalidDocument)
	}
	allowed := attributeKinds[b.BlockType]
	out := b.Clone()
	for key, value := range patch {
		kind, ok := allowed[key]
		if !ok {
			return nil, fmt.Errorf("blocks: attribute %q on %s: %w", key, b.BlockType, ErrUnknownAttribute)
		}
		if value == nil {
			delete(out.Attributes, key)
			continue
		}
		if !kind.accepts(value) {
			return nil, fmt.Errorf("blocks: attribute %q on %s: %w", key, b.BlockType, ErrInvalidAttribute)
		}
		if out.Attributes == nil {
			out.Attributes = make(map[string]any)
		}
		out.Attributes[key] = normalize(value)
	}
	if len(out.Attributes) == 0 {
		out.Attributes = nil
	}
	return out, nil
}

func (k attrKind) accepts(v any) bool {
	switch k {
	case kindString:
		_, ok := v.(string)
		return ok
	case kindBool:
		_, ok := v.(bool)
		return ok
	case kindNumber:
		switch v.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case kindOptions:
		switch opts := v.(type) {
		case []string:
			return true
		case []any:
			for _, opt := range opts {
				if _, ok := opt.(string); !ok {
					return false
				}
			}
			return true
		}
		return false
	}
	return false
}

// normalize stores numbers as float64 and options as []any so values read
// back from JSON compare equal to values set in code.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case []string:
		out := make([]any, len(n))
		for i, s := range n {
			out[i] = s
		}
		return out
	}
	return v
}
