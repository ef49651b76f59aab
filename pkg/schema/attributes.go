package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Patch is a shallow attribute update keyed by persisted attribute names. A
// nil value clears the attribute.
type Patch map[string]any

var protectedKeys = map[string]struct{}{
	"id":           {},
	"type":         {},
	BranchChildren: {},
	BranchTabs:     {},
	BranchItems:    {},
	BranchSteps:    {},
}

var (
	inputKeys     = []string{"name", "label", "placeholder", "description", "required", "defaultValue"}
	sectionKeys   = []string{"title", "description", "collapsible"}
	multiKeys     = []string{"title", "description"}
	attributeKeys = map[FieldType][]string{
		TypeText:      inputKeys,
		TypeEmail:     inputKeys,
		TypePhone:     inputKeys,
		TypeURL:       inputKeys,
		TypePassword:  inputKeys,
		TypeHidden:    {"name", "label", "defaultValue"},
		TypeTextarea:  with(inputKeys, "rows"),
		TypeNumber:    with(inputKeys, "min", "max", "step"),
		TypeSlider:    with(inputKeys, "min", "max", "step"),
		TypeRating:    with(inputKeys, "max"),
		TypeSelect:    with(inputKeys, "options", "multiple"),
		TypeRadio:     with(inputKeys, "options"),
		TypeCheckbox:  with(inputKeys, "options"),
		TypeDate:      inputKeys,
		TypeTime:      inputKeys,
		TypeFile:      with(inputKeys, "accept", "multiple"),
		TypeSignature: {"name", "label", "description", "required"},
		TypeSwitch:    {"name", "label", "description", "required", "defaultValue"},
		TypeHeading:   {"content", "level"},
		TypeParagraph: {"content"},
		TypeDivider:   {},
		TypeGrid:      {"title", "columns", "gap"},
		TypeRow:       {"gap"},
		TypeColumn:    {"gap"},
		TypeSection:   sectionKeys,
		TypeCard:      sectionKeys,
		TypeGroup:     with(sectionKeys, "direction"),
		TypeHeader:    {"title", "description"},
		TypeFooter:    {"title", "description"},
		TypeTabs:      multiKeys,
		TypeAccordion: multiKeys,
		TypeStepper:   multiKeys,
	}
)

func with(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

// AttributeKeys lists the editable attributes of t. Unknown types expose the
// input attribute set.
func AttributeKeys(t FieldType) []string {
	keys, ok := attributeKeys[t]
	if !ok {
		keys = inputKeys
	}
	return slices.Clone(keys)
}

// AllowsAttribute reports whether key is editable on nodes of type t.
func AllowsAttribute(t FieldType, key string) bool {
	return slices.Contains(AttributeKeys(t), key)
}

// ApplyPatch returns a copy of n with patch merged in. Structural keys and
// keys outside the type's attribute set are rejected; values that do not fit
// the attribute's type return ErrInvalidAttribute. n itself is never modified.
func ApplyPatch(n *Node, patch Patch) (*Node, error) {
	if n == nil {
		return nil, fmt.Errorf("schema: apply patch: %w", ErrInvalidSchema)
	}
	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := protectedKeys[key]; ok {
			return nil, fmt.Errorf("schema: attribute %q on %s: %w", key, n.Type, ErrProtectedAttribute)
		}
		if !AllowsAttribute(n.Type, key) {
			return nil, fmt.Errorf("schema: attribute %q on %s: %w", key, n.Type, ErrUnknownAttribute)
		}
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("schema: encode node %s: %w", n.ID, err)
	}
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("schema: decode node %s: %w", n.ID, err)
	}
	for _, key := range keys {
		value := patch[key]
		if value == nil {
			delete(doc, key)
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("schema: attribute %q: %w: %v", key, ErrInvalidAttribute, err)
		}
		doc[key] = encoded
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: encode patched node %s: %w", n.ID, err)
	}
	var out Node
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("schema: patch node %s: %w: %v", n.ID, ErrInvalidAttribute, err)
	}
	return &out, nil
}
