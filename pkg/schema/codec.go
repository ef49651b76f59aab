package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

var supportedVersions = []string{CurrentVersion}

// SupportedVersion reports whether documents tagged v can be edited.
func SupportedVersion(v string) bool {
	return slices.Contains(supportedVersions, v)
}

// Decode parses a persisted document. A missing version is read as the
// current one; any other unknown version is rejected. The result is
// validated before it is returned.
func Decode(data []byte) (*FormSchema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("schema: decode: empty document: %w", ErrInvalidSchema)
	}
	var doc FormSchema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: decode: %w: %v", ErrInvalidSchema, err)
	}
	if doc.Version == "" {
		doc.Version = CurrentVersion
	}
	if doc.Fields == nil {
		doc.Fields = []*Node{}
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode serialises s in the persisted format.
func Encode(s *FormSchema) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("schema: encode: %w", ErrInvalidSchema)
	}
	out := *s
	if out.Fields == nil {
		out.Fields = []*Node{}
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("schema: encode: %w", err)
	}
	return data, nil
}

// Validate checks the tree invariants: supported version, non-empty unique
// ids across nodes and branch entries, and children only on containers in the
// collection matching their type.
func Validate(s *FormSchema) error {
	if s == nil {
		return fmt.Errorf("schema: validate: nil document: %w", ErrInvalidSchema)
	}
	if !SupportedVersion(s.Version) {
		return fmt.Errorf("schema: version %q: %w", s.Version, ErrUnsupportedVersion)
	}
	v := validator{seen: make(map[string]struct{})}
	v.nodes(s.Fields, "fields")
	if len(v.problems) > 0 {
		return &ValidationError{Problems: v.problems}
	}
	return nil
}

type validator struct {
	seen     map[string]struct{}
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) id(id, path string) {
	if id == "" {
		v.addf("%s: empty id", path)
		return
	}
	if _, dup := v.seen[id]; dup {
		v.addf("%s: duplicate id %q", path, id)
		return
	}
	v.seen[id] = struct{}{}
}

func (v *validator) nodes(nodes []*Node, path string) {
	for idx, node := range nodes {
		at := fmt.Sprintf("%s[%d]", path, idx)
		if node == nil {
			v.addf("%s: null node", at)
			continue
		}
		v.node(node, at)
	}
}

func (v *validator) node(n *Node, path string) {
	v.id(n.ID, path)
	if n.Type == "" {
		v.addf("%s: empty type", path)
	}
	want := n.Type.BranchKey()
	present := map[string]bool{
		BranchChildren: len(n.Children) > 0,
		BranchTabs:     len(n.Tabs) > 0,
		BranchItems:    len(n.Items) > 0,
		BranchSteps:    len(n.Steps) > 0,
	}
	for _, key := range []string{BranchChildren, BranchTabs, BranchItems, BranchSteps} {
		if present[key] && key != want {
			v.addf("%s: %s type %q cannot hold %s", path, n.Type.Kind(), n.Type, key)
		}
	}
	switch want {
	case BranchChildren:
		v.nodes(n.Children, path+".children")
	case BranchTabs, BranchItems, BranchSteps:
		for idx, section := range n.Sections() {
			at := fmt.Sprintf("%s.%s[%d]", path, want, idx)
			if section == nil {
				v.addf("%s: null %s entry", at, want)
				continue
			}
			v.id(section.ID, at)
			v.nodes(section.Children, at+".children")
		}
	}
}
