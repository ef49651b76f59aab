package cli

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/canvas"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

type zoneChoice struct {
	label string
	zone  canvas.Zone
}

type nodeChoice struct {
	id    string
	label string
}

func describe(n *schema.Node) string {
	text := n.Label
	if text == "" {
		text = n.Title
	}
	if text == "" {
		text = n.Content
	}
	if text == "" {
		return fmt.Sprintf("%s [%s]", n.Type, n.ID)
	}
	return fmt.Sprintf("%s %q [%s]", n.Type, text, n.ID)
}

// nodesOf lists nodes in document order, indented by depth.
func nodesOf(s *schema.FormSchema) []nodeChoice {
	var out []nodeChoice
	s.Walk(func(n *schema.Node, depth int) bool {
		out = append(out, nodeChoice{id: n.ID, label: strings.Repeat("  ", depth) + describe(n)})
		return true
	})
	return out
}

// zonesOf lists every insertion point: before each child and at the end of
// each collection, starting with the root.
func zonesOf(s *schema.FormSchema) []zoneChoice {
	var out []zoneChoice
	var collect func(key, name string, children []*schema.Node)
	collect = func(key, name string, children []*schema.Node) {
		for i, child := range children {
			out = append(out, zoneChoice{label: "Before " + describe(child), zone: canvas.Before(key, i)})
		}
		out = append(out, zoneChoice{label: "End of " + name, zone: canvas.EndOf(key)})
		for _, child := range children {
			switch child.Type.Kind() {
			case schema.KindContainer:
				collect(child.ID, describe(child), child.Children)
			case schema.KindMultiBranch:
				for _, section := range child.Sections() {
					if section == nil {
						continue
					}
					title := section.Title
					if title == "" {
						title = section.ID
					}
					collect(section.ID, fmt.Sprintf("%s / %s", describe(child), title), section.Children)
				}
			}
		}
	}
	collect("", "form", s.Fields)
	return out
}

func zoneLabels(zones []zoneChoice) []string {
	out := make([]string, 0, len(zones))
	for _, z := range zones {
		out = append(out, z.label)
	}
	return out
}
