package schema

import (
	"time"

	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formbuilder/pkg/tree"
)

// CurrentVersion is the schema version written by this package.
const CurrentVersion = "1.0"

// FormSchema is the persisted document: a versioned envelope around the
// ordered field tree. Fields order is rendering order.
type FormSchema struct {
	Version  string    `json:"version" jsonschema:"enum=1.0"`
	Fields   []*Node   `json:"fields"`
	Settings Settings  `json:"settings"`
	Theme    Theme     `json:"theme"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Settings holds form-level submission behaviour.
type Settings struct {
	SubmitLabel    string `json:"submitLabel,omitempty"`
	SuccessMessage string `json:"successMessage,omitempty"`
	RedirectURL    string `json:"redirectUrl,omitempty"`
	Layout         string `json:"layout,omitempty"`
	ShowProgress   bool   `json:"showProgress,omitempty"`
}

// Theme names the go-theme manifest/variant used when rendering the form and
// carries per-form token overrides.
type Theme struct {
	Name    string            `json:"name,omitempty"`
	Variant string            `json:"variant,omitempty"`
	Tokens  map[string]string `json:"tokens,omitempty"`
}

// Metadata is optional descriptive information stored with the document.
type Metadata struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time        `json:"updatedAt,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Option is one choice of a select, radio or checkbox group.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Node is any element of the field tree. Leaf fields use the input
// attributes; containers hold Children, or one of Tabs/Items/Steps for
// multi-branch containers. Which attributes apply to which type is defined by
// AttributeKeys.
type Node struct {
	ID           string     `json:"id"`
	Type         FieldType  `json:"type"`
	Name         string     `json:"name,omitempty"`
	Label        string     `json:"label,omitempty"`
	Placeholder  string     `json:"placeholder,omitempty"`
	Description  string     `json:"description,omitempty"`
	Required     bool       `json:"required"`
	DefaultValue any        `json:"defaultValue,omitempty"`
	Options      []Option   `json:"options,omitempty"`
	Min          *float64   `json:"min,omitempty"`
	Max          *float64   `json:"max,omitempty"`
	Step         *float64   `json:"step,omitempty"`
	Rows         int        `json:"rows,omitempty"`
	Accept       string     `json:"accept,omitempty"`
	Multiple     bool       `json:"multiple,omitempty"`
	Content      string     `json:"content,omitempty"`
	Level        int        `json:"level,omitempty"`
	Columns      int        `json:"columns,omitempty"`
	Gap          int        `json:"gap,omitempty"`
	Direction    string     `json:"direction,omitempty"`
	Title        string     `json:"title,omitempty"`
	Collapsible  bool       `json:"collapsible,omitempty"`
	Children     []*Node    `json:"children,omitempty"`
	Tabs         []*Section `json:"tabs,omitempty"`
	Items        []*Section `json:"items,omitempty"`
	Steps        []*Section `json:"steps,omitempty"`
}

// Section is one branch of a multi-branch container (a tab, an accordion
// item or a wizard step).
type Section struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Children    []*Node `json:"children,omitempty"`
}

// New returns an empty schema at the current version.
func New() *FormSchema {
	return &FormSchema{
		Version: CurrentVersion,
		Fields:  []*Node{},
	}
}

// Roots exposes the root collection to tree helpers.
func (s *FormSchema) Roots() *[]*Node {
	return &s.Fields
}

// Clone returns a deep copy sharing no references with s.
func (s *FormSchema) Clone() *FormSchema {
	if s == nil {
		return nil
	}
	out := deepcopy.Copy(s).(*FormSchema)
	if out.Fields == nil {
		out.Fields = []*Node{}
	}
	return out
}

// NodeID implements tree.Node.
func (n *Node) NodeID() string {
	if n == nil {
		return ""
	}
	return n.ID
}

// SetNodeID implements tree.Node.
func (n *Node) SetNodeID(id string) {
	n.ID = id
}

// Branches implements tree.Node. Only the collection matching the node's
// kind is exposed; leaves have none.
func (n *Node) Branches() []tree.Branch[*Node] {
	if n == nil {
		return nil
	}
	switch n.Type.BranchKey() {
	case BranchChildren:
		return []tree.Branch[*Node]{{Children: &n.Children}}
	case BranchTabs:
		return sectionBranches(n.Tabs)
	case BranchItems:
		return sectionBranches(n.Items)
	case BranchSteps:
		return sectionBranches(n.Steps)
	}
	return nil
}

// Sections returns the branch entries of a multi-branch container.
func (n *Node) Sections() []*Section {
	if n == nil {
		return nil
	}
	switch n.Type.BranchKey() {
	case BranchTabs:
		return n.Tabs
	case BranchItems:
		return n.Items
	case BranchSteps:
		return n.Steps
	}
	return nil
}

// RelabelBranches implements tree.Relabeler.
func (n *Node) RelabelBranches(next func() string) {
	for _, section := range n.Sections() {
		if section != nil {
			section.ID = next()
		}
	}
}

// Clone implements tree.Node with a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return deepcopy.Copy(n).(*Node)
}

func sectionBranches(sections []*Section) []tree.Branch[*Node] {
	out := make([]tree.Branch[*Node], 0, len(sections))
	for _, section := range sections {
		if section == nil {
			continue
		}
		out = append(out, tree.Branch[*Node]{ID: section.ID, Children: &section.Children})
	}
	return out
}
