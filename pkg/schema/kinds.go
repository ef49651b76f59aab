package schema

// FieldType identifies the kind of node. The string is persisted verbatim.
type FieldType string

// Input fields.
const (
	TypeText      FieldType = "text"
	TypeEmail     FieldType = "email"
	TypeNumber    FieldType = "number"
	TypeTextarea  FieldType = "textarea"
	TypeSelect    FieldType = "select"
	TypeRadio     FieldType = "radio"
	TypeCheckbox  FieldType = "checkbox"
	TypeDate      FieldType = "date"
	TypeTime      FieldType = "time"
	TypeFile      FieldType = "file"
	TypeSignature FieldType = "signature"
	TypeRating    FieldType = "rating"
	TypeSlider    FieldType = "slider"
	TypePhone     FieldType = "phone"
	TypeURL       FieldType = "url"
	TypePassword  FieldType = "password"
	TypeSwitch    FieldType = "switch"
	TypeHidden    FieldType = "hidden"
)

// Static content.
const (
	TypeHeading   FieldType = "heading"
	TypeParagraph FieldType = "paragraph"
	TypeDivider   FieldType = "divider"
)

// Layout containers.
const (
	TypeGrid      FieldType = "grid"
	TypeRow       FieldType = "row"
	TypeColumn    FieldType = "column"
	TypeSection   FieldType = "section"
	TypeCard      FieldType = "card"
	TypeGroup     FieldType = "group"
	TypeHeader    FieldType = "header"
	TypeFooter    FieldType = "footer"
	TypeTabs      FieldType = "tabs"
	TypeAccordion FieldType = "accordion"
	TypeStepper   FieldType = "stepper"
)

// Kind classifies field types by the shape of node they produce.
type Kind int

const (
	// KindInput is a leaf capturing one user input.
	KindInput Kind = iota
	// KindStatic is a leaf rendering content without capturing input.
	KindStatic
	// KindContainer holds a single ordered children collection.
	KindContainer
	// KindMultiBranch holds several named children collections.
	KindMultiBranch
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindContainer:
		return "container"
	case KindMultiBranch:
		return "multi-branch"
	default:
		return "input"
	}
}

// Persisted keys of the children collections.
const (
	BranchChildren = "children"
	BranchTabs     = "tabs"
	BranchItems    = "items"
	BranchSteps    = "steps"
)

var kinds = map[FieldType]Kind{
	TypeHeading:   KindStatic,
	TypeParagraph: KindStatic,
	TypeDivider:   KindStatic,
	TypeGrid:      KindContainer,
	TypeRow:       KindContainer,
	TypeColumn:    KindContainer,
	TypeSection:   KindContainer,
	TypeCard:      KindContainer,
	TypeGroup:     KindContainer,
	TypeHeader:    KindContainer,
	TypeFooter:    KindContainer,
	TypeTabs:      KindMultiBranch,
	TypeAccordion: KindMultiBranch,
	TypeStepper:   KindMultiBranch,
}

var branchKeys = map[FieldType]string{
	TypeTabs:      BranchTabs,
	TypeAccordion: BranchItems,
	TypeStepper:   BranchSteps,
}

// Kind reports the node shape for t. Types this package does not know are
// treated as input leaves so newer documents still load.
func (t FieldType) Kind() Kind {
	if kind, ok := kinds[t]; ok {
		return kind
	}
	return KindInput
}

// IsContainer reports whether nodes of type t can hold children.
func (t FieldType) IsContainer() bool {
	kind := t.Kind()
	return kind == KindContainer || kind == KindMultiBranch
}

// BranchKey returns the persisted key of the collection holding children for
// t, or an empty string for leaves.
func (t FieldType) BranchKey() string {
	switch t.Kind() {
	case KindContainer:
		return BranchChildren
	case KindMultiBranch:
		return branchKeys[t]
	}
	return ""
}

// Known reports whether t is one of the built-in types.
func (t FieldType) Known() bool {
	if _, ok := kinds[t]; ok {
		return true
	}
	_, ok := attributeKeys[t]
	return ok
}
