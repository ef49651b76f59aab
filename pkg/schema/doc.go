// Package schema defines the form document edited by the builder: a versioned
// FormSchema envelope around an ordered tree of Nodes. Leaf nodes capture one
// input (text, email, select, rating, ...) or render static content; layout
// containers hold children, and multi-branch containers (tabs, accordion,
// stepper) hold one children collection per section. Attribute keys are the
// persisted JSON keys and stay stable so saved documents keep loading.
//
// Editable attributes are a closed set per type (AttributeKeys); ApplyPatch
// enforces it so property edits can be checked against the node's type.
package schema
