// Package template defines the renderer-agnostic template interface used by
// the form preview. The pongo2-backed implementation lives in gotemplate.
package template
