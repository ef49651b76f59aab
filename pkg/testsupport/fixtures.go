package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// LoadSchema reads a FormSchema fixture, failing the test on error.
func LoadSchema(t *testing.T, path string) *schema.FormSchema {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	doc, err := schema.Decode(data)
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	return doc
}

// ContactSchema returns a small document covering a leaf at the root, a grid
// container and a multi-branch stepper. Every call returns a fresh copy.
func ContactSchema() *schema.FormSchema {
	maxRating := 5.0
	doc := schema.New()
	doc.Metadata = &schema.Metadata{Title: "Contact"}
	doc.Settings = schema.Settings{SubmitLabel: "Send"}
	doc.Fields = []*schema.Node{
		{ID: "name", Type: schema.TypeText, Name: "name", Label: "Name", Required: true},
		{ID: "grid", Type: schema.TypeGrid, Columns: 2, Children: []*schema.Node{
			{ID: "email", Type: schema.TypeEmail, Name: "email", Label: "Email", Required: true},
			{ID: "phone", Type: schema.TypePhone, Name: "phone", Label: "Phone"},
		}},
		{ID: "wizard", Type: schema.TypeStepper, Steps: []*schema.Section{
			{ID: "step-1", Title: "Feedback", Children: []*schema.Node{
				{ID: "rating", Type: schema.TypeRating, Name: "rating", Label: "Rating", Max: &maxRating},
			}},
			{ID: "step-2", Title: "Done", Children: []*schema.Node{
				{ID: "thanks", Type: schema.TypeParagraph, Content: "<p>Thanks!</p>"},
			}},
		}},
	}
	return doc
}

// NewEngine returns a builder engine with deterministic ids (prefix-1,
// prefix-2, ...) editing a copy of doc, or an empty schema when doc is nil.
func NewEngine(t *testing.T, prefix string, doc *schema.FormSchema, opts ...builder.Option) *builder.Engine {
	t.Helper()

	opts = append([]builder.Option{builder.WithIDGenerator(ids.NewSequence(prefix))}, opts...)
	if doc == nil {
		return builder.New(opts...)
	}
	engine, err := builder.NewWithSchema(doc, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
