// Package suggest merges AI-generated form fragments into a builder. The
// text generator itself is an external collaborator behind Suggester; this
// package only prepares its context, parses what it returns and feeds the
// result through the ordinary builder operations.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// ErrEmptyCandidate is returned when the generator produced no usable fields.
var ErrEmptyCandidate = errors.New("suggest: empty candidate")

// FieldSummary is the compact description of an existing node sent to the
// generator as context.
type FieldSummary struct {
	ID       string           `json:"id"`
	Type     schema.FieldType `json:"type"`
	Label    string           `json:"label,omitempty"`
	Required bool             `json:"required,omitempty"`
	Depth    int              `json:"depth,omitempty"`
}

// Request is one prompt to the generator.
type Request struct {
	Prompt  string         `json:"prompt"`
	Context []FieldSummary `json:"context,omitempty"`
}

// Suggester produces candidate text (JSON, possibly fenced) for a request.
type Suggester interface {
	Suggest(ctx context.Context, req Request) (string, error)
}

// SuggesterFunc adapts a function into a Suggester.
type SuggesterFunc func(ctx context.Context, req Request) (string, error)

// Suggest calls fn.
func (fn SuggesterFunc) Suggest(ctx context.Context, req Request) (string, error) {
	return fn(ctx, req)
}

// Mode selects how a candidate is merged.
type Mode int

const (
	// ModeAppend adds every candidate field at the end of the form.
	ModeAppend Mode = iota
	// ModeReplace swaps the whole document for the candidate.
	ModeReplace
)

// Candidate is a parsed generator answer: either a whole schema or a list of
// fields.
type Candidate struct {
	Schema *schema.FormSchema
	Fields []*schema.Node
}

// Result reports what Apply changed.
type Result struct {
	Added   []string
	Dropped []schema.FieldType
}

// Summarize lists every node of s in document order.
func Summarize(s *schema.FormSchema) []FieldSummary {
	var out []FieldSummary
	s.Walk(func(n *schema.Node, depth int) bool {
		out = append(out, FieldSummary{ID: n.ID, Type: n.Type, Label: summaryLabel(n), Required: n.Required, Depth: depth})
		return true
	})
	return out
}

func summaryLabel(n *schema.Node) string {
	switch {
	case n.Label != "":
		return n.Label
	case n.Title != "":
		return n.Title
	}
	return n.Content
}

// ParseCandidate accepts a full schema object, an object with a fields list,
// a bare array of fields or a single field, optionally wrapped in a markdown
// code fence.
func ParseCandidate(text string) (Candidate, error) {
	body := strings.TrimSpace(stripFence(text))
	if body == "" {
		return Candidate{}, ErrEmptyCandidate
	}

	if strings.HasPrefix(body, "[") {
		var fields []*schema.Node
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			return Candidate{}, fmt.Errorf("suggest: parse field list: %w", err)
		}
		return fieldsCandidate(fields)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &keys); err != nil {
		return Candidate{}, fmt.Errorf("suggest: parse candidate: %w", err)
	}
	if _, ok := keys["fields"]; ok {
		var doc schema.FormSchema
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return Candidate{}, fmt.Errorf("suggest: parse schema: %w", err)
		}
		if _, full := keys["version"]; full || keys["settings"] != nil {
			if doc.Version == "" {
				doc.Version = schema.CurrentVersion
			}
			return Candidate{Schema: &doc, Fields: compact(doc.Fields)}, nil
		}
		return fieldsCandidate(doc.Fields)
	}
	if _, ok := keys["type"]; ok {
		var node schema.Node
		if err := json.Unmarshal([]byte(body), &node); err != nil {
			return Candidate{}, fmt.Errorf("suggest: parse field: %w", err)
		}
		return fieldsCandidate([]*schema.Node{&node})
	}
	return Candidate{}, ErrEmptyCandidate
}

func fieldsCandidate(fields []*schema.Node) (Candidate, error) {
	fields = compact(fields)
	if len(fields) == 0 {
		return Candidate{}, ErrEmptyCandidate
	}
	return Candidate{Fields: fields}, nil
}

func compact(fields []*schema.Node) []*schema.Node {
	out := fields[:0:0]
	for _, f := range fields {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func stripFence(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return text
	}
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

// Option customises Apply.
type Option func(*applier)

type applier struct {
	catalog *catalog.Catalog
	ids     ids.Generator
	logger  *slog.Logger
}

// WithCatalog drops candidate nodes whose type the catalog does not offer.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(a *applier) { a.catalog = cat }
}

// WithIDGenerator sets the generator used to re-key candidate nodes.
func WithIDGenerator(gen ids.Generator) Option {
	return func(a *applier) {
		if gen != nil {
			a.ids = gen
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *applier) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Apply asks s for a candidate using the engine's current fields as context
// and merges it. Generator or parse failures leave the engine untouched.
func Apply(ctx context.Context, engine *builder.Engine, s Suggester, prompt string, mode Mode, opts ...Option) (Result, error) {
	a := applier{catalog: catalog.Default(), ids: ids.Default(), logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&a)
		}
	}
	if engine == nil || s == nil {
		return Result{}, errors.New("suggest: engine and suggester are required")
	}

	req := Request{Prompt: prompt, Context: Summarize(engine.Schema())}
	text, err := s.Suggest(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("suggest: generate: %w", err)
	}
	candidate, err := ParseCandidate(text)
	if err != nil {
		return Result{}, err
	}

	var result Result
	fields := a.filter(candidate.Fields, &result)
	if len(fields) == 0 {
		return result, ErrEmptyCandidate
	}
	for _, f := range fields {
		schema.RegenerateIDs(f, a.ids)
	}

	switch mode {
	case ModeReplace:
		doc := schema.New()
		if candidate.Schema != nil {
			doc = candidate.Schema.Clone()
		}
		doc.Fields = fields
		if err := engine.SetSchema(doc); err != nil {
			return Result{}, fmt.Errorf("suggest: replace: %w", err)
		}
		for _, f := range fields {
			result.Added = append(result.Added, f.ID)
		}
	default:
		staged := schema.New()
		staged.Fields = fields
		if err := schema.Validate(staged); err != nil {
			return Result{}, fmt.Errorf("suggest: candidate: %w", err)
		}
		for _, f := range fields {
			if id, ok := engine.AddField(f, builder.Root()); ok {
				result.Added = append(result.Added, id)
			}
		}
	}
	a.logger.Debug("suggest: applied", "added", len(result.Added), "dropped", len(result.Dropped))
	return result, nil
}

// filter removes null entries and nodes of types the catalog does not know,
// at any depth.
func (a applier) filter(nodes []*schema.Node, result *Result) []*schema.Node {
	out := make([]*schema.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if a.catalog != nil && !a.catalog.HasField(n.Type) {
			result.Dropped = append(result.Dropped, n.Type)
			continue
		}
		n.Children = a.filter(n.Children, result)
		dropNullSections(n)
		for _, section := range n.Sections() {
			section.Children = a.filter(section.Children, result)
		}
		out = append(out, n)
	}
	return out
}

func dropNullSections(n *schema.Node) {
	keep := func(sections []*schema.Section) []*schema.Section {
		out := sections[:0:0]
		for _, section := range sections {
			if section != nil {
				out = append(out, section)
			}
		}
		return out
	}
	switch n.Type.BranchKey() {
	case schema.BranchTabs:
		n.Tabs = keep(n.Tabs)
	case schema.BranchItems:
		n.Items = keep(n.Items)
	case schema.BranchSteps:
		n.Steps = keep(n.Steps)
	}
}
