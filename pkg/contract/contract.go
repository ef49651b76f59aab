// Package contract derives the submission contract of a form: an OpenAPI 3
// object schema describing the payload a filled-in form produces, and
// validation of submitted payloads against it.
package contract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Issue is one problem found in a submission.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Option customises schema derivation.
type Option func(*builder)

type builder struct {
	strict bool
	logger *slog.Logger
}

// WithStrict rejects payload keys that do not correspond to a form field.
func WithStrict(strict bool) Option {
	return func(b *builder) { b.strict = strict }
}

// WithLogger routes diagnostics (such as colliding field names) to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func newBuilder(opts []Option) builder {
	b := builder{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&b)
		}
	}
	return b
}

// FieldKey is the payload key of an input node: its name, or its id when the
// name is empty.
func FieldKey(n *schema.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Schema returns the object schema of submissions to s. Input leaves become
// properties wherever they sit in the tree; static content is skipped. When
// two fields share a key the first one in document order wins.
func Schema(s *schema.FormSchema, opts ...Option) *openapi3.Schema {
	b := newBuilder(opts)
	out := openapi3.NewObjectSchema()
	if s == nil {
		return out
	}
	if s.Metadata != nil && s.Metadata.Title != "" {
		out.Title = s.Metadata.Title
	}
	s.Walk(func(n *schema.Node, _ int) bool {
		if n.Type.Kind() != schema.KindInput {
			return true
		}
		key := FieldKey(n)
		if _, taken := out.Properties[key]; taken {
			b.logger.Warn("contract: duplicate field key", "key", key, "id", n.ID)
			return true
		}
		out.WithProperty(key, property(n))
		if n.Required {
			out.Required = append(out.Required, key)
		}
		return true
	})
	if b.strict {
		out.WithoutAdditionalProperties()
	}
	return out
}

func property(n *schema.Node) *openapi3.Schema {
	var p *openapi3.Schema
	switch n.Type {
	case schema.TypeNumber, schema.TypeSlider, schema.TypeRating:
		p = openapi3.NewFloat64Schema()
		if n.Min != nil {
			p.WithMin(*n.Min)
		} else if n.Type == schema.TypeRating {
			p.WithMin(0)
		}
		if n.Max != nil {
			p.WithMax(*n.Max)
		}
	case schema.TypeSwitch:
		p = openapi3.NewBoolSchema()
	case schema.TypeCheckbox:
		if len(n.Options) == 0 {
			p = openapi3.NewBoolSchema()
			break
		}
		p = openapi3.NewArraySchema().WithItems(choices(n.Options))
	case schema.TypeSelect:
		p = choices(n.Options)
		if n.Multiple {
			p = openapi3.NewArraySchema().WithItems(p)
		}
	case schema.TypeRadio:
		p = choices(n.Options)
	case schema.TypeEmail:
		p = openapi3.NewStringSchema().WithFormat("email")
	case schema.TypeURL:
		p = openapi3.NewStringSchema().WithFormat("uri")
	case schema.TypeDate:
		p = openapi3.NewStringSchema().WithFormat("date")
	case schema.TypeTime:
		p = openapi3.NewStringSchema().WithFormat("time")
	case schema.TypeFile:
		p = openapi3.NewStringSchema().WithFormat("binary")
		if n.Multiple {
			p = openapi3.NewArraySchema().WithItems(p)
		}
	case schema.TypeText, schema.TypeTextarea, schema.TypePassword, schema.TypePhone,
		schema.TypeHidden, schema.TypeSignature:
		p = openapi3.NewStringSchema()
	default:
		// Types added after this build accept any value.
		p = openapi3.NewSchema()
	}
	p.Title = n.Label
	p.Description = n.Description
	if n.DefaultValue != nil {
		p.Default = n.DefaultValue
	}
	return p
}

func choices(options []schema.Option) *openapi3.Schema {
	p := openapi3.NewStringSchema()
	if len(options) == 0 {
		return p
	}
	values := make([]any, 0, len(options))
	for _, opt := range options {
		values = append(values, opt.Value)
	}
	return p.WithEnum(values...)
}

// Document wraps the submission schema in an OpenAPI document describing a
// single POST endpoint at path.
func Document(s *schema.FormSchema, path string, opts ...Option) *openapi3.T {
	title := "Form submission"
	if s != nil && s.Metadata != nil && s.Metadata.Title != "" {
		title = s.Metadata.Title
	}
	version := schema.CurrentVersion
	if s != nil && s.Version != "" {
		version = s.Version
	}

	body := openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/Submission", nil))
	op := openapi3.NewOperation()
	op.OperationID = "submitForm"
	op.Summary = "Submit " + title
	op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(204, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Submission accepted")}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Submission rejected")}),
	)

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(openapi3.WithPath(path, &openapi3.PathItem{Post: op})),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{"Submission": Schema(s, opts...).NewRef()},
		},
	}
}

// Validate checks payload against the submission schema of s. A nil slice
// means the payload is acceptable. Payloads are expected in their decoded JSON
// form (numbers as float64).
func Validate(ctx context.Context, s *schema.FormSchema, payload map[string]any, opts ...Option) ([]Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = map[string]any{}
	}
	err := Schema(s, opts...).VisitJSON(payload, openapi3.MultiErrors())
	if err == nil {
		return nil, nil
	}
	issues := collect(err, nil)
	if len(issues) == 0 {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return issues, nil
}

func collect(err error, out []Issue) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, inner := range multi {
			out = collect(inner, out)
		}
		return out
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return append(out, Issue{Field: strings.Join(se.JSONPointer(), "."), Message: se.Reason})
	}
	return append(out, Issue{Message: err.Error()})
}
