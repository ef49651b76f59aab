// Package preview renders a FormSchema as a standalone HTML page, the way
// the builder's preview mode shows it. Templates are pongo2 files embedded in
// the package; rich text is sanitised and theme tokens become CSS custom
// properties.
package preview

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

//go:embed templates/*.tpl
var embedded embed.FS

// TemplatesFS exposes the built-in templates so callers can layer overrides
// on top of them.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(fmt.Sprintf("preview: templates fs: %v", err))
	}
	return sub
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithTemplateRenderer replaces the embedded pongo2 templates. The renderer
// must provide form, node, static, container and branches templates.
func WithTemplateRenderer(r template.Renderer) Option {
	return func(p *Renderer) {
		if r != nil {
			p.engine = r
		}
	}
}

// WithThemeSelector resolves FormSchema.Theme through selector. Without one
// only the form's own token overrides apply.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(p *Renderer) { p.selector = selector }
}

// WithDefaultTheme is used when the form does not name a theme.
func WithDefaultTheme(name, variant string) Option {
	return func(p *Renderer) {
		p.defaultTheme = strings.TrimSpace(name)
		p.defaultVariant = strings.TrimSpace(variant)
	}
}

// WithPolicy replaces the bluemonday policy used for descriptions and
// paragraph content.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(p *Renderer) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Renderer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Renderer turns schemas into HTML. It is safe for concurrent use once
// constructed.
type Renderer struct {
	engine         template.Renderer
	selector       theme.ThemeSelector
	defaultTheme   string
	defaultVariant string
	policy         *bluemonday.Policy
	logger         *slog.Logger
}

// New returns a Renderer backed by the embedded templates unless
// WithTemplateRenderer says otherwise.
func New(opts ...Option) (*Renderer, error) {
	p := &Renderer{
		policy: bluemonday.UGCPolicy(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("preview: template engine: %w", err)
		}
		p.engine = engine
	}
	return p, nil
}

// Render returns the HTML page for s.
func (p *Renderer) Render(ctx context.Context, s *schema.FormSchema) ([]byte, error) {
	var b strings.Builder
	if err := p.RenderTo(ctx, &b, s); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// RenderTo writes the HTML page for s to w.
func (p *Renderer) RenderTo(ctx context.Context, w io.Writer, s *schema.FormSchema) error {
	if s == nil {
		return fmt.Errorf("preview: render: %w", schema.ErrInvalidSchema)
	}
	body, err := p.nodes(ctx, s.Fields, s.Settings)
	if err != nil {
		return err
	}

	data := map[string]any{
		"body":     body,
		"submit":   firstNonEmpty(s.Settings.SubmitLabel, "Submit"),
		"success":  s.Settings.SuccessMessage,
		"redirect": s.Settings.RedirectURL,
		"layout":   s.Settings.Layout,
		"theme":    firstNonEmpty(s.Theme.Name, p.defaultTheme),
		"variant":  firstNonEmpty(s.Theme.Variant, p.defaultVariant),
		"css_vars": p.cssVars(s.Theme),
	}
	if s.Metadata != nil {
		data["title"] = s.Metadata.Title
		data["description"] = p.policy.Sanitize(s.Metadata.Description)
	}
	if _, err := p.engine.RenderTemplate("form", data, w); err != nil {
		return fmt.Errorf("preview: render form: %w", err)
	}
	return nil
}

func (p *Renderer) nodes(ctx context.Context, nodes []*schema.Node, settings schema.Settings) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if n == nil {
			continue
		}
		html, err := p.node(ctx, n, settings)
		if err != nil {
			return "", err
		}
		b.WriteString(html)
	}
	return b.String(), nil
}

func (p *Renderer) node(ctx context.Context, n *schema.Node, settings schema.Settings) (string, error) {
	data := map[string]any{
		"id":          n.ID,
		"type":        string(n.Type),
		"title":       n.Title,
		"description": p.policy.Sanitize(n.Description),
	}

	var name string
	switch n.Type.Kind() {
	case schema.KindStatic:
		name = "static"
		data["content"] = p.policy.Sanitize(n.Content)
		data["level"] = clampLevel(n.Level)
	case schema.KindContainer:
		name = "container"
		body, err := p.nodes(ctx, n.Children, settings)
		if err != nil {
			return "", err
		}
		data["body"] = body
		data["columns"] = n.Columns
		data["gap"] = n.Gap
		data["direction"] = n.Direction
	case schema.KindMultiBranch:
		name = "branches"
		sections := make([]any, 0, len(n.Sections()))
		for _, section := range n.Sections() {
			if section == nil {
				continue
			}
			body, err := p.nodes(ctx, section.Children, settings)
			if err != nil {
				return "", err
			}
			sections = append(sections, map[string]any{
				"id":          section.ID,
				"title":       section.Title,
				"description": section.Description,
				"body":        body,
			})
		}
		data["sections"] = sections
		data["progress"] = n.Type == schema.TypeStepper && settings.ShowProgress
	default:
		name = "node"
		inputData(n, data)
	}

	html, err := p.engine.RenderTemplate(name, data)
	if err != nil {
		return "", fmt.Errorf("preview: render %s %s: %w", n.Type, n.ID, err)
	}
	return html, nil
}

func inputData(n *schema.Node, data map[string]any) {
	data["name"] = firstNonEmpty(n.Name, n.ID)
	data["label"] = n.Label
	data["placeholder"] = n.Placeholder
	data["required"] = n.Required
	data["value"] = displayValue(n.DefaultValue)
	data["rows"] = n.Rows
	data["accept"] = n.Accept
	data["multiple"] = n.Multiple
	options := make([]any, 0, len(n.Options))
	for _, opt := range n.Options {
		options = append(options, map[string]any{"label": opt.Label, "value": opt.Value})
	}
	data["options"] = options
	if n.Min != nil {
		data["min"], data["has_min"] = formatNumber(*n.Min), true
	}
	if n.Max != nil {
		data["max"], data["has_max"] = formatNumber(*n.Max), true
	}
	if n.Step != nil {
		data["step"] = formatNumber(*n.Step)
	}
	if n.Type == schema.TypeRating {
		top := 5
		if n.Max != nil && *n.Max >= 1 {
			top = int(*n.Max)
		}
		stars := make([]any, 0, top)
		for i := 1; i <= top; i++ {
			stars = append(stars, i)
		}
		data["stars"] = stars
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// displayValue renders a default value for an HTML attribute. Booleans stay
// booleans so checkboxes can test them.
func displayValue(v any) any {
	switch value := v.(type) {
	case nil, bool, string:
		return value
	case float64:
		return formatNumber(value)
	}
	return fmt.Sprint(v)
}

type cssVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// cssVars merges manifest tokens, variant tokens and the form's own token
// overrides, in increasing precedence.
func (p *Renderer) cssVars(t schema.Theme) []cssVar {
	tokens := make(map[string]string)
	name := firstNonEmpty(t.Name, p.defaultTheme)
	variant := firstNonEmpty(t.Variant, p.defaultVariant)
	if p.selector != nil && name != "" {
		selection, err := p.selector.Select(name, variant)
		switch {
		case err != nil:
			p.logger.Warn("preview: theme selection failed", "theme", name, "variant", variant, "error", err)
		case selection != nil && selection.Manifest != nil:
			for k, v := range selection.Manifest.Tokens {
				tokens[k] = v
			}
			if v, ok := selection.Manifest.Variants[selection.Variant]; ok {
				for k, val := range v.Tokens {
					tokens[k] = val
				}
			}
		}
	}
	for k, v := range t.Tokens {
		tokens[k] = v
	}

	out := make([]cssVar, 0, len(tokens))
	for k, v := range tokens {
		name := gotemplate.CSSVarName(k)
		if name == "" {
			continue
		}
		out = append(out, cssVar{Name: name, Value: cssValue(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cssValue keeps a token value from closing the declaration or the style
// element it is written into.
func cssValue(v string) string {
	return strings.NewReplacer(";", "", "{", "", "}", "", "<", "", ">", "").Replace(strings.TrimSpace(v))
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 2
	case level > 6:
		return 6
	}
	return level
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
