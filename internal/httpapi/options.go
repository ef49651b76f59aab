package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/suggest"
)

// GuardFunc authorises a request to the form routes. Returning an error that
// implements HTTPError picks the status code; any other error answers 403.
type GuardFunc func(r *http.Request) error

// Options configures the API handler.
type Options struct {
	BasePath     string
	MaxBodyBytes int64
	Strict       bool
	Guard        GuardFunc
	Catalog      *catalog.Catalog
	Preview      *preview.Renderer
	Suggester    suggest.Suggester
	Logger       *slog.Logger
}

// OptionFn mutates Options.
type OptionFn func(*Options)

// DefaultOptions returns the baseline configuration.
func DefaultOptions() Options {
	return Options{
		BasePath:     "/",
		MaxBodyBytes: 1 << 20,
	}
}

// NewOptions applies fns over the defaults and fills anything left empty.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.BasePath == "" {
		opts.BasePath = "/"
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return opts
}

// WithBasePath mounts every route under path.
func WithBasePath(path string) OptionFn {
	return func(o *Options) { o.BasePath = path }
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) { o.MaxBodyBytes = n }
}

// WithStrict rejects submission keys that match no form field.
func WithStrict(strict bool) OptionFn {
	return func(o *Options) { o.Strict = strict }
}

// WithGuard protects the form routes.
func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

// WithCatalog serves and builds against cat instead of the embedded palette.
func WithCatalog(cat *catalog.Catalog) OptionFn {
	return func(o *Options) { o.Catalog = cat }
}

// WithPreview renders previews through r.
func WithPreview(r *preview.Renderer) OptionFn {
	return func(o *Options) { o.Preview = r }
}

// WithSuggester enables POST /forms/{id}/suggest.
func WithSuggester(s suggest.Suggester) OptionFn {
	return func(o *Options) { o.Suggester = s }
}

// WithLogger routes request and error logs to logger.
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) { o.Logger = logger }
}
