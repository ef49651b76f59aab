// Package httpapi serves stored forms over HTTP: the palette, document CRUD
// with publishing, HTML previews, and the submission contract.
package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

type api struct {
	store  store.Store
	opts   Options
	logger *slog.Logger
}

// New builds the API router over st.
func New(st store.Store, fns ...OptionFn) (http.Handler, error) {
	if st == nil {
		return nil, fmt.Errorf("httpapi: missing store")
	}
	opts := NewOptions(fns...)
	if opts.Preview == nil {
		r, err := preview.New(preview.WithLogger(opts.Logger))
		if err != nil {
			return nil, fmt.Errorf("httpapi: preview: %w", err)
		}
		opts.Preview = r
	}
	a := &api{store: st, opts: opts, logger: opts.Logger}

	root := chi.NewRouter()
	root.Use(middleware.RequestID, middleware.Recoverer, a.logRequests)

	base := MountPath(opts.BasePath)
	if base == "/" {
		a.routes(root)
		return root, nil
	}
	root.Route(base, a.routes)
	return root, nil
}

// MountPath normalises a base path: leading slash, no trailing slash.
func MountPath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return "/"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/")
}

func (a *api) routes(r chi.Router) {
	r.Get("/healthz", a.health)
	r.Get("/catalog", a.fieldCatalog)
	r.Get("/catalog/blocks", a.blockCatalog)
	r.Get("/schema.json", a.documentSchema)

	r.Route("/forms", func(r chi.Router) {
		r.Use(a.guard)
		r.Get("/", a.listForms)
		r.Post("/", a.createForm)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.getForm)
			r.Put("/", a.saveForm)
			r.Delete("/", a.deleteForm)
			r.Post("/publish", a.publishForm)
			r.Get("/versions", a.listVersions)
			r.Get("/versions/{version}", a.getVersion)
			r.Get("/preview", a.previewForm)
			r.Get("/contract", a.contractDocument)
			r.Post("/submissions/validate", a.validateSubmission)
			r.Post("/suggest", a.suggestFields)
		})
	})
}

func (a *api) guard(next http.Handler) http.Handler {
	if a.opts.Guard == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.opts.Guard(r); err != nil {
			if statusOf(err) == http.StatusInternalServerError {
				err = StatusError{Code: http.StatusForbidden, Err: err}
			}
			a.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Info("httpapi: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
