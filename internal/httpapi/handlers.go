package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/contract"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/suggest"
)

type listResponse[T any] struct {
	Data []T `json:"data"`
}

type validationResponse struct {
	Valid  bool             `json:"valid"`
	Issues []contract.Issue `json:"issues,omitempty"`
}

type suggestRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode,omitempty"`
}

type suggestResponse struct {
	Added   []string           `json:"added"`
	Dropped []schema.FieldType `json:"dropped,omitempty"`
	Schema  *schema.FormSchema `json:"schema"`
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (a *api) fieldCatalog(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, listResponse[any]{Data: toAny(a.opts.Catalog.Fields())})
}

func (a *api) blockCatalog(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, listResponse[any]{Data: toAny(a.opts.Catalog.Blocks())})
}

func toAny[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func (a *api) documentSchema(w http.ResponseWriter, r *http.Request) {
	data, err := schema.DocumentJSONSchema()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(data)
}

func (a *api) listForms(w http.ResponseWriter, r *http.Request) {
	forms, err := a.store.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	render.JSON(w, r, listResponse[any]{Data: toAny(forms)})
}

func (a *api) createForm(w http.ResponseWriter, r *http.Request) {
	doc, err := a.readDocument(w, r, true)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	form, err := a.store.Create(r.Context(), doc)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, form)
}

func (a *api) getForm(w http.ResponseWriter, r *http.Request) {
	form, err := a.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	render.JSON(w, r, form)
}

func (a *api) saveForm(w http.ResponseWriter, r *http.Request) {
	doc, err := a.readDocument(w, r, false)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	form, err := a.store.Save(r.Context(), chi.URLParam(r, "id"), doc)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	render.JSON(w, r, form)
}

func (a *api) deleteForm(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) publishForm(w http.ResponseWriter, r *http.Request) {
	v, err := a.store.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}

func (a *api) listVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := a.store.Versions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	render.JSON(w, r, listResponse[any]{Data: toAny(versions)})
}

func (a *api) getVersion(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || number < 1 {
		a.fail(w, r, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid version %q", chi.URLParam(r, "version"))})
		return
	}
	v, err := a.store.LoadVersion(r.Context(), chi.URLParam(r, "id"), number)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	render.JSON(w, r, v)
}

func (a *api) previewForm(w http.ResponseWriter, r *http.Request) {
	doc, err := a.loadSchema(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	html, err := a.opts.Preview.Render(r.Context(), doc)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	render.HTML(w, r, string(html))
}

func (a *api) contractDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := a.loadSchema(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	path := "/forms/" + id + "/submissions"
	render.JSON(w, r, contract.Document(doc, path, a.contractOptions()...))
}

func (a *api) validateSubmission(w http.ResponseWriter, r *http.Request) {
	doc, err := a.loadSchema(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var payload map[string]any
	if err := a.decode(w, r, &payload); err != nil {
		a.fail(w, r, err)
		return
	}
	issues, err := contract.Validate(r.Context(), doc, payload, a.contractOptions()...)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if len(issues) > 0 {
		render.Status(r, http.StatusUnprocessableEntity)
	}
	render.JSON(w, r, validationResponse{Valid: len(issues) == 0, Issues: issues})
}

func (a *api) suggestFields(w http.ResponseWriter, r *http.Request) {
	if a.opts.Suggester == nil {
		a.fail(w, r, StatusError{Code: http.StatusNotImplemented, Err: errors.New("no suggester configured")})
		return
	}
	id := chi.URLParam(r, "id")
	var req suggestRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	mode := suggest.ModeAppend
	switch req.Mode {
	case "", "append":
	case "replace":
		mode = suggest.ModeReplace
	default:
		a.fail(w, r, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("unknown mode %q", req.Mode)})
		return
	}

	doc, err := a.loadSchema(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	engine, err := builder.NewWithSchema(doc, builder.WithLogger(a.logger))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	result, err := suggest.Apply(r.Context(), engine, a.opts.Suggester, req.Prompt, mode,
		suggest.WithCatalog(a.opts.Catalog), suggest.WithLogger(a.logger))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if _, err := a.store.Save(r.Context(), id, engine.Schema()); err != nil {
		a.fail(w, r, err)
		return
	}
	render.JSON(w, r, suggestResponse{Added: result.Added, Dropped: result.Dropped, Schema: engine.Schema()})
}

func (a *api) contractOptions() []contract.Option {
	return []contract.Option{contract.WithStrict(a.opts.Strict), contract.WithLogger(a.logger)}
}

func (a *api) loadSchema(r *http.Request) (*schema.FormSchema, error) {
	form, err := a.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	return form.Schema, nil
}

func (a *api) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, StatusError{Code: http.StatusRequestEntityTooLarge, Err: err}
		}
		return nil, StatusError{Code: http.StatusBadRequest, Err: err}
	}
	return data, nil
}

// readDocument decodes a schema document body. An empty body is allowed on
// create and yields an empty form.
func (a *api) readDocument(w http.ResponseWriter, r *http.Request, allowEmpty bool) (*schema.FormSchema, error) {
	data, err := a.readBody(w, r)
	if err != nil {
		return nil, err
	}
	if allowEmpty && len(bytes.TrimSpace(data)) == 0 {
		return schema.New(), nil
	}
	return schema.Decode(data)
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := a.readBody(w, r)
	if err != nil {
		return err
	}
	if err := render.DecodeJSON(bytes.NewReader(data), v); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
