package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/suggest"
)

// HTTPError is an error carrying the status code to answer with.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with a status code.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusOf maps domain errors onto HTTP statuses.
func statusOf(err error) int {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, schema.ErrInvalidSchema),
		errors.Is(err, schema.ErrUnsupportedVersion),
		errors.Is(err, suggest.ErrEmptyCandidate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func codeOf(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusUnprocessableEntity:
		return "INVALID_DOCUMENT"
	case http.StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	case http.StatusRequestEntityTooLarge:
		return "TOO_LARGE"
	}
	return "INTERNAL_ERROR"
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		a.logger.Error("httpapi: request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = http.StatusText(status)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: message, Code: codeOf(status)})
}
