package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbuilder/internal/httpapi"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/suggest"
)

const contactDoc = `{
  "version": "1.0",
  "fields": [
    {"id": "a", "type": "email", "name": "email", "label": "Email", "required": true},
    {"id": "b", "type": "number", "name": "age", "label": "Age", "min": 18}
  ],
  "settings": {"submitLabel": "Send"},
  "theme": {},
  "metadata": {"title": "Contact"}
}`

func newServer(t *testing.T, fns ...httpapi.OptionFn) *httptest.Server {
	t.Helper()
	seq := 0
	st := store.NewMemory(store.WithIDFunc(func() string {
		seq++
		return fmt.Sprintf("form-%d", seq)
	}))
	handler, err := httpapi.New(st, fns...)
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(data)
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestHealthAndCatalog(t *testing.T) {
	srv := newServer(t)

	status, body := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	status, body = do(t, srv, http.MethodGet, "/catalog", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"type":"text"`)

	status, body = do(t, srv, http.MethodGet, "/catalog/blocks", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"data"`)

	status, body = do(t, srv, http.MethodGet, "/schema.json", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "fields")
}

func TestFormLifecycle(t *testing.T) {
	srv := newServer(t)

	status, body := do(t, srv, http.MethodPost, "/forms", "")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "form-1", decode(t, body)["id"])

	status, _ = do(t, srv, http.MethodPut, "/forms/form-1", contactDoc)
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, srv, http.MethodGet, "/forms/form-1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Contact", decode(t, body)["title"])

	status, body = do(t, srv, http.MethodGet, "/forms", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode(t, body)["data"], 1)

	status, body = do(t, srv, http.MethodPost, "/forms/form-1/publish", "")
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 1, decode(t, body)["number"])

	status, body = do(t, srv, http.MethodGet, "/forms/form-1/versions", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode(t, body)["data"], 1)

	status, body = do(t, srv, http.MethodGet, "/forms/form-1/versions/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"email"`)

	status, _ = do(t, srv, http.MethodGet, "/forms/form-1/versions/2", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, srv, http.MethodGet, "/forms/form-1/versions/latest", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, http.MethodDelete, "/forms/form-1", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, body = do(t, srv, http.MethodGet, "/forms/form-1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode(t, body)["code"])
}

func TestInvalidDocumentIsUnprocessable(t *testing.T) {
	srv := newServer(t)

	duplicate := `{"version":"1.0","fields":[{"id":"x","type":"text"},{"id":"x","type":"email"}]}`
	status, body := do(t, srv, http.MethodPost, "/forms", duplicate)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_DOCUMENT", decode(t, body)["code"])

	status, _ = do(t, srv, http.MethodPost, "/forms", `{"version":"9.9","fields":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, srv, http.MethodPut, "/forms/missing", contactDoc)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPreviewAndContract(t *testing.T) {
	srv := newServer(t)
	status, _ := do(t, srv, http.MethodPost, "/forms", contactDoc)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, srv, http.MethodGet, "/forms/form-1/preview", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "fb-preview")
	assert.Contains(t, body, "Send")

	status, body = do(t, srv, http.MethodGet, "/forms/form-1/contract", "")
	require.Equal(t, http.StatusOK, status)
	doc := decode(t, body)
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, doc["paths"], "/forms/form-1/submissions")
}

func TestValidateSubmission(t *testing.T) {
	srv := newServer(t)
	status, _ := do(t, srv, http.MethodPost, "/forms", contactDoc)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, srv, http.MethodPost, "/forms/form-1/submissions/validate", `{"email":"ada@example.com","age":36}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decode(t, body)["valid"])

	status, body = do(t, srv, http.MethodPost, "/forms/form-1/submissions/validate", `{"age":3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	out := decode(t, body)
	assert.Equal(t, false, out["valid"])
	assert.NotEmpty(t, out["issues"])

	status, _ = do(t, srv, http.MethodPost, "/forms/form-1/submissions/validate", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSuggest(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv := newServer(t)
		do(t, srv, http.MethodPost, "/forms", "")
		status, body := do(t, srv, http.MethodPost, "/forms/form-1/suggest", `{"prompt":"add email"}`)
		assert.Equal(t, http.StatusNotImplemented, status)
		assert.Equal(t, "NOT_IMPLEMENTED", decode(t, body)["code"])
	})

	t.Run("appends and saves", func(t *testing.T) {
		var asked suggest.Request
		gen := suggest.SuggesterFunc(func(_ context.Context, req suggest.Request) (string, error) {
			asked = req
			return "```json\n[{\"type\":\"phone\",\"label\":\"Phone\"},{\"type\":\"hologram\"}]\n```", nil
		})
		srv := newServer(t, httpapi.WithSuggester(gen))
		do(t, srv, http.MethodPost, "/forms", contactDoc)

		status, body := do(t, srv, http.MethodPost, "/forms/form-1/suggest", `{"prompt":"add phone"}`)
		require.Equal(t, http.StatusOK, status)
		out := decode(t, body)
		assert.Len(t, out["added"], 1)
		assert.Equal(t, []any{"hologram"}, out["dropped"])
		assert.Equal(t, "add phone", asked.Prompt)
		assert.Len(t, asked.Context, 2)

		_, body = do(t, srv, http.MethodGet, "/forms/form-1", "")
		assert.Contains(t, body, `"phone"`)
	})

	t.Run("bad mode", func(t *testing.T) {
		gen := suggest.SuggesterFunc(func(context.Context, suggest.Request) (string, error) { return "[]", nil })
		srv := newServer(t, httpapi.WithSuggester(gen))
		do(t, srv, http.MethodPost, "/forms", "")
		status, _ := do(t, srv, http.MethodPost, "/forms/form-1/suggest", `{"prompt":"x","mode":"merge"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestGuardAndBasePath(t *testing.T) {
	guard := func(r *http.Request) error {
		if r.Header.Get("X-Actor") == "" {
			return errors.New("missing actor")
		}
		return nil
	}
	srv := newServer(t, httpapi.WithBasePath("api/"), httpapi.WithGuard(guard))

	status, _ := do(t, srv, http.MethodGet, "/api/healthz", "")
	assert.Equal(t, http.StatusOK, status)

	status, body := do(t, srv, http.MethodGet, "/api/forms", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", decode(t, body)["code"])
}

func TestBodyLimit(t *testing.T) {
	srv := newServer(t, httpapi.WithMaxBodyBytes(16))
	status, _ := do(t, srv, http.MethodPost, "/forms", contactDoc)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
}

func TestMountPath(t *testing.T) {
	assert.Equal(t, "/", httpapi.MountPath(""))
	assert.Equal(t, "/admin", httpapi.MountPath("admin/"))
	assert.Equal(t, "/admin/api", httpapi.MountPath(" /admin/api "))
}
