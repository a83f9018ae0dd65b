package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/c-playground/internal/handler"
	"github.com/sakif/c-playground/internal/model"
	"github.com/sakif/c-playground/internal/repository/sqlite"
	"github.com/sakif/c-playground/internal/service"
)

// newSnippetRouter wires the snippet routes against a throwaway
// in-memory database, exercising the full handler → service → sqlite
// path.
func newSnippetRouter(t *testing.T) chi.Router {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	snippets := service.NewSnippetService(db, testLogger())
	h := handler.NewSnippetHandler(snippets, testLogger())

	r := chi.NewRouter()
	r.Get("/api/snippets", h.HandleList)
	r.Post("/api/snippets", h.HandleCreate)
	r.Get("/api/snippets/{id}", h.HandleGet)
	r.Put("/api/snippets/{id}", h.HandleUpdate)
	r.Delete("/api/snippets/{id}", h.HandleDelete)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestSnippetCRUD(t *testing.T) {
	router := newSnippetRouter(t)

	// Create
	rr := doJSON(t, router, http.MethodPost, "/api/snippets",
		`{"name":"echo","source":"int main(void){}","stdin":"42\n"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created model.Snippet
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "echo", created.Name)

	// Get
	rr = doJSON(t, router, http.MethodGet, "/api/snippets/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var fetched model.Snippet
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&fetched))
	assert.Equal(t, created.Source, fetched.Source)
	assert.Equal(t, "42\n", fetched.Stdin)

	// Update
	rr = doJSON(t, router, http.MethodPut, "/api/snippets/"+created.ID,
		`{"name":"echo2","source":"int main(void){return 1;}"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	// List
	rr = doJSON(t, router, http.MethodGet, "/api/snippets", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var listed []model.Snippet
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "echo2", listed[0].Name)

	// Delete
	rr = doJSON(t, router, http.MethodDelete, "/api/snippets/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/snippets/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSnippetValidationErrors(t *testing.T) {
	router := newSnippetRouter(t)

	t.Run("missing name", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/snippets", `{"source":"int main(void){}"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var res handler.ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "validation_error", res.Error)
		assert.Equal(t, "name", res.Field)
	})

	t.Run("unknown snippet", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/snippets/doesnotexist", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/snippets", `{`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSnippetListUnauthenticatedMine(t *testing.T) {
	router := newSnippetRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/snippets?mine=true", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
