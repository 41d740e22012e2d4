package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookreviews/handlers"
	"bookreviews/store"

	"github.com/stretchr/testify/require"
)

const testSecret = "handlers-test-secret"

type env struct {
	t  *testing.T
	db *store.Memory
	h  http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := store.NewMemory()
	return &env{
		t:  t,
		db: db,
		h:  handlers.Routes(db, testSecret, "http://localhost:5173", nil),
	}
}

// do performs a request against the router. Auth uses the Bearer
// fallback so tests don't need to juggle Secure cookies over plain
// HTTP.
func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// register creates a user through the API and returns their token and
// user payload.
func (e *env) register(name, email, password string) (string, handlers.UserPayload) {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, "register: %s", rec.Body.String())
	resp := decodeJSON[handlers.AuthResponse](e.t, rec)
	require.NotEmpty(e.t, resp.Token)
	return resp.Token, resp.User
}

// createBook adds a book through the API and returns its decoded body.
func (e *env) createBook(token, title, author, genre string, year int) map[string]any {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/books", token, map[string]any{
		"title":       title,
		"author":      author,
		"description": "about " + title,
		"genre":       genre,
		"year":        year,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, "create book: %s", rec.Body.String())
	return decodeJSON[map[string]any](e.t, rec)
}
