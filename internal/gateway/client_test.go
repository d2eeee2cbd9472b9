// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/courtside/internal/gateway"
	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/session"
)

func newPrimary(t *testing.T, handler http.HandlerFunc) *gateway.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return gateway.New(gateway.Config{
		Service:       "primary",
		BaseURL:       server.URL + "/api/basketball/",
		Timeout:       time.Second,
		AuthScheme:    "Bearer",
		SendRole:      true,
		TrailingSlash: true,
	})
}

func loggedIn(t *testing.T, role string) *session.Store {
	t.Helper()
	ctx := context.Background()
	store := session.Open(ctx, session.NewMemorySlot(), "auth-storage:gw")
	require.NoError(t, store.SetCredential(ctx, "tok-123", map[string]any{"role": role}))
	return store
}

/*
TestCaller_AttachesCredentials verifies headers, trailing slash and body encoding.
*/
func TestCaller_AttachesCredentials(t *testing.T) {
	var captured *http.Request
	var body map[string]any

	client := newPrimary(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 7}`))
	})

	ctx := ctxutil.WithRequestID(context.Background(), "rid-1")
	var out struct {
		ID int `json:"id"`
	}
	err := client.Bind(loggedIn(t, "COACH")).Post(ctx, "atletas", map[string]any{"nombre": "Ana"}, &out)
	require.NoError(t, err)

	assert.Equal(t, 7, out.ID)
	assert.Equal(t, "/api/basketball/atletas/", captured.URL.Path)
	assert.Equal(t, "Bearer tok-123", captured.Header.Get("Authorization"))
	assert.Equal(t, "COACH", captured.Header.Get("X-Role"))
	assert.Equal(t, "rid-1", captured.Header.Get("X-Request-ID"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.Equal(t, "Ana", body["nombre"])
}

func TestCaller_Unauthenticated(t *testing.T) {
	var captured *http.Request
	client := newPrimary(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusNoContent)
	})

	query := url.Values{"carrera": {"Medicina"}}
	require.NoError(t, client.Bind(nil).Get(context.Background(), "/estudiantes-vinculacion", query, nil))

	assert.Empty(t, captured.Header.Get("Authorization"))
	assert.Empty(t, captured.Header.Get("X-Role"))
	assert.Equal(t, "Medicina", captured.URL.Query().Get("carrera"))
	assert.Equal(t, "/api/basketball/estudiantes-vinculacion/", captured.URL.Path)
}

/*
TestCaller_401ClearsSession checks the session is cleared on an upstream 401.
*/
func TestCaller_401ClearsSession(t *testing.T) {
	client := newPrimary(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	store := loggedIn(t, "ADMIN")
	err := client.Bind(store).Get(context.Background(), "grupos-atletas", nil, nil)

	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Token())
}

/*
TestCaller_Classification maps upstream statuses onto error codes.
*/
func TestCaller_Classification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{"forbidden", 403, `{"detail":"No tiene permiso"}`, apperr.CodeForbidden, "No tiene permiso"},
		{"not_found", 404, `{"detail":"No encontrado."}`, apperr.CodeNotFound, "No encontrado."},
		{"not_found_html", 404, `<html></html>`, apperr.CodeNotFound, "Resource not found"},
		{"validation", 400, `{"cedula":["Ya existe"],"nombre":["Requerido"]}`, apperr.CodeValidation, "cedula: Ya existe, nombre: Requerido"},
		{"conflict", 409, `{"message":"Duplicado"}`, apperr.CodeConflict, "Duplicado"},
		{"server_error", 500, `{"error":"boom"}`, apperr.CodeUpstream, "boom"},
		{"bad_gateway_empty", 502, ``, apperr.CodeUpstream, "The upstream service reported an error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newPrimary(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			store := loggedIn(t, "ADMIN")
			err := client.Bind(store).Get(context.Background(), "atletas/1", nil, nil)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
			assert.Equal(t, tt.message, ae.Message)
			assert.True(t, store.IsAuthenticated(), "only 401 clears the session")

			statusErr, ok := gateway.AsStatusError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, statusErr.Status)
		})
	}
}

func TestCaller_ValidationDetails(t *testing.T) {
	client := newPrimary(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"semestre":["Debe ser positivo"]}`))
	})

	err := client.Bind(nil).Post(context.Background(), "estudiantes-vinculacion", map[string]any{}, nil)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, apperr.FieldError{Field: "semestre", Message: "Debe ser positivo"}, ae.Details[0])
}

/*
TestCaller_TransportFailure covers an upstream that never answers.
*/
func TestCaller_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	address := server.URL
	server.Close()

	client := gateway.New(gateway.Config{Service: "primary", BaseURL: address, Timeout: time.Second})
	err := client.Bind(nil).Get(context.Background(), "atletas", nil, nil)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeTransportFailure, ae.Code)
	assert.Equal(t, "Could not reach server", ae.Message)
}

func TestCaller_UnreadableBody(t *testing.T) {
	client := newPrimary(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	var out map[string]any
	err := client.Bind(nil).Get(context.Background(), "atletas", nil, &out)
	assert.True(t, apperr.HasCode(err, apperr.CodeUpstream))
}

func TestCaller_RawAuthScheme(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		assert.Equal(t, "/api/person/all", r.URL.Path)
	}))
	t.Cleanup(server.Close)

	client := gateway.New(gateway.Config{Service: "identity", BaseURL: server.URL})
	require.NoError(t, client.Bind(loggedIn(t, "ADMIN")).Get(context.Background(), "/api/person/all", nil, nil))
	assert.Equal(t, "tok-123", header)
}
