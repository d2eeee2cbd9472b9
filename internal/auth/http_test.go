// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/courtside/internal/auth"
	"github.com/taibuivan/courtside/internal/identity"
	"github.com/taibuivan/courtside/internal/platform/sec"
	"github.com/taibuivan/courtside/internal/session"
)

type env struct {
	slot    *session.MemorySlot
	manager *session.Manager
	router  chi.Router
	logins  []map[string]string
}

// newEnv wires the auth handler against an identity fake answering every
// login with token.
func newEnv(t *testing.T, status int, token string) *env {
	t.Helper()
	e := &env{slot: session.NewMemorySlot()}

	identityServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		e.logins = append(e.logins, body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"status":"error","message":"Credenciales inválidas"}`)
			return
		}
		payload, _ := json.Marshal(map[string]any{
			"status": "success",
			"data":   map[string]any{"token": token, "email": body["email"]},
		})
		_, _ = w.Write(payload)
	}))
	t.Cleanup(identityServer.Close)

	client := identity.New(identity.Config{BaseURL: identityServer.URL, Timeout: time.Second})
	e.manager = session.NewManager(e.slot, session.ManagerConfig{CookieName: "sid", TTL: time.Hour}, nil)

	router := chi.NewRouter()
	router.Use(e.manager.Bind)
	router.Route("/api/v1/auth", auth.NewHandler(auth.NewService(client), e.manager).RegisterRoutes)
	e.router = router
	return e
}

func (e *env) post(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, request)
	return recorder
}

func (e *env) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, request)
	return recorder
}

func lastCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "sid" {
			found = cookie
		}
	}
	require.NotNil(t, found, "no session cookie")
	return found
}

func statementToken(t *testing.T, statement string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "coach1",
		"stament": statement,
	}).SignedString([]byte("identity-key"))
	require.NoError(t, err)
	return token
}

/*
TestLogin_StatementTokenYieldsCoach logs in against an identity fake that
returns a self-describing token carrying only a statement claim.
*/
func TestLogin_StatementTokenYieldsCoach(t *testing.T) {
	e := newEnv(t, http.StatusOK, statementToken(t, "DOCENTES"))

	recorder := e.post("/api/v1/auth/login", `{"username":"coach1","password":"x"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data auth.SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.True(t, body.Data.IsAuthenticated)
	assert.Equal(t, "COACH", body.Data.Role)

	// Identity received the username as email.
	require.Len(t, e.logins, 1)
	assert.Equal(t, map[string]string{"email": "coach1", "password": "x"}, e.logins[0])

	// The persisted store under the rotated cookie agrees.
	cookie := lastCookie(t, recorder)
	store := e.manager.Open(context.Background(), cookie.Value)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, sec.RoleCoach, store.Role())

	// And the session endpoint reports it.
	recorder = e.get("/api/v1/auth/session", cookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "COACH", body.Data.Role)
}

/*
TestViewOf_OmitsCredential checks that a stored profile still carrying the
credential is rendered without it.
*/
func TestViewOf_OmitsCredential(t *testing.T) {
	view := auth.ViewOf(session.State{
		IsAuthenticated: true,
		Role:            sec.RoleAdmin,
		User:            map[string]any{"token": "secret", "email": "a@b.c"},
	})

	assert.Equal(t, map[string]any{"email": "a@b.c"}, view.User)
	assert.Empty(t, auth.ViewOf(session.State{}).User)
}

func TestLogin_RotatesSessionID(t *testing.T) {
	e := newEnv(t, http.StatusOK, "opaque-token")

	first := e.get("/api/v1/auth/session")
	before := lastCookie(t, first)

	recorder := e.post("/api/v1/auth/login", `{"username":"a@b.c","password":"x"}`, before)
	require.Equal(t, http.StatusOK, recorder.Code)
	after := lastCookie(t, recorder)

	assert.NotEqual(t, before.Value, after.Value)
	assert.Equal(t, sec.RoleGuest, e.manager.Open(context.Background(), after.Value).Role())

	// The opaque credential is kept out of the profile the session exposes.
	recorder = e.get("/api/v1/auth/session", after)
	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Data auth.SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "a@b.c", body.Data.User["email"])
	assert.NotContains(t, body.Data.User, "token")
	assert.NotContains(t, recorder.Body.String(), "opaque-token")
}

func TestLogin_Rejected(t *testing.T) {
	e := newEnv(t, http.StatusUnauthorized, "")

	recorder := e.post("/api/v1/auth/login", `{"username":"coach1","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "UNAUTHORIZED")
}

func TestLogin_UnusableToken(t *testing.T) {
	e := newEnv(t, http.StatusOK, "aaa.bbb.ccc")

	recorder := e.post("/api/v1/auth/login", `{"username":"coach1","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestLogin_Validation(t *testing.T) {
	e := newEnv(t, http.StatusOK, "opaque")

	assert.Equal(t, http.StatusBadRequest, e.post("/api/v1/auth/login", `{"username":"","password":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.post("/api/v1/auth/login", ``).Code)
	assert.Empty(t, e.logins)
}

func TestLogout(t *testing.T) {
	e := newEnv(t, http.StatusOK, "opaque")

	login := e.post("/api/v1/auth/login", `{"username":"a@b.c","password":"x"}`)
	cookie := lastCookie(t, login)

	recorder := e.post("/api/v1/auth/logout", ``, cookie)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, -1, lastCookie(t, recorder).MaxAge)

	store := e.manager.Open(context.Background(), cookie.Value)
	assert.False(t, store.IsAuthenticated())
}
