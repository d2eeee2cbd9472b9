// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/session"
)

func newManager(slot session.Slot) *session.Manager {
	return session.NewManager(slot, session.ManagerConfig{CookieName: "sid", TTL: time.Hour}, nil)
}

func sessionCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "sid" {
			return cookie
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

/*
TestManager_Bind issues a cookie on first contact and restores the session on
later requests carrying it.
*/
func TestManager_Bind(t *testing.T) {
	slot := session.NewMemorySlot()
	manager := newManager(slot)

	var seen *session.Store
	handler := manager.Bind(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.FromContext(r.Context())
		if r.URL.Path == "/login" {
			require.NoError(t, seen.SetCredential(r.Context(), "opaque", map[string]any{"role": "ADMIN"}))
		}
	}))

	// 1. First contact
	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookie := sessionCookie(t, first)
	assert.True(t, cookie.HttpOnly)
	require.NotNil(t, seen)

	// 2. Returning browser
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(cookie)
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, request)

	assert.Empty(t, second.Result().Cookies())
	assert.True(t, seen.IsAuthenticated())
	assert.Equal(t, session.Key(cookie.Value), seen.Key())
}

func TestManager_Bind_RejectsForgedCookie(t *testing.T) {
	manager := newManager(session.NewMemorySlot())

	var sid string
	handler := manager.Bind(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		sid = ctxutil.GetSessionID(r.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc/passwd"})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.NotEqual(t, "../../etc/passwd", sid)
	assert.Equal(t, sid, sessionCookie(t, recorder).Value)
}

/*
TestManager_RotateAndDestroy checks that rotation discards the old record and
destroy removes the current one.
*/
func TestManager_RotateAndDestroy(t *testing.T) {
	ctx := context.Background()
	slot := session.NewMemorySlot()
	manager := newManager(slot)

	oldSID, err := session.NewSessionID()
	require.NoError(t, err)
	require.NoError(t, slot.Save(ctx, session.Key(oldSID), []byte(`{"state":{"token":"t","role":"ADMIN"}}`)))

	request := httptest.NewRequest(http.MethodPost, "/login", nil)
	request = request.WithContext(ctxutil.WithSessionID(request.Context(), oldSID))
	recorder := httptest.NewRecorder()

	store, err := manager.Rotate(recorder, request)
	require.NoError(t, err)
	assert.False(t, store.IsAuthenticated())

	newSID := sessionCookie(t, recorder).Value
	assert.NotEqual(t, oldSID, newSID)
	_, err = slot.Load(ctx, session.Key(oldSID))
	assert.ErrorIs(t, err, session.ErrSlotEmpty)

	require.NoError(t, store.SetCredential(ctx, "opaque", nil))

	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logout = logout.WithContext(ctxutil.WithSessionID(logout.Context(), newSID))
	logoutRecorder := httptest.NewRecorder()
	require.NoError(t, manager.Destroy(logoutRecorder, logout))

	assert.Equal(t, -1, sessionCookie(t, logoutRecorder).MaxAge)
	_, err = slot.Load(ctx, session.Key(newSID))
	assert.ErrorIs(t, err, session.ErrSlotEmpty)
}

/*
TestManager_RotateCarriesPrefs checks that UI preferences move to the new id on
rotation and are removed on destroy.
*/
func TestManager_RotateCarriesPrefs(t *testing.T) {
	ctx := context.Background()
	slot := session.NewMemorySlot()
	manager := newManager(slot)
	prefs := []byte(`{"state":{"sidebarOpen":false,"theme":"dark"},"version":0}`)

	oldSID, err := session.NewSessionID()
	require.NoError(t, err)
	require.NoError(t, slot.Save(ctx, session.PrefsKey(oldSID), prefs))

	request := httptest.NewRequest(http.MethodPost, "/login", nil)
	request = request.WithContext(ctxutil.WithSessionID(request.Context(), oldSID))
	recorder := httptest.NewRecorder()
	_, err = manager.Rotate(recorder, request)
	require.NoError(t, err)

	newSID := sessionCookie(t, recorder).Value
	_, err = slot.Load(ctx, session.PrefsKey(oldSID))
	assert.ErrorIs(t, err, session.ErrSlotEmpty)
	moved, err := slot.Load(ctx, session.PrefsKey(newSID))
	require.NoError(t, err)
	assert.JSONEq(t, string(prefs), string(moved))

	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logout = logout.WithContext(ctxutil.WithSessionID(logout.Context(), newSID))
	require.NoError(t, manager.Destroy(httptest.NewRecorder(), logout))

	_, err = slot.Load(ctx, session.PrefsKey(newSID))
	assert.ErrorIs(t, err, session.ErrSlotEmpty)
}
