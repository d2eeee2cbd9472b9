// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/courtside/internal/platform/constants"
	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/platform/metrics"
)

// ManagerConfig configures browser session binding.
type ManagerConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager maps an opaque session cookie onto a [Store] per request.
type Manager struct {
	slot    Slot
	config  ManagerConfig
	metrics *metrics.Metrics
}

// NewManager creates a [Manager].
func NewManager(slot Slot, config ManagerConfig, m *metrics.Metrics) *Manager {
	if config.CookieName == "" {
		config.CookieName = "courtside_sid"
	}
	return &Manager{slot: slot, config: config, metrics: m}
}

// Key returns the slot key of a session id.
func Key(sid string) string {
	return constants.SessionNamespace + ":" + sid
}

// PrefsKey returns the slot key of the UI preferences bound to a session id.
func PrefsKey(sid string) string {
	return constants.PrefsNamespace + ":" + sid
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() (string, error) {
	buf := make([]byte, constants.SessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session_id_generate_failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// validSessionID rejects cookies that could not have been issued by
// [NewSessionID], so arbitrary strings never become Redis keys.
func validSessionID(sid string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(sid)
	return err == nil && len(raw) == constants.SessionIDBytes
}

// Open restores the store for sid.
func (m *Manager) Open(ctx context.Context, sid string) *Store {
	return Open(ctx, m.slot, Key(sid), WithLogger(ctxutil.GetLogger(ctx)), WithMetrics(m.metrics))
}

// Bind is middleware that opens the caller's session and places it on the
// request context. Requests without a valid cookie get a new session id.
func (m *Manager) Bind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		sid := ""
		if cookie, err := request.Cookie(m.config.CookieName); err == nil && validSessionID(cookie.Value) {
			sid = cookie.Value
		}

		if sid == "" {
			fresh, err := NewSessionID()
			if err != nil {
				ctxutil.GetLogger(request.Context()).Error("session_bind_failed", slog.Any("error", err))
				http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			sid = fresh
			m.setCookie(writer, sid)
		}

		ctx := ctxutil.WithSessionID(request.Context(), sid)
		ctx = WithStore(ctx, m.Open(ctx, sid))

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// Rotate issues a new session id for the request (called before installing a
// credential), discards the previous record and returns the new empty store.
func (m *Manager) Rotate(writer http.ResponseWriter, request *http.Request) (*Store, error) {
	ctx := request.Context()

	sid, err := NewSessionID()
	if err != nil {
		return nil, err
	}

	// UI preferences follow the browser to the new id; the credential does not.
	if old := ctxutil.GetSessionID(ctx); old != "" {
		if err := m.slot.Delete(ctx, Key(old)); err != nil {
			ctxutil.GetLogger(ctx).Warn("session_rotate_delete_failed", slog.Any("error", err))
		}
		m.movePrefs(ctx, old, sid)
	}
	m.setCookie(writer, sid)

	return Open(ctx, m.slot, Key(sid), WithLogger(ctxutil.GetLogger(ctx)), WithMetrics(m.metrics)), nil
}

// Destroy deletes the request's session record and expires the cookie.
func (m *Manager) Destroy(writer http.ResponseWriter, request *http.Request) error {
	ctx := request.Context()

	http.SetCookie(writer, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	sid := ctxutil.GetSessionID(ctx)
	if sid == "" {
		return nil
	}
	if err := m.slot.Delete(ctx, PrefsKey(sid)); err != nil {
		ctxutil.GetLogger(ctx).Warn("session_prefs_delete_failed", slog.Any("error", err))
	}
	return m.slot.Delete(ctx, Key(sid))
}

func (m *Manager) movePrefs(ctx context.Context, from, to string) {
	log := ctxutil.GetLogger(ctx)

	data, err := m.slot.Load(ctx, PrefsKey(from))
	if errors.Is(err, ErrSlotEmpty) {
		return
	}
	if err != nil {
		log.Warn("session_prefs_load_failed", slog.Any("error", err))
		return
	}
	if err := m.slot.Save(ctx, PrefsKey(to), data); err != nil {
		log.Warn("session_prefs_save_failed", slog.Any("error", err))
		return
	}
	if err := m.slot.Delete(ctx, PrefsKey(from)); err != nil {
		log.Warn("session_prefs_delete_failed", slog.Any("error", err))
	}
}

func (m *Manager) setCookie(writer http.ResponseWriter, sid string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(m.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
