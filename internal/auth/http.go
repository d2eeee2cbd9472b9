// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/courtside/internal/platform/request"
	"github.com/taibuivan/courtside/internal/platform/respond"
	"github.com/taibuivan/courtside/internal/session"
)

// SessionRotator issues and destroys session cookies. *session.Manager satisfies it.
type SessionRotator interface {
	Rotate(writer http.ResponseWriter, request *http.Request) (*session.Store, error)
	Destroy(writer http.ResponseWriter, request *http.Request) error
}

// Handler implements the authentication endpoints.
type Handler struct {
	service  *Service
	sessions SessionRotator
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service, sessions SessionRotator) *Handler {
	return &Handler{service: service, sessions: sessions}
}

// RegisterRoutes mounts the endpoints.
//
// # Endpoints
//   - POST /login   : Authenticates and installs the credential.
//   - POST /logout  : Clears and destroys the session.
//   - GET  /session : Returns {isAuthenticated, role, user}.
func (handler *Handler) RegisterRoutes(router chi.Router, login ...func(http.Handler) http.Handler) {
	router.With(login...).Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/session", handler.current)
}

func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input Credentials
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 1. Verify with the identity service ──
	result, err := handler.service.Authenticate(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Fresh session id, then install the credential ──
	store, err := handler.sessions.Rotate(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := handler.service.Establish(request.Context(), store, result)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, ViewOf(state))
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	store, err := requestutil.Session(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Logout(request.Context(), store); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := handler.sessions.Destroy(writer, request); err != nil {
		ctxutil.GetLogger(request.Context()).Warn("session_destroy_failed", slog.Any("error", err))
	}
	respond.NoContent(writer)
}

func (handler *Handler) current(writer http.ResponseWriter, request *http.Request) {
	store, err := requestutil.Session(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, ViewOf(store.Snapshot()))
}
