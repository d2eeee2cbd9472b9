// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package prefs

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/courtside/internal/platform/request"
	"github.com/taibuivan/courtside/internal/platform/respond"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.get)
	router.Put("/", handler.update)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	sid, err := sessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.store.Load(request.Context(), sid))
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	sid, err := sessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(writer, request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	prefs, err := handler.store.Update(request.Context(), sid, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, prefs)
}

func sessionID(request *http.Request) (string, error) {
	sid := ctxutil.GetSessionID(request.Context())
	if sid == "" {
		return "", apperr.Internal(errors.New("session middleware not installed"))
	}
	return sid, nil
}
