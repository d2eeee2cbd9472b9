// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/respond"
)

// Handler exposes the saga journal to administrators.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the journal endpoints. The caller applies the guard.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/orphans", handler.listOrphans)
	router.Get("/sagas/{id}", handler.getSaga)
}

func (handler *Handler) listOrphans(writer http.ResponseWriter, request *http.Request) {
	orphans, err := handler.service.Orphans(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, orphans)
}

func (handler *Handler) getSaga(writer http.ResponseWriter, request *http.Request) {
	id, err := uuid.Parse(chi.URLParam(request, "id"))
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid saga id"))
		return
	}

	saga, err := handler.service.journal.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, saga)
}
