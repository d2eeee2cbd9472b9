// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the router's parameter extraction, body decoding and the
lookup of the request's bound session, so handlers stay short.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/validate"
	"github.com/taibuivan/courtside/internal/session"
)

// maxBodyBytes caps request bodies; forms in the admin application are small.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (used to cap the body size)
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)

	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return validate.ErrEmptyBody
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named, trimmed URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(request, name))
}

/*
RequiredParam returns a named URL parameter or a validation error when empty.
*/
func RequiredParam(request *http.Request, name string) (string, error) {
	value := Param(request, name)
	if value == "" {
		return "", validate.RequiredError(name, "This parameter is required")
	}
	return value, nil
}

/*
Session returns the session bound to the request by the session middleware.

Returns:
  - *session.Store: The request's store
  - error: apperr.Internal if the middleware did not run (a wiring bug)
*/
func Session(request *http.Request) (*session.Store, error) {
	store := session.FromContext(request.Context())
	if store == nil {
		return nil, apperr.Internal(errors.New("session middleware not installed"))
	}
	return store, nil
}
