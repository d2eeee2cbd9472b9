// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package roster exposes the primary (basketball) service's collections.

Every collection is a [Resource] over the shared gateway, called with the
requesting user's session as credentials. Responses are normalised once at
this boundary (see decodeList); handlers and the CLI only ever see slices
and single rows.
*/
package roster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/courtside/internal/gateway"
	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/pkg/pagination"
)

// Resource is a REST collection on the primary service.
type Resource[T any] struct {
	client *gateway.Client
	name   string
	path   string
}

// NewResource creates a [Resource]. name labels errors ("Athlete"); path is
// the collection path ("atletas").
func NewResource[T any](client *gateway.Client, name, path string) *Resource[T] {
	return &Resource[T]{client: client, name: name, path: strings.Trim(path, "/")}
}

// Name returns the resource label.
func (r *Resource[T]) Name() string { return r.name }

// List fetches one page of the collection. Zero params fetch the upstream default.
func (r *Resource[T]) List(ctx context.Context, creds gateway.Credentials, params pagination.Params, filter url.Values) (Page[T], error) {
	return r.list(ctx, creds, r.path, params, filter)
}

// Get fetches one row.
func (r *Resource[T]) Get(ctx context.Context, creds gateway.Credentials, id string) (T, error) {
	return r.one(ctx, creds, http.MethodGet, r.member(id), nil)
}

// Create posts a new row.
func (r *Resource[T]) Create(ctx context.Context, creds gateway.Credentials, body any) (T, error) {
	return r.one(ctx, creds, http.MethodPost, r.path, body)
}

// Update replaces one row.
func (r *Resource[T]) Update(ctx context.Context, creds gateway.Credentials, id string, body any) (T, error) {
	return r.one(ctx, creds, http.MethodPut, r.member(id), body)
}

// Delete removes one row.
func (r *Resource[T]) Delete(ctx context.Context, creds gateway.Credentials, id string) error {
	return r.client.Bind(creds).Delete(ctx, r.member(id))
}

// ListAt fetches a list below the collection ("atleta/7", "buscar").
func (r *Resource[T]) ListAt(ctx context.Context, creds gateway.Credentials, sub string, filter url.Values) (Page[T], error) {
	return r.list(ctx, creds, r.path+"/"+strings.Trim(sub, "/"), pagination.Params{}, filter)
}

// Action posts to a sub-path of one row ("7/habilitar") and returns the raw body.
func (r *Resource[T]) Action(ctx context.Context, creds gateway.Credentials, sub string, body any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := r.client.Bind(creds).Post(ctx, r.path+"/"+strings.Trim(sub, "/"), body, &raw); err != nil {
		return nil, r.label(err)
	}
	return raw, nil
}

func (r *Resource[T]) list(ctx context.Context, creds gateway.Credentials, path string, params pagination.Params, filter url.Values) (Page[T], error) {
	query := url.Values{}
	for key, values := range filter {
		for _, value := range values {
			if strings.TrimSpace(value) != "" {
				query.Add(key, value)
			}
		}
	}
	params.Apply(query)

	var raw json.RawMessage
	if err := r.client.Bind(creds).Get(ctx, path, query, &raw); err != nil {
		return Page[T]{}, r.label(err)
	}

	page, err := decodeList[T](raw)
	if err != nil {
		return Page[T]{}, apperr.Upstream("The primary service returned an unreadable list", err)
	}
	return page, nil
}

func (r *Resource[T]) one(ctx context.Context, creds gateway.Credentials, method, path string, body any) (T, error) {
	var zero T
	var raw json.RawMessage
	if err := r.client.Bind(creds).Do(ctx, gateway.Request{Method: method, Path: path, Body: body}, &raw); err != nil {
		return zero, r.label(err)
	}

	out, err := decodeOne[T](raw)
	if err != nil {
		return zero, apperr.Upstream("The primary service returned an unreadable record", err)
	}
	return out, nil
}

func (r *Resource[T]) member(id string) string {
	return r.path + "/" + url.PathEscape(strings.TrimSpace(id))
}

// label names the resource in a bare upstream 404.
func (r *Resource[T]) label(err error) error {
	appErr := apperr.As(err)
	if appErr == nil || appErr.Code != apperr.CodeNotFound || appErr.Message != apperr.NotFound("Resource").Message {
		return err
	}
	return apperr.NotFound(r.name).WithCause(appErr.Cause)
}
