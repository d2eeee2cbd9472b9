// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/courtside/internal/platform/apperr"
	requestutil "github.com/taibuivan/courtside/internal/platform/request"
	"github.com/taibuivan/courtside/internal/platform/validate"
	"github.com/taibuivan/courtside/internal/session"
)

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	require.NoError(t, requestutil.DecodeJSON(httptest.NewRecorder(), request, &target))
	assert.Equal(t, "Ana", target.Name)

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Equal(t, validate.ErrInvalidJSON, requestutil.DecodeJSON(httptest.NewRecorder(), request, &target))

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.Equal(t, validate.ErrEmptyBody, requestutil.DecodeJSON(httptest.NewRecorder(), request, &target))
}

func TestRequiredParam(t *testing.T) {
	routeContext := chi.NewRouteContext()
	routeContext.URLParams.Add("id", " 42 ")
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeContext))

	id, err := requestutil.RequiredParam(request, "id")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = requestutil.RequiredParam(request, "missing")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestSession distinguishes a missing middleware from a bound store. Whether the
caller is logged in is the guard's concern.
*/
func TestSession(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := requestutil.Session(request)
	assert.True(t, apperr.HasCode(err, apperr.CodeInternal))

	ctx := request.Context()
	store := session.Open(ctx, session.NewMemorySlot(), "auth-storage:x")
	request = request.WithContext(session.WithStore(ctx, store))

	got, err := requestutil.Session(request)
	require.NoError(t, err)
	assert.Same(t, store, got)
	assert.False(t, got.IsAuthenticated())
}
