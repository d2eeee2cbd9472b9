// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination translates list paging between the admin application
// and the primary service.
//
// # Overview
//
// The admin application sends "page" and "limit"; the primary service expects
// "page" and "page_size" and answers with a total "count". This package owns
// both directions so handlers never do the mapping by hand.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and limit from a request's query string.
// The zero value means "not paginated".
type Params struct {
	Page  int
	Limit int
}

// IsZero reports whether no paging was requested.
func (p Params) IsZero() bool {
	return p.Page == 0 && p.Limit == 0
}

// Apply writes the upstream paging parameters into query.
func (p Params) Apply(query url.Values) {
	if p.IsZero() {
		return
	}
	query.Set("page", strconv.Itoa(p.Page))
	query.Set("page_size", strconv.Itoa(p.Limit))
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta constructs pagination metadata for a response.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// FromRequest parses "page" and "limit" query parameters.
//
// # Clamping
//
// When neither parameter is present the zero [Params] is returned and the
// upstream decides. Invalid values are clamped to [DefaultPage],
// [DefaultLimit] or [MaxLimit].
func FromRequest(r *http.Request) Params {
	query := r.URL.Query()
	if !query.Has("page") && !query.Has("limit") {
		return Params{}
	}

	page := parseIntParam(query, "page", DefaultPage)
	limit := parseIntParam(query, "limit", DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}

	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

func parseIntParam(query url.Values, key string, defaultVal int) int {
	raw := query.Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
