// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Page is a decoded list response.
type Page[T any] struct {
	Items []T
	// Total is the upstream count when reported, otherwise len(Items).
	Total int
}

var errUnknownShape = errors.New("roster: unrecognised list shape")

// listShape covers the object forms a list response arrives in:
// {results, count} and {status, message, data}.
type listShape struct {
	Results json.RawMessage `json:"results"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
}

// decodeList normalises the three list shapes the primary service uses into
// one slice. A {data} wrapper may itself hold any of the three shapes.
func decodeList[T any](raw []byte) (Page[T], error) {
	return decodeListDepth[T](raw, 0)
}

func decodeListDepth[T any](raw []byte, depth int) (Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Page[T]{Items: []T{}}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []*T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, fmt.Errorf("roster_list_decode_failed: %w", err)
		}
		page := Page[T]{Items: make([]T, 0, len(items))}
		for _, item := range items {
			if item != nil {
				page.Items = append(page.Items, *item)
			}
		}
		page.Total = len(page.Items)
		return page, nil

	case '{':
		var shape listShape
		if err := json.Unmarshal(trimmed, &shape); err != nil {
			return Page[T]{}, fmt.Errorf("roster_list_decode_failed: %w", err)
		}

		var (
			page Page[T]
			err  error
		)
		switch {
		case shape.Results != nil:
			page, err = decodeListDepth[T](shape.Results, depth+1)
		case shape.Data != nil && depth < 2:
			page, err = decodeListDepth[T](shape.Data, depth+1)
		default:
			return Page[T]{}, errUnknownShape
		}
		if err != nil {
			return Page[T]{}, err
		}
		if shape.Count != nil {
			page.Total = *shape.Count
		}
		return page, nil
	}

	return Page[T]{}, errUnknownShape
}

// decodeOne reads a single row, unwrapping a {status, data} envelope.
func decodeOne[T any](raw []byte) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return out, nil
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if json.Unmarshal(trimmed, &envelope) == nil && envelope.Status != "" && envelope.Data != nil {
		trimmed = envelope.Data
	}

	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("roster_decode_failed: %w", err)
	}
	return out, nil
}
