// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one primary-service row. The gateway forwards rows without
// reshaping them, so only the fields this service reads are typed accessors.
type Record map[string]any

// String returns a field rendered as text. Numbers are formatted without a
// fractional part when they have none; missing and null fields are "".
func (r Record) String(key string) string {
	switch value := r[key].(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	default:
		return ""
	}
}

// ID returns the row's identifier.
func (r Record) ID() string {
	return r.String("id")
}

// setDefault writes value when the field is missing or blank.
func (r Record) setDefault(key, value string) {
	if r.String(key) == "" {
		r[key] = value
	}
}
