// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gateway

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/taibuivan/courtside/internal/platform/apperr"
)

// messageKeys are the fields upstreams use for a human-readable message,
// in order of preference.
var messageKeys = []string{"message", "detail", "error", "msg"}

// parseErrorBody extracts a message and field errors from an upstream error
// body. Recognised shapes:
//
//	{"message": "...", "errors": {"field": "msg" | ["msg"]} | [{"field","message"}]}
//	{"detail": "..."}
//	{"field": ["msg", ...], "non_field_errors": ["..."]}
func parseErrorBody(body []byte) (string, []apperr.FieldError) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", nil
	}

	message := ""
	for _, key := range messageKeys {
		if value, ok := raw[key]; ok {
			var text string
			if json.Unmarshal(value, &text) == nil && text != "" {
				message = text
				break
			}
		}
	}

	var details []apperr.FieldError
	if errorsField, ok := raw["errors"]; ok {
		details = FieldErrors(errorsField)
	} else {
		// Field-keyed validation body: every remaining key is a field.
		for key, value := range raw {
			if key == "status" || key == "data" || slices.Contains(messageKeys, key) {
				continue
			}
			if text := flattenMessages(value); text != "" {
				details = append(details, apperr.FieldError{Field: key, Message: text})
			}
		}
		sortDetails(details)
	}

	if message == "" && len(details) > 0 {
		parts := make([]string, 0, len(details))
		for _, detail := range details {
			parts = append(parts, fmt.Sprintf("%s: %s", detail.Field, detail.Message))
		}
		message = strings.Join(parts, ", ")
	}

	return message, details
}

// FieldErrors decodes an "errors" value that is either an object keyed by
// field or a list of {field, message} objects. Unknown shapes yield nil.
func FieldErrors(value json.RawMessage) []apperr.FieldError {
	var byField map[string]json.RawMessage
	if json.Unmarshal(value, &byField) == nil {
		details := make([]apperr.FieldError, 0, len(byField))
		for field, raw := range byField {
			if text := flattenMessages(raw); text != "" {
				details = append(details, apperr.FieldError{Field: field, Message: text})
			}
		}
		sortDetails(details)
		return details
	}

	var list []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if json.Unmarshal(value, &list) == nil {
		details := make([]apperr.FieldError, 0, len(list))
		for _, item := range list {
			text := item.Message
			if text == "" {
				text = item.Msg
			}
			details = append(details, apperr.FieldError{Field: item.Field, Message: text})
		}
		return details
	}

	return nil
}

// flattenMessages turns "msg" or ["a","b"] into a single string.
func flattenMessages(value json.RawMessage) string {
	var text string
	if json.Unmarshal(value, &text) == nil {
		return text
	}
	var list []string
	if json.Unmarshal(value, &list) == nil {
		return strings.Join(list, " ")
	}
	return ""
}

func sortDetails(details []apperr.FieldError) {
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
}
