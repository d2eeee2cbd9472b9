// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm folds free-form Unicode labels into comparable ASCII keys.
//
// # Usage
//
// Upstream services spell classification values inconsistently
// ("Docentes", "DOCENTES", "Administrativós"). This package handles
// normalization, accent removal and case folding so lookups compare keys,
// not spellings.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var upper = cases.Upper(language.Und)

// Key converts an arbitrary Unicode string into an upper-case ASCII key.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Trims surrounding whitespace and upper-cases the result.
// 4. Replaces inner whitespace and hyphens with underscores.
func Key(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	// 2. Upper-case
	result = upper.String(strings.TrimSpace(result))

	// 3. Collapse separators
	return strings.Join(strings.FieldsFunc(result, isSeparator), "_")
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// isSeparator reports whether r splits words inside a key.
func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_'
}
