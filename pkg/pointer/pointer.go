// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer helps with optional fields in partial updates, where a nil
// pointer means "leave unchanged".
package pointer

// To returns a pointer to v, for building patches from literals.
func To[T any](v T) *T {
	return &v
}

// Fallback dereferences p, or returns current when p is nil.
func Fallback[T any](p *T, current T) T {
	if p == nil {
		return current
	}
	return *p
}
