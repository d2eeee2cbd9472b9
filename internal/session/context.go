// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"

	"github.com/taibuivan/courtside/internal/platform/ctxkey"
)

// WithStore returns a context carrying store.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, ctxkey.KeySession, store)
}

// FromContext returns the request's store, or nil when none is bound.
func FromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(ctxkey.KeySession).(*Store)
	return store
}
