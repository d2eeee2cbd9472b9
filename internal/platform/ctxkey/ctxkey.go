// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the context keys shared by the middleware chain, the
// session binder and the handlers. The key type is unexported so no other
// package can forge or collide with them.
package ctxkey

type key uint8

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = iota + 1

	// KeyLogger carries the request-scoped [*log/slog.Logger].
	KeyLogger

	// KeySession carries the bound [*session.Store].
	KeySession

	// KeySessionID carries the opaque browser session id.
	KeySessionID
)
