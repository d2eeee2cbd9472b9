// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/taibuivan/courtside/internal/platform/metrics"
	"github.com/taibuivan/courtside/internal/platform/sec"
)

// Store holds one session and persists every transition to its [Slot].
// Transitions replace the whole [State]; concurrent writers resolve last
// write wins.
type Store struct {
	mu    sync.RWMutex
	state State

	slot    Slot
	key     string
	codec   *sec.Codec
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option customises a [Store].
type Option func(*Store)

// WithLogger sets the logger used for restore and transition events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics enables transition counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithCodec overrides the token codec.
func WithCodec(codec *sec.Codec) Option {
	return func(s *Store) { s.codec = codec }
}

/*
Open restores the session persisted under key.

A missing record yields an empty store. An unreadable or unparsable record is
logged and also yields an empty store; Open never fails.
*/
func Open(ctx context.Context, slot Slot, key string, opts ...Option) *Store {
	store := &Store{
		slot:   slot,
		key:    key,
		codec:  sec.NewCodec(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(store)
	}

	data, err := slot.Load(ctx, key)
	switch {
	case errors.Is(err, ErrSlotEmpty):
		return store
	case err != nil:
		store.logger.Warn("session_restore_failed", slog.String("key", key), slog.Any("error", err))
		return store
	}

	state, err := decodeState(data)
	if err != nil {
		store.logger.Warn("session_restore_corrupt", slog.String("key", key), slog.Any("error", err))
		return store
	}

	store.state = state
	return store
}

// Key returns the slot key this store persists under.
func (s *Store) Key() string {
	return s.key
}

/*
SetCredential installs a new credential.

The token is normalised and decoded; the resulting token, user, role and
authenticated flag are swapped in as one unit. An empty or undecodable token
clears the session instead.

Parameters:
  - token: string (raw credential, "Bearer " prefix allowed)
  - payload: map[string]any (user data delivered with an opaque token; may be nil)

Returns:
  - error: Only slot persistence failures
*/
func (s *Store) SetCredential(ctx context.Context, token string, payload map[string]any) error {
	token = sec.StripScheme(token)
	if token == "" {
		return s.Clear(ctx)
	}

	claims, err := s.codec.Decode(token, payload)
	if err != nil {
		s.logger.Warn("session_credential_rejected", slog.String("key", s.key), slog.Any("error", err))
		s.metrics.SessionTransition("rejected")
		return s.Clear(ctx)
	}

	next := State{
		Token:           claims.Token,
		User:            claims.User,
		Role:            claims.Role(),
		IsAuthenticated: true,
	}
	return s.replace(ctx, next, "set")
}

// Clear resets the session to its empty state.
func (s *Store) Clear(ctx context.Context) error {
	return s.replace(ctx, State{}, "clear")
}

// replace swaps the state and persists it while holding the write lock so
// the in-memory and persisted records cannot diverge in order.
func (s *Store) replace(ctx context.Context, next State, kind string) error {
	data, err := encodeState(next)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = next
	s.metrics.SessionTransition(kind)

	if err := s.slot.Save(ctx, s.key, data); err != nil {
		s.logger.Error("session_persist_failed", slog.String("key", s.key), slog.Any("error", err))
		return err
	}

	s.logger.Debug("session_"+kind, slog.String("key", s.key), slog.String("role", string(next.Role)))
	return nil
}

// # Readers

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Token returns the current credential, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Role returns the current role, or "" when not authenticated.
func (s *Store) Role() sec.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Role
}

// IsAuthenticated reports whether a credential is installed.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// HasRole reports whether the current role is one of allowed. It is false
// when no role is set.
func (s *Store) HasRole(allowed ...sec.Role) bool {
	role := s.Role()
	if role == "" {
		return false
	}
	return slices.Contains(allowed, role)
}
