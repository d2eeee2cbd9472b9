// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session owns the authenticated-principal state for one browser (or one
CLI user).

A [Store] is the single source of truth for "who is logged in". It is created
from a durable [Slot], mutated only through [Store.SetCredential] and
[Store.Clear], and injected explicitly into the gateway, the guard and the
reconciliation service. The [Manager] maps browser cookies onto stores.

Persisted layout (one JSON record per key):

	{"state":{"token":"…","user":{…},"role":"COACH","isAuthenticated":true},"version":0}
*/
package session

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/taibuivan/courtside/internal/platform/sec"
)

// State is the immutable snapshot of a session.
//
// Invariants: IsAuthenticated == (Token != ""), and Role is never empty while
// IsAuthenticated is true.
type State struct {
	Token           string
	User            map[string]any
	Role            sec.Role
	IsAuthenticated bool
}

// clone returns a copy whose User map is not shared.
func (s State) clone() State {
	s.User = maps.Clone(s.User)
	return s
}

// persistedState mirrors the wire record; nil pointers encode as JSON null.
type persistedState struct {
	Token           *string        `json:"token"`
	User            map[string]any `json:"user"`
	Role            *string        `json:"role"`
	IsAuthenticated bool           `json:"isAuthenticated"`
}

type persistedEnvelope struct {
	State   *persistedState `json:"state"`
	Version int             `json:"version"`
}

// encodeState serializes a state into its persisted envelope.
func encodeState(state State) ([]byte, error) {
	record := persistedState{
		User:            state.User,
		IsAuthenticated: state.IsAuthenticated,
	}
	if state.Token != "" {
		token := state.Token
		record.Token = &token
	}
	if state.Role != "" {
		role := string(state.Role)
		record.Role = &role
	}

	data, err := json.Marshal(persistedEnvelope{State: &record})
	if err != nil {
		return nil, fmt.Errorf("session_encode_failed: %w", err)
	}
	return data, nil
}

// decodeState parses a persisted envelope. Records that violate the state
// invariants are repaired: no token means empty, a token without a usable
// role means GUEST.
func decodeState(data []byte) (State, error) {
	var envelope persistedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return State{}, fmt.Errorf("session_decode_failed: %w", err)
	}
	if envelope.State == nil {
		return State{}, fmt.Errorf("session_decode_failed: missing state")
	}

	record := envelope.State
	if record.Token == nil || *record.Token == "" {
		return State{}, nil
	}

	role := sec.RoleGuest
	if record.Role != nil {
		if parsed, ok := sec.ParseRole(*record.Role); ok {
			role = parsed
		}
	}

	return State{
		Token:           *record.Token,
		User:            record.User,
		Role:            role,
		IsAuthenticated: true,
	}, nil
}
