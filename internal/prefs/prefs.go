// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package prefs persists per-browser UI preferences next to the session.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/platform/validate"
	"github.com/taibuivan/courtside/internal/session"
	"github.com/taibuivan/courtside/pkg/pointer"
)

// Themes the interface supports.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Preferences is the persisted UI state.
type Preferences struct {
	SidebarOpen bool   `json:"sidebarOpen"`
	Theme       string `json:"theme"`
}

// Defaults is what a browser without stored preferences gets.
func Defaults() Preferences {
	return Preferences{SidebarOpen: true, Theme: ThemeLight}
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	SidebarOpen *bool   `json:"sidebarOpen"`
	Theme       *string `json:"theme"`
}

type record struct {
	State   Preferences `json:"state"`
	Version int         `json:"version"`
}

// Key returns the slot key for a browser session id. It is shared with the
// session manager, which carries it across id rotation.
func Key(sid string) string {
	return session.PrefsKey(sid)
}

// Store reads and writes preferences through a session slot.
type Store struct {
	slot session.Slot
}

// NewStore creates a [Store].
func NewStore(slot session.Slot) *Store {
	return &Store{slot: slot}
}

// Load returns the stored preferences, or [Defaults] when none or unreadable.
func (s *Store) Load(ctx context.Context, sid string) Preferences {
	data, err := s.slot.Load(ctx, Key(sid))
	if err != nil {
		if !errors.Is(err, session.ErrSlotEmpty) {
			ctxutil.GetLogger(ctx).Warn("prefs_load_failed", slog.Any("error", err))
		}
		return Defaults()
	}

	stored := record{State: Defaults()}
	if err := json.Unmarshal(data, &stored); err != nil {
		ctxutil.GetLogger(ctx).Warn("prefs_corrupt", slog.Any("error", err))
		return Defaults()
	}
	if stored.State.Theme != ThemeLight && stored.State.Theme != ThemeDark {
		stored.State.Theme = ThemeLight
	}
	return stored.State
}

// Update applies patch and persists the result.
func (s *Store) Update(ctx context.Context, sid string, patch Patch) (Preferences, error) {
	if patch.Theme != nil {
		v := &validate.Validator{}
		if err := v.OneOf("theme", *patch.Theme, ThemeLight, ThemeDark).Err(); err != nil {
			return Preferences{}, err
		}
	}

	current := s.Load(ctx, sid)
	current.SidebarOpen = pointer.Fallback(patch.SidebarOpen, current.SidebarOpen)
	current.Theme = pointer.Fallback(patch.Theme, current.Theme)

	data, err := json.Marshal(record{State: current})
	if err != nil {
		return Preferences{}, err
	}
	if err := s.slot.Save(ctx, Key(sid), data); err != nil {
		return Preferences{}, err
	}
	return current, nil
}
