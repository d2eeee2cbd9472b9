// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSlot stores each record as "<dir>/<key>.json" with owner-only
// permissions. It backs the CLI, where one user owns the whole directory.
type FileSlot struct {
	dir string
}

var _ Slot = (*FileSlot)(nil)

// NewFileSlot creates a [FileSlot] rooted at dir, creating it if needed.
func NewFileSlot(dir string) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file_slot_mkdir_failed: %w", err)
	}
	return &FileSlot{dir: dir}, nil
}

// DefaultFileSlot returns a [FileSlot] under ~/.courtside.
func DefaultFileSlot() (*FileSlot, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("file_slot_home_failed: %w", err)
	}
	return NewFileSlot(filepath.Join(home, ".courtside"))
}

func (s *FileSlot) path(key string) string {
	name := strings.NewReplacer("/", "_", ":", "_", string(os.PathSeparator), "_").Replace(key)
	return filepath.Join(s.dir, name+".json")
}

// Load implements [Slot].
func (s *FileSlot) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("file_slot_read_failed: %w", err)
	}
	return data, nil
}

// Save implements [Slot]. The record is written to a temporary file and
// renamed into place so a crash never leaves a half-written session.
func (s *FileSlot) Save(_ context.Context, key string, data []byte) error {
	target := s.path(key)

	tmp, err := os.CreateTemp(s.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("file_slot_write_failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file_slot_write_failed: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file_slot_write_failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file_slot_write_failed: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("file_slot_rename_failed: %w", err)
	}
	return nil
}

// Delete implements [Slot].
func (s *FileSlot) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file_slot_delete_failed: %w", err)
	}
	return nil
}
