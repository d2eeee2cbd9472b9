// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"sync"
)

// ErrSlotEmpty is returned by [Slot.Load] when nothing is stored under a key.
var ErrSlotEmpty = errors.New("session: slot empty")

// Slot is a durable key-value cell holding one serialized record per key.
// Implementations replace whole values; there is no partial update.
type Slot interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// MemorySlot is a process-local [Slot] used in tests.
type MemorySlot struct {
	mu     sync.Mutex
	values map[string][]byte
}

var _ Slot = (*MemorySlot)(nil)

// NewMemorySlot creates an empty [MemorySlot].
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

// Load implements [Slot].
func (m *MemorySlot) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.values[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

// Save implements [Slot].
func (m *MemorySlot) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), data...)
	return nil
}

// Delete implements [Slot].
func (m *MemorySlot) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
