// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/taibuivan/courtside/internal/platform/apperr"
)

// Journal records every saga transition.
type Journal interface {
	// Record upserts the saga's current state.
	Record(ctx context.Context, saga *Saga) error

	// Get returns one saga by id.
	Get(ctx context.Context, id uuid.UUID) (*Saga, error)

	// Orphans lists sagas that failed after the person was created, newest first.
	Orphans(ctx context.Context) ([]*Saga, error)
}

// MemoryJournal keeps sagas in process memory. It is used when no database
// is configured and in tests. Each saga carries its own transition history,
// which only grows when the state changes.
type MemoryJournal struct {
	mu    sync.RWMutex
	sagas map[uuid.UUID]*memoryEntry
}

type memoryEntry struct {
	saga   Saga
	states []State
}

// NewMemoryJournal creates an empty [MemoryJournal].
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{sagas: make(map[uuid.UUID]*memoryEntry)}
}

func (j *MemoryJournal) Record(_ context.Context, saga *Saga) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry, ok := j.sagas[saga.ID]
	if !ok {
		entry = &memoryEntry{}
		j.sagas[saga.ID] = entry
	}
	entry.saga = *saga
	if n := len(entry.states); n == 0 || entry.states[n-1] != saga.State {
		entry.states = append(entry.states, saga.State)
	}
	return nil
}

func (j *MemoryJournal) Get(_ context.Context, id uuid.UUID) (*Saga, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	entry, ok := j.sagas[id]
	if !ok {
		return nil, apperr.NotFound("Saga")
	}
	saga := entry.saga
	return &saga, nil
}

func (j *MemoryJournal) Orphans(_ context.Context) ([]*Saga, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	orphans := make([]*Saga, 0)
	for _, entry := range j.sagas {
		if entry.saga.Orphaned() {
			saga := entry.saga
			orphans = append(orphans, &saga)
		}
	}
	slices.SortFunc(orphans, func(a, b *Saga) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return orphans, nil
}

// Transitions returns the states recorded for one saga, in order.
func (j *MemoryJournal) Transitions(id uuid.UUID) []State {
	j.mu.RLock()
	defer j.mu.RUnlock()

	entry, ok := j.sagas[id]
	if !ok {
		return nil
	}
	return slices.Clone(entry.states)
}
