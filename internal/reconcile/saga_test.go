// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSaga_Transitions(t *testing.T) {
	now := time.Now()
	saga := newSaga(KindCoach, "1710034065", "a@b.c", "rid", now)

	assert.Equal(t, StatePersonPending, saga.State)
	assert.True(t, saga.advance(now))
	assert.True(t, saga.advance(now))
	assert.True(t, saga.advance(now))
	assert.Equal(t, StateProfileCreated, saga.State)
	assert.False(t, saga.advance(now))
	assert.Equal(t, "PROFILE_CREATED", saga.Outcome())

	// Terminal sagas ignore failure.
	saga.fail("X", "late", now)
	assert.True(t, saga.Succeeded())
}

func TestSaga_Orphaned(t *testing.T) {
	tests := []struct {
		steps    int
		orphaned bool
	}{
		{0, false},
		{1, true},
		{2, true},
	}

	for _, tt := range tests {
		now := time.Now()
		saga := newSaga(KindStudent, "1104680135", "", "", now)
		for range tt.steps {
			saga.advance(now)
		}
		reached := saga.State
		saga.fail("CODE", "boom", now)

		assert.Equal(t, reached, saga.FailedAt)
		assert.Equal(t, tt.orphaned, saga.Orphaned())
		assert.Equal(t, "FAILED_AT_"+string(reached), saga.Outcome())
		assert.False(t, saga.advance(now))
	}
}
