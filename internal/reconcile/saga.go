// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// # Saga States

// State is a step of the person-then-profile saga.
type State string

const (
	// StatePersonPending: nothing exists yet.
	StatePersonPending State = "PERSON_PENDING"

	// StatePersonCreated: the identity service accepted the person.
	StatePersonCreated State = "PERSON_CREATED"

	// StateIdentityResolved: the person's external id is known.
	StateIdentityResolved State = "IDENTITY_RESOLVED"

	// StateProfileCreated: terminal success.
	StateProfileCreated State = "PROFILE_CREATED"

	// StateFailed: terminal failure. FailedAt names the last state reached.
	StateFailed State = "FAILED"
)

// next is the only legal forward transition out of each non-terminal state.
var next = map[State]State{
	StatePersonPending:    StatePersonCreated,
	StatePersonCreated:    StateIdentityResolved,
	StateIdentityResolved: StateProfileCreated,
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateProfileCreated || s == StateFailed
}

// # Profile Kinds

// Kind is the primary-service profile a saga creates.
type Kind string

const (
	KindCoach   Kind = "coach"
	KindStudent Kind = "student"
)

// # Saga

// Saga is the observable record of one reconciliation run.
type Saga struct {
	ID             uuid.UUID `json:"id"`
	Kind           Kind      `json:"kind"`
	State          State     `json:"state"`
	FailedAt       State     `json:"failedAt,omitempty"`
	Identification string    `json:"identification"`
	Email          string    `json:"email,omitempty"`
	ExternalID     string    `json:"externalId,omitempty"`
	ProfileID      string    `json:"profileId,omitempty"`
	ErrorCode      string    `json:"errorCode,omitempty"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	RequestID      string    `json:"requestId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// newSaga starts a saga in [StatePersonPending].
func newSaga(kind Kind, identification, email, requestID string, now time.Time) *Saga {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Saga{
		ID:             id,
		Kind:           kind,
		State:          StatePersonPending,
		Identification: identification,
		Email:          email,
		RequestID:      requestID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// advance moves the saga one step forward. It reports false when the saga is
// terminal.
func (s *Saga) advance(now time.Time) bool {
	to, ok := next[s.State]
	if !ok {
		return false
	}
	s.State = to
	s.UpdatedAt = now
	return true
}

// fail marks the saga failed at its current state.
func (s *Saga) fail(code, message string, now time.Time) {
	if s.State.Terminal() {
		return
	}
	s.FailedAt = s.State
	s.State = StateFailed
	s.ErrorCode = code
	s.ErrorMessage = message
	s.UpdatedAt = now
}

// Succeeded reports whether the profile was created.
func (s *Saga) Succeeded() bool {
	return s.State == StateProfileCreated
}

// Orphaned reports whether the saga failed after the person was created but
// before the profile existed. Orphaned persons need manual cleanup.
func (s *Saga) Orphaned() bool {
	return s.State == StateFailed &&
		(s.FailedAt == StatePersonCreated || s.FailedAt == StateIdentityResolved)
}

// Outcome is the metric label for a terminal saga: the final state, or
// "FAILED_AT_<state>".
func (s *Saga) Outcome() string {
	if s.State == StateFailed {
		return "FAILED_AT_" + string(s.FailedAt)
	}
	return string(s.State)
}
