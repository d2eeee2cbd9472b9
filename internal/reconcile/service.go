// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reconcile creates people across the two backends.

A coach or vinculation student is a person on the identity service plus a
profile on the primary service that points at it. There is no shared
transaction, so every run is a [Saga] whose transitions are journalled:

	PERSON_PENDING → PERSON_CREATED → IDENTITY_RESOLVED → PROFILE_CREATED
	                        ↘ FAILED (FailedAt = last state reached) ↙

Steps are strictly sequential and short-circuit. A run that fails after the
person exists is orphaned; it is listed for manual cleanup and never
compensated automatically.
*/
package reconcile

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/courtside/internal/gateway"
	"github.com/taibuivan/courtside/internal/identity"
	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/platform/metrics"
	"github.com/taibuivan/courtside/internal/platform/sec"
	"github.com/taibuivan/courtside/internal/platform/validate"
)

// Directory is the identity-service surface the saga depends on.
// *identity.Client satisfies it.
type Directory interface {
	SaveAccount(ctx context.Context, account identity.Account) error
	SearchByIdentification(ctx context.Context, identification string) (identity.Person, error)
	Search(ctx context.Context, externalID string) (identity.Person, error)
	Update(ctx context.Context, update identity.PersonUpdate) (identity.Person, error)
	All(ctx context.Context) ([]identity.Person, error)
	ExistsByIdentification(ctx context.Context, identification string) (bool, error)
}

// Profiles creates profiles on the primary service with the caller's credentials.
type Profiles interface {
	Create(ctx context.Context, creds gateway.Credentials, kind Kind, body map[string]any) (json.RawMessage, error)
}

// # Inputs

// PersonFields is the identity part of a creation form.
type PersonFields struct {
	FirstName      string `json:"nombre"`
	LastName       string `json:"apellido"`
	Identification string `json:"dni"`
	Email          string `json:"email"`
	Password       string `json:"clave"`
	Phone          string `json:"telefono"`
	Address        string `json:"direccion"`
}

// CoachProfile holds the coach-specific attributes.
type CoachProfile struct {
	Specialty string `json:"especialidad"`
	Club      string `json:"club_asignado"`
}

// StudentProfile holds the vinculation-student attributes.
type StudentProfile struct {
	Career     string `json:"carrera"`
	Semester   string `json:"semestre"`
	University string `json:"universidad"`
	StartDate  string `json:"fecha_inicio"`
	EndDate    string `json:"fecha_fin"`
}

// ProfileSpec selects the profile to create. Only the block matching Kind is read.
type ProfileSpec struct {
	Kind    Kind
	Coach   CoachProfile
	Student StudentProfile
}

// role is the role the created person will hold.
func (p ProfileSpec) role() sec.Role {
	if p.Kind == KindCoach {
		return sec.RoleCoach
	}
	return sec.RoleStudent
}

// body builds the primary-service payload linked to externalID.
func (p ProfileSpec) body(externalID string) map[string]any {
	body := map[string]any{"persona_external": externalID}
	switch p.Kind {
	case KindCoach:
		body["especialidad"] = p.Coach.Specialty
		body["club_asignado"] = p.Coach.Club
	case KindStudent:
		body["carrera"] = p.Student.Career
		body["semestre"] = p.Student.Semester
		setIfPresent(body, "universidad", p.Student.University)
		setIfPresent(body, "fecha_inicio", p.Student.StartDate)
		setIfPresent(body, "fecha_fin", p.Student.EndDate)
	}
	return body
}

// MutableFields are the person attributes an edit may change. Identification
// is echoed unchanged; the identity service requires it on update.
type MutableFields struct {
	FirstName      string `json:"nombre"`
	LastName       string `json:"apellido"`
	Identification string `json:"dni"`
	Phone          string `json:"telefono"`
	Address        string `json:"direccion"`
	Kind           Kind   `json:"-"`
}

// # Service

// Service runs reconciliation sagas.
type Service struct {
	directory Directory
	profiles  Profiles
	journal   Journal
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService creates a [Service]. A nil journal records nothing durable.
func NewService(directory Directory, profiles Profiles, journal Journal, m *metrics.Metrics) *Service {
	if journal == nil {
		journal = NewMemoryJournal()
	}
	return &Service{
		directory: directory,
		profiles:  profiles,
		journal:   journal,
		metrics:   m,
		now:       time.Now,
	}
}

/*
CreatePersonThenProfile creates the identity person, resolves its external id
and creates the linked primary-service profile.

Parameters:
  - ctx: context.Context
  - creds: gateway.Credentials (the signed-in user; used for the profile call only)
  - person: PersonFields
  - profile: ProfileSpec

Returns:
  - *Saga: the final saga (nil when the form failed validation)
  - error: VALIDATION_ERROR, IDENTITY_VALIDATION, DUPLICATE_EMAIL,
    DUPLICATE_IDENTIFICATION, IDENTITY_RESOLUTION_FAILED or PROFILE_CREATION_FAILED
*/
func (s *Service) CreatePersonThenProfile(ctx context.Context, creds gateway.Credentials, person PersonFields, profile ProfileSpec) (*Saga, error) {
	person = trimPerson(person)
	if err := validateCreate(person, profile); err != nil {
		return nil, err
	}

	logger := ctxutil.GetLogger(ctx).With(
		slog.String("saga_kind", string(profile.Kind)),
		slog.String("identification", person.Identification),
	)

	saga := newSaga(profile.Kind, person.Identification, person.Email, ctxutil.GetRequestID(ctx), s.now())
	s.record(ctx, logger, saga)

	// ── Step A: create the person ──
	account := identity.Account{
		FirstName:          person.FirstName,
		LastName:           person.LastName,
		Identification:     person.Identification,
		IdentificationType: identity.IdentificationCedula,
		Statement:          string(sec.StatementForRole(profile.role())),
		Address:            person.Address,
		Phone:              person.Phone,
		Email:              person.Email,
		Password:           person.Password,
	}
	if err := s.directory.SaveAccount(ctx, account); err != nil {
		return s.abort(ctx, logger, saga, err)
	}
	s.step(ctx, logger, saga)

	// ── Step B: resolve the external id ──
	resolved, err := s.directory.SearchByIdentification(ctx, person.Identification)
	if err == nil && resolved.ExternalID == "" {
		err = apperr.NotFound("Person identifier")
	}
	if err != nil {
		return s.abort(ctx, logger, saga, apperr.IdentityResolution(err))
	}
	saga.ExternalID = resolved.ExternalID
	s.step(ctx, logger, saga)

	// ── Step C: create the profile ──
	created, err := s.profiles.Create(ctx, creds, profile.Kind, profile.body(resolved.ExternalID))
	if err != nil {
		message := "The person was created but the profile was rejected"
		if appErr := apperr.As(err); appErr != nil && appErr.Message != "" {
			message = appErr.Message
		}
		return s.abort(ctx, logger, saga, apperr.ProfileCreation(message, err))
	}
	saga.ProfileID = profileID(created)
	s.step(ctx, logger, saga)

	s.metrics.SagaFinished(string(saga.Kind), saga.Outcome())
	logger.Info("saga_completed",
		slog.String("saga_id", saga.ID.String()),
		slog.String("external_id", saga.ExternalID),
	)
	return saga, nil
}

// UpdatePerson rewrites the mutable person fields with a single update call.
func (s *Service) UpdatePerson(ctx context.Context, externalID string, fields MutableFields) (identity.Person, error) {
	externalID = strings.TrimSpace(externalID)

	v := &validate.Validator{}
	v.Required("external", externalID).
		Required("nombre", fields.FirstName).
		Required("apellido", fields.LastName).
		Required("dni", fields.Identification)
	if fields.Phone != "" {
		v.Phone("telefono", fields.Phone)
	}
	if err := v.Err(); err != nil {
		return identity.Person{}, err
	}

	statement := sec.StatementForRole(sec.RoleStudent)
	if fields.Kind == KindCoach {
		statement = sec.StatementForRole(sec.RoleCoach)
	}

	return s.directory.Update(ctx, identity.PersonUpdate{
		ExternalID:         externalID,
		FirstName:          strings.TrimSpace(fields.FirstName),
		LastName:           strings.TrimSpace(fields.LastName),
		Identification:     strings.TrimSpace(fields.Identification),
		IdentificationType: identity.IdentificationCedula,
		Statement:          string(statement),
		Address:            strings.TrimSpace(fields.Address),
		Phone:              strings.TrimSpace(fields.Phone),
	})
}

// ResolveByExternalID fetches one normalized person.
func (s *Service) ResolveByExternalID(ctx context.Context, externalID string) (identity.Person, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return identity.Person{}, validate.RequiredError("external", "External id is required")
	}
	return s.directory.Search(ctx, externalID)
}

// People lists every person the identity service knows.
func (s *Service) People(ctx context.Context) ([]identity.Person, error) {
	return s.directory.All(ctx)
}

// IdentificationTaken reports whether a national id already belongs to a
// person. Forms call it before starting a saga so a duplicate is caught
// before the account is submitted.
func (s *Service) IdentificationTaken(ctx context.Context, identification string) (bool, error) {
	identification = strings.TrimSpace(identification)
	if identification == "" {
		return false, validate.RequiredError("identificacion", "Identification is required")
	}
	return s.directory.ExistsByIdentification(ctx, identification)
}

// Orphans lists failed-after-person sagas for manual cleanup.
func (s *Service) Orphans(ctx context.Context) ([]*Saga, error) {
	return s.journal.Orphans(ctx)
}

// # Internal

func (s *Service) step(ctx context.Context, logger *slog.Logger, saga *Saga) {
	saga.advance(s.now())
	s.record(ctx, logger, saga)
}

func (s *Service) abort(ctx context.Context, logger *slog.Logger, saga *Saga, err error) (*Saga, error) {
	code := apperr.CodeInternal
	if appErr := apperr.As(err); appErr != nil {
		code = appErr.Code
	}
	saga.fail(code, err.Error(), s.now())
	s.record(ctx, logger, saga)
	s.metrics.SagaFinished(string(saga.Kind), saga.Outcome())

	attrs := []any{
		slog.String("saga_id", saga.ID.String()),
		slog.String("failed_at", string(saga.FailedAt)),
		slog.String("code", code),
	}
	if saga.Orphaned() {
		logger.Error("saga_orphaned", append(attrs, slog.String("external_id", saga.ExternalID))...)
	} else {
		logger.Warn("saga_failed", attrs...)
	}
	return saga, err
}

// record journals the saga. A journal failure never fails the operation; the
// upstream side effects have already happened.
func (s *Service) record(ctx context.Context, logger *slog.Logger, saga *Saga) {
	if err := s.journal.Record(ctx, saga); err != nil {
		logger.Error("saga_journal_failed",
			slog.String("saga_id", saga.ID.String()),
			slog.String("state", string(saga.State)),
			slog.Any("error", err),
		)
	}
}

func validateCreate(person PersonFields, profile ProfileSpec) error {
	v := &validate.Validator{}
	v.OneOf("kind", string(profile.Kind), string(KindCoach), string(KindStudent)).
		Required("nombre", person.FirstName).
		MaxLen("nombre", person.FirstName, 100).
		Required("apellido", person.LastName).
		MaxLen("apellido", person.LastName, 100).
		Required("dni", person.Identification).
		MaxLen("dni", person.Identification, 13).
		Required("email", person.Email).
		Email("email", person.Email).
		Required("clave", person.Password).
		MinLen("clave", person.Password, 6)
	if person.Phone != "" {
		v.Phone("telefono", person.Phone)
	}

	if profile.Kind == KindStudent {
		v.Required("carrera", profile.Student.Career).
			Required("semestre", profile.Student.Semester)
	}
	return v.Err()
}

func trimPerson(person PersonFields) PersonFields {
	person.FirstName = strings.TrimSpace(person.FirstName)
	person.LastName = strings.TrimSpace(person.LastName)
	person.Identification = strings.TrimSpace(person.Identification)
	person.Email = strings.ToLower(strings.TrimSpace(person.Email))
	person.Phone = strings.TrimSpace(person.Phone)
	person.Address = strings.TrimSpace(person.Address)
	return person
}

// profileID extracts the new profile's id from the primary-service response,
// which is either the record itself or a {data: record} wrapper.
func profileID(raw json.RawMessage) string {
	var record struct {
		ID   json.RawMessage `json:"id"`
		Data struct {
			ID json.RawMessage `json:"id"`
		} `json:"data"`
	}
	if json.Unmarshal(raw, &record) != nil {
		return ""
	}
	id := record.ID
	if len(id) == 0 {
		id = record.Data.ID
	}

	var text string
	if json.Unmarshal(id, &text) == nil {
		return text
	}
	var number int64
	if json.Unmarshal(id, &number) == nil {
		return strconv.FormatInt(number, 10)
	}
	return ""
}

func setIfPresent(body map[string]any, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		body[key] = value
	}
}
