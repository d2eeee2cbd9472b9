// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/taibuivan/courtside/internal/gateway"
)

// Primary-service collection paths.
const (
	pathAthletes      = "atletas"
	pathCoaches       = "entrenadores"
	pathStudents      = "estudiantes-vinculacion"
	pathGroups        = "grupos-atletas"
	pathEnrollments   = "inscripciones"
	pathAnthropometry = "pruebas-antropometricas"
	pathPhysicalTests = "pruebas-fisicas"
)

// Catalog groups every primary-service collection with its extra actions.
type Catalog struct {
	Athletes      *Resource[Record]
	Coaches       *Resource[Record]
	Students      *Resource[Record]
	Groups        *Resource[Record]
	Enrollments   *Resource[Record]
	Anthropometry *Resource[Record]
	PhysicalTests *Resource[Record]
}

// NewCatalog binds every collection to client.
func NewCatalog(client *gateway.Client) *Catalog {
	return &Catalog{
		Athletes:      NewResource[Record](client, "Athlete", pathAthletes),
		Coaches:       NewResource[Record](client, "Coach", pathCoaches),
		Students:      NewResource[Record](client, "Student", pathStudents),
		Groups:        NewResource[Record](client, "Group", pathGroups),
		Enrollments:   NewResource[Record](client, "Enrollment", pathEnrollments),
		Anthropometry: NewResource[Record](client, "Anthropometric test", pathAnthropometry),
		PhysicalTests: NewResource[Record](client, "Physical test", pathPhysicalTests),
	}
}

// SearchAthletes runs the athlete search with free-form criteria.
func (c *Catalog) SearchAthletes(ctx context.Context, creds gateway.Credentials, criteria url.Values) ([]Record, error) {
	page, err := c.Athletes.ListAt(ctx, creds, "buscar", criteria)
	return page.Items, err
}

// CoachGroups lists the groups assigned to a coach.
func (c *Catalog) CoachGroups(ctx context.Context, creds gateway.Credentials, coachID string) ([]Record, error) {
	page, err := c.Coaches.ListAt(ctx, creds, url.PathEscape(coachID)+"/grupos", nil)
	return page.Items, err
}

// AssignGroupToCoach assigns a group to a coach.
func (c *Catalog) AssignGroupToCoach(ctx context.Context, creds gateway.Credentials, coachID, groupID string) (json.RawMessage, error) {
	return c.Coaches.Action(ctx, creds, url.PathEscape(coachID)+"/asignar-grupo/"+url.PathEscape(groupID), nil)
}

// StudentsByCareer filters vinculation students by career.
func (c *Catalog) StudentsByCareer(ctx context.Context, creds gateway.Credentials, career string) ([]Record, error) {
	page, err := c.Students.ListAt(ctx, creds, "", url.Values{"carrera": {career}})
	return page.Items, err
}

// GroupAthletes lists the athletes of a group.
func (c *Catalog) GroupAthletes(ctx context.Context, creds gateway.Credentials, groupID string) ([]Record, error) {
	page, err := c.Groups.ListAt(ctx, creds, url.PathEscape(groupID)+"/atletas", nil)
	return page.Items, err
}

// AssignAthletes adds athletes to a group.
func (c *Catalog) AssignAthletes(ctx context.Context, creds gateway.Credentials, groupID string, athleteIDs []json.Number) (json.RawMessage, error) {
	body := map[string]any{"atletas": athleteIDs}
	return c.Groups.Action(ctx, creds, url.PathEscape(groupID)+"/asignar_atletas", body)
}

// SetEnrollmentEnabled enables or disables an enrollment.
func (c *Catalog) SetEnrollmentEnabled(ctx context.Context, creds gateway.Credentials, enrollmentID string, enabled bool) (json.RawMessage, error) {
	action := "deshabilitar"
	if enabled {
		action = "habilitar"
	}
	return c.Enrollments.Action(ctx, creds, url.PathEscape(enrollmentID)+"/"+action, nil)
}

// AthleteAnthropometry lists the anthropometric tests of one athlete.
func (c *Catalog) AthleteAnthropometry(ctx context.Context, creds gateway.Credentials, athleteID string) ([]Record, error) {
	page, err := c.Anthropometry.ListAt(ctx, creds, "atleta/"+url.PathEscape(athleteID), nil)
	return page.Items, err
}

// AthletePhysicalTests lists the physical tests of one athlete.
func (c *Catalog) AthletePhysicalTests(ctx context.Context, creds gateway.Credentials, athleteID string) ([]Record, error) {
	page, err := c.PhysicalTests.ListAt(ctx, creds, "atleta/"+url.PathEscape(athleteID), nil)
	return page.Items, err
}

// PhysicalTestsByType lists physical tests of one type.
func (c *Catalog) PhysicalTestsByType(ctx context.Context, creds gateway.Credentials, testType string) ([]Record, error) {
	page, err := c.PhysicalTests.ListAt(ctx, creds, "tipo/"+url.PathEscape(testType), nil)
	return page.Items, err
}
