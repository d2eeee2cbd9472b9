// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns owned by this service.
package schema

// ReconcileSagaTable represents the 'reconcile.saga' table
type ReconcileSagaTable struct {
	Table          string
	ID             string
	Kind           string
	State          string
	FailedAt       string
	Identification string
	Email          string
	ExternalID     string
	ProfileID      string
	ErrorCode      string
	ErrorMessage   string
	RequestID      string
	CreatedAt      string
	UpdatedAt      string
}

// ReconcileSaga is the schema definition for reconcile.saga
var ReconcileSaga = ReconcileSagaTable{
	Table:          "reconcile.saga",
	ID:             "id",
	Kind:           "kind",
	State:          "state",
	FailedAt:       "failedat",
	Identification: "identification",
	Email:          "email",
	ExternalID:     "externalid",
	ProfileID:      "profileid",
	ErrorCode:      "errorcode",
	ErrorMessage:   "errormessage",
	RequestID:      "requestid",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

func (t ReconcileSagaTable) Columns() []string {
	return []string{
		t.ID, t.Kind, t.State, t.FailedAt, t.Identification, t.Email, t.ExternalID,
		t.ProfileID, t.ErrorCode, t.ErrorMessage, t.RequestID, t.CreatedAt, t.UpdatedAt,
	}
}
