// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// # Wire Envelope

// Envelope is the response wrapper of every identity-service endpoint.
// Data stays raw until an endpoint-specific schema decodes it.
type Envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Token   string          `json:"token"`
}

// OK reports whether the service declared success.
func (e Envelope) OK() bool {
	return strings.EqualFold(e.Status, "success")
}

// HasData reports whether data is present and not null.
func (e Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// # Requests

// Account is the save-account request body. It creates a person together
// with its login credential.
type Account struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Identification     string `json:"identification"`
	IdentificationType string `json:"type_identification"`
	Statement          string `json:"type_stament"`
	Address            string `json:"direction"`
	Phone              string `json:"phono"`
	Email              string `json:"email"`
	Password           string `json:"password"`
}

// PersonUpdate is the update request body. Credentials are not part of it.
type PersonUpdate struct {
	ExternalID         string `json:"external"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Identification     string `json:"identification"`
	IdentificationType string `json:"type_identification"`
	Statement          string `json:"type_stament"`
	Address            string `json:"direction"`
	Phone              string `json:"phono"`
}

// IdentificationCedula is the only identification type the admin application issues.
const IdentificationCedula = "CEDULA"

// # Person

// Person is the canonical identity record used by the rest of the application.
type Person struct {
	ExternalID         string `json:"external_id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Identification     string `json:"identification"`
	IdentificationType string `json:"type_identification"`
	Statement          string `json:"type_stament"`
	Email              string `json:"email"`
	Phone              string `json:"phono"`
	Address            string `json:"direction"`
	Photo              string `json:"photo"`
}

// rawPerson accepts every field spelling the service has been seen to use.
type rawPerson struct {
	External           string          `json:"external"`
	ExternalID         string          `json:"external_id"`
	ID                 json.RawMessage `json:"id"`
	FirstName          string          `json:"first_name"`
	FirtsName          string          `json:"firts_name"`
	LastName           string          `json:"last_name"`
	Identification     string          `json:"identification"`
	IdentificationType string          `json:"type_identification"`
	Statement          string          `json:"type_stament"`
	Email              string          `json:"email"`
	Phone              string          `json:"phono"`
	Address            string          `json:"direction"`
	Photo              string          `json:"photo"`
}

// NormalizePerson decodes one person record into the canonical shape. The
// misspelled "firts_name" is accepted, and the identifier is taken from
// "external_id", "external" or "id", in that order. NormalizePerson is
// idempotent: feeding it a marshalled [Person] yields the same [Person].
func NormalizePerson(data json.RawMessage) (Person, error) {
	var raw rawPerson
	if err := json.Unmarshal(data, &raw); err != nil {
		return Person{}, fmt.Errorf("identity_person_decode_failed: %w", err)
	}

	firstName := raw.FirstName
	if firstName == "" {
		firstName = raw.FirtsName
	}

	return Person{
		ExternalID:         firstNonEmpty(raw.ExternalID, raw.External, idString(raw.ID)),
		FirstName:          strings.TrimSpace(firstName),
		LastName:           strings.TrimSpace(raw.LastName),
		Identification:     strings.TrimSpace(raw.Identification),
		IdentificationType: raw.IdentificationType,
		Statement:          raw.Statement,
		Email:              strings.TrimSpace(raw.Email),
		Phone:              strings.TrimSpace(raw.Phone),
		Address:            strings.TrimSpace(raw.Address),
		Photo:              raw.Photo,
	}, nil
}

// NormalizePeople decodes a list of person records. Entries that fail to
// decode are skipped.
func NormalizePeople(data json.RawMessage) ([]Person, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("identity_people_decode_failed: %w", err)
	}

	people := make([]Person, 0, len(items))
	for _, item := range items {
		if person, err := NormalizePerson(item); err == nil {
			people = append(people, person)
		}
	}
	return people, nil
}

// idString renders a JSON string or number identifier.
func idString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return text
	}
	var number json.Number
	if json.Unmarshal(raw, &number) == nil {
		if n, err := number.Int64(); err == nil {
			return strconv.FormatInt(n, 10)
		}
		return number.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
