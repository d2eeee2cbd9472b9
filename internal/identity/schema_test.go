// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/courtside/internal/identity"
)

/*
TestNormalizePerson_SpellingVariants checks that the misspelled and the
correctly spelled first-name field produce the same person.
*/
func TestNormalizePerson_SpellingVariants(t *testing.T) {
	misspelled := `{"firts_name":"Ana","last_name":"Loja","external":"ext-1","identification":"1710034065",
		"email":"ana@unl.edu.ec","phono":"0991234567","direction":"Loja","type_stament":"DOCENTES","type_identification":"CEDULA"}`
	spelled := `{"first_name":"Ana","last_name":"Loja","external_id":"ext-1","identification":"1710034065",
		"email":"ana@unl.edu.ec","phono":"0991234567","direction":"Loja","type_stament":"DOCENTES","type_identification":"CEDULA"}`

	a, err := identity.NormalizePerson(json.RawMessage(misspelled))
	require.NoError(t, err)
	b, err := identity.NormalizePerson(json.RawMessage(spelled))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "Ana", a.FirstName)
	assert.Equal(t, "ext-1", a.ExternalID)
	assert.Equal(t, "0991234567", a.Phone)
}

/*
TestNormalizePerson_Idempotent feeds a normalized person back through the
normalizer.
*/
func TestNormalizePerson_Idempotent(t *testing.T) {
	inputs := []string{
		`{"firts_name":" Luis ","last_name":"Paz","id":42,"email":"l@p.ec"}`,
		`{"first_name":"Eva","external":"e-9","photo":"p.png"}`,
		`{"first_name":"Zoe","id":"z-1","external":"","external_id":""}`,
		`{}`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once, err := identity.NormalizePerson(json.RawMessage(input))
			require.NoError(t, err)

			encoded, err := json.Marshal(once)
			require.NoError(t, err)

			twice, err := identity.NormalizePerson(encoded)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestNormalizePerson_IdentifierPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"external_id_first", `{"external_id":"a","external":"b","id":"c"}`, "a"},
		{"external_second", `{"external":"b","id":"c"}`, "b"},
		{"numeric_id", `{"id":17}`, "17"},
		{"string_id", `{"id":"c"}`, "c"},
		{"none", `{"first_name":"x"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			person, err := identity.NormalizePerson(json.RawMessage(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, person.ExternalID)
		})
	}
}

func TestNormalizePerson_Malformed(t *testing.T) {
	_, err := identity.NormalizePerson(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestNormalizePeople_SkipsBadEntries(t *testing.T) {
	people, err := identity.NormalizePeople(json.RawMessage(`[{"first_name":"A","external":"1"}, 5, {"firts_name":"B","id":2}]`))
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "B", people[1].FirstName)
	assert.Equal(t, "2", people[1].ExternalID)
}

func TestRejectionMessage(t *testing.T) {
	env := identity.Envelope{
		Message: "Datos inválidos",
		Errors:  json.RawMessage(`{"phono":"requerido","email":["formato","vacío"]}`),
	}
	assert.Equal(t, "Datos inválidos - email: formato vacío, phono: requerido", identity.RejectionMessage(env))
	assert.Equal(t, "solo", identity.RejectionMessage(identity.Envelope{Message: "solo"}))
}
