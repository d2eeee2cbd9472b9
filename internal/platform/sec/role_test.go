// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/courtside/internal/platform/sec"
)

/*
TestMapStatementToRole verifies the fixed statement table, including case and
accent folding.
*/
func TestMapStatementToRole(t *testing.T) {
	tests := []struct {
		input string
		role  sec.Role
		ok    bool
	}{
		{"ADMINISTRATIVOS", sec.RoleAdmin, true},
		{"DOCENTES", sec.RoleCoach, true},
		{"docentes", sec.RoleCoach, true},
		{"Estudiantes", sec.RoleStudent, true},
		{"TRABAJADORES", sec.RoleWorker, true},
		{" externos ", sec.RoleExternal, true},
		{"Administratívos", sec.RoleAdmin, true},
		{"unknown", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			role, ok := sec.MapStatementToRole(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.role, role)
		})
	}
}

/*
TestParseRole covers canonical names and the legacy aliases.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		role  sec.Role
		ok    bool
	}{
		{"ADMIN", sec.RoleAdmin, true},
		{"coach", sec.RoleCoach, true},
		{"DOCENTE", sec.RoleCoach, true},
		{"ENTRENADOR", sec.RoleCoach, true},
		{"ESTUDIANTE", sec.RoleStudent, true},
		{"estudiante-vinculacion", sec.RoleStudent, true},
		{"TRABAJADOR", sec.RoleWorker, true},
		{"EXTERNO", sec.RoleExternal, true},
		{"GUEST", sec.RoleGuest, true},
		{"SUPERUSER", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			role, ok := sec.ParseRole(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.role, role)
		})
	}
}

/*
TestRoleSource_Derive checks every branch of the union, including the GUEST fallback.
*/
func TestRoleSource_Derive(t *testing.T) {
	assert.Equal(t, sec.RoleAdmin, sec.ExplicitRole(sec.RoleAdmin).Derive())
	assert.Equal(t, sec.RoleCoach, sec.FromStatement("DOCENTES").Derive())
	assert.Equal(t, sec.RoleGuest, sec.FromStatement("VISITANTES").Derive())
	assert.Equal(t, sec.RoleGuest, sec.NoRole().Derive())
	assert.Equal(t, sec.RoleGuest, sec.RoleSource{Kind: sec.SourceKind(99)}.Derive())
}

/*
TestSourceFromClaims verifies precedence: a present role claim, then statement, then none.
*/
func TestSourceFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		kind   sec.SourceKind
		role   sec.Role
	}{
		{"explicit_wins", map[string]any{"role": "ADMIN", "stament": "DOCENTES"}, sec.SourceExplicitRole, sec.RoleAdmin},
		{"statement_only", map[string]any{"stament": "DOCENTES"}, sec.SourceStatement, sec.RoleCoach},
		{"statement_spelled", map[string]any{"statement": "ESTUDIANTES"}, sec.SourceStatement, sec.RoleStudent},
		{"unknown_role_is_guest", map[string]any{"role": "SUPERVISOR", "stament": "ADMINISTRATIVOS"}, sec.SourceExplicitRole, sec.RoleGuest},
		{"empty_role_uses_statement", map[string]any{"role": "", "stament": "EXTERNOS"}, sec.SourceStatement, sec.RoleExternal},
		{"role_not_string", map[string]any{"role": 7}, sec.SourceNone, sec.RoleGuest},
		{"nothing", map[string]any{"sub": "x"}, sec.SourceNone, sec.RoleGuest},
		{"nil", nil, sec.SourceNone, sec.RoleGuest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := sec.SourceFromClaims(tt.claims)
			assert.Equal(t, tt.kind, source.Kind)
			assert.Equal(t, tt.role, source.Derive())
		})
	}
}

func TestStatementForRole(t *testing.T) {
	assert.Equal(t, sec.StatementFaculty, sec.StatementForRole(sec.RoleCoach))
	assert.Equal(t, sec.StatementStudent, sec.StatementForRole(sec.RoleStudent))
}
