// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "github.com/taibuivan/courtside/pkg/textnorm"

// # User Roles

// Role represents the authorization level granted to the logged-in principal.
type Role string

const (
	// Program administration staff; unrestricted access.
	RoleAdmin Role = "ADMIN"

	// Faculty coaching athletes and groups.
	RoleCoach Role = "COACH"

	// Vinculation students assisting with measurements.
	RoleStudent Role = "STUDENT"

	// University workers.
	RoleWorker Role = "WORKER"

	// External collaborators.
	RoleExternal Role = "EXTERNAL"

	// Authenticated principal without a derivable role.
	RoleGuest Role = "GUEST"
)

// Roles lists every known role in declaration order.
var Roles = []Role{RoleAdmin, RoleCoach, RoleStudent, RoleWorker, RoleExternal, RoleGuest}

// roleAliases accepts the role names the identity service and the legacy
// client emit alongside the canonical ones.
var roleAliases = map[string]Role{
	"ADMIN":                  RoleAdmin,
	"ADMINISTRADOR":          RoleAdmin,
	"COACH":                  RoleCoach,
	"DOCENTE":                RoleCoach,
	"ENTRENADOR":             RoleCoach,
	"STUDENT":                RoleStudent,
	"ESTUDIANTE":             RoleStudent,
	"ESTUDIANTE_VINCULACION": RoleStudent,
	"PASANTE":                RoleStudent,
	"WORKER":                 RoleWorker,
	"TRABAJADOR":             RoleWorker,
	"EXTERNAL":               RoleExternal,
	"EXTERNO":                RoleExternal,
	"GUEST":                  RoleGuest,
}

// ParseRole resolves a role name (canonical or alias, any case).
func ParseRole(value string) (Role, bool) {
	role, ok := roleAliases[textnorm.Key(value)]
	return role, ok
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// # Statement Types

// Statement is the identity service's classification of a person
// ("type_stament" on the wire).
type Statement string

const (
	StatementAdminStaff Statement = "ADMINISTRATIVOS"
	StatementFaculty    Statement = "DOCENTES"
	StatementStudent    Statement = "ESTUDIANTES"
	StatementWorker     Statement = "TRABAJADORES"
	StatementExternal   Statement = "EXTERNOS"
)

// statementRoles is the fixed statement → role table.
var statementRoles = map[Statement]Role{
	StatementAdminStaff: RoleAdmin,
	StatementFaculty:    RoleCoach,
	StatementStudent:    RoleStudent,
	StatementWorker:     RoleWorker,
	StatementExternal:   RoleExternal,
}

// ParseStatement normalizes a raw classification value.
func ParseStatement(value string) (Statement, bool) {
	statement := Statement(textnorm.Key(value))
	_, ok := statementRoles[statement]
	return statement, ok
}

// MapStatementToRole maps a statement classification through the fixed table.
// Unknown or empty values report false.
func MapStatementToRole(value string) (Role, bool) {
	statement, ok := ParseStatement(value)
	if !ok {
		return "", false
	}
	return statementRoles[statement], true
}

// StatementForRole returns the statement a new person should carry for a role.
// Profiles created for coaches are faculty; everything else is a student.
func StatementForRole(role Role) Statement {
	if role == RoleCoach {
		return StatementFaculty
	}
	return StatementStudent
}

// # Role Derivation

// SourceKind discriminates the closed set of inputs a role can be derived from.
type SourceKind int

const (
	// SourceNone means no claim carried role information.
	SourceNone SourceKind = iota
	// SourceExplicitRole means a recognised "role" claim was present.
	SourceExplicitRole
	// SourceStatement means only a statement classification was present.
	SourceStatement
)

// RoleSource is a tagged union over the role-bearing claim shapes.
type RoleSource struct {
	Kind      SourceKind
	Role      Role
	Statement string
}

// ExplicitRole builds a [SourceExplicitRole] source.
func ExplicitRole(role Role) RoleSource {
	return RoleSource{Kind: SourceExplicitRole, Role: role}
}

// FromStatement builds a [SourceStatement] source.
func FromStatement(value string) RoleSource {
	return RoleSource{Kind: SourceStatement, Statement: value}
}

// NoRole builds a [SourceNone] source.
func NoRole() RoleSource {
	return RoleSource{Kind: SourceNone}
}

// Derive returns the role for a source. It is total: every kind has a branch
// and the GUEST fallback is explicit.
func (s RoleSource) Derive() Role {
	switch s.Kind {
	case SourceExplicitRole:
		return s.Role
	case SourceStatement:
		if role, ok := MapStatementToRole(s.Statement); ok {
			return role
		}
		return RoleGuest
	case SourceNone:
		return RoleGuest
	default:
		return RoleGuest
	}
}

// statementClaimKeys are the claim names the identity service has used for
// the statement classification, misspelling included.
var statementClaimKeys = []string{"stament", "statement", "type_stament"}

// SourceFromClaims classifies a claim set into a [RoleSource].
func SourceFromClaims(claims map[string]any) RoleSource {
	// A present role claim is authoritative even when unrecognised; it never
	// falls through to the statement.
	if raw, ok := claims["role"].(string); ok && raw != "" {
		role, known := ParseRole(raw)
		if !known {
			role = RoleGuest
		}
		return ExplicitRole(role)
	}

	for _, key := range statementClaimKeys {
		if raw, ok := claims[key].(string); ok && raw != "" {
			return FromStatement(raw)
		}
	}

	return NoRole()
}
