// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package guard

import "github.com/taibuivan/courtside/internal/platform/sec"

// Section names the guarded subtrees of the admin application. Page paths
// and API paths share these rules.
type Section string

const (
	SectionAthletes       Section = "atletas"
	SectionCoaches        Section = "entrenadores"
	SectionStudents       Section = "estudiantes-vinculacion"
	SectionGroups         Section = "grupos"
	SectionGroupAthletes  Section = "grupo-atletas"
	SectionEnrollments    Section = "inscripciones"
	SectionAnthropometric Section = "pruebas-antropometricas"
	SectionPhysical       Section = "pruebas-fisicas"
	SectionReconciliation Section = "reconciliacion"
)

var (
	staff        = Roles(sec.RoleAdmin, sec.RoleCoach)
	measurements = Roles(sec.RoleAdmin, sec.RoleCoach, sec.RoleStudent)
	adminOnly    = Roles(sec.RoleAdmin)
)

// routeTable is the rule set per section, nested under the root rule
// (any authenticated principal).
var routeTable = map[Section]Rule{
	SectionAthletes:       measurements,
	SectionAnthropometric: measurements,
	SectionPhysical:       measurements,
	SectionCoaches:        adminOnly,
	SectionStudents:       adminOnly,
	SectionReconciliation: adminOnly,
	SectionGroups:         staff,
	SectionGroupAthletes:  staff,
	SectionEnrollments:    staff,
}

// Sections lists every guarded section.
func Sections() []Section {
	return []Section{
		SectionAthletes, SectionCoaches, SectionStudents, SectionGroups, SectionGroupAthletes,
		SectionEnrollments, SectionAnthropometric, SectionPhysical, SectionReconciliation,
	}
}

// RuleFor returns the rule of a section. Unknown sections only require
// authentication.
func RuleFor(section Section) Rule {
	if rule, ok := routeTable[section]; ok {
		return rule
	}
	return Authenticated
}
