// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/courtside/internal/gateway"
	"github.com/taibuivan/courtside/internal/guard"
	"github.com/taibuivan/courtside/internal/identity"
	"github.com/taibuivan/courtside/internal/platform/apperr"
	requestutil "github.com/taibuivan/courtside/internal/platform/request"
	"github.com/taibuivan/courtside/internal/platform/respond"
	"github.com/taibuivan/courtside/internal/reconcile"
	"github.com/taibuivan/courtside/pkg/pagination"
)

// Reconciler creates and edits the identity side of coaches and students.
// *reconcile.Service satisfies it.
type Reconciler interface {
	CreatePersonThenProfile(ctx context.Context, creds gateway.Credentials, person reconcile.PersonFields, profile reconcile.ProfileSpec) (*reconcile.Saga, error)
	UpdatePerson(ctx context.Context, externalID string, fields reconcile.MutableFields) (identity.Person, error)
	ResolveByExternalID(ctx context.Context, externalID string) (identity.Person, error)
	People(ctx context.Context) ([]identity.Person, error)
	IdentificationTaken(ctx context.Context, identification string) (bool, error)
}

// Handler serves the roster API.
type Handler struct {
	catalog    *Catalog
	enricher   *Enricher
	reconciler Reconciler
	guard      guard.Options
}

func NewHandler(catalog *Catalog, enricher *Enricher, reconciler Reconciler, opts guard.Options) *Handler {
	return &Handler{catalog: catalog, enricher: enricher, reconciler: reconciler, guard: opts}
}

// RegisterRoutes mounts every collection, each behind its section rule.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	handler.section(router, "/atletas", guard.SectionAthletes, func(r chi.Router) {
		athletes := collection{resource: handler.catalog.Athletes}
		r.Get("/buscar", handler.searchAthletes)
		athletes.mount(r)
	})

	handler.section(router, "/entrenadores", guard.SectionCoaches, func(r chi.Router) {
		coaches := collection{resource: handler.catalog.Coaches, enricher: handler.enricher}
		r.Get("/", coaches.list)
		r.Post("/", handler.createCoach)
		r.Get("/{id}", coaches.get)
		r.Put("/{id}", handler.updateCoach)
		r.Delete("/{id}", coaches.remove)
		r.Put("/{id}/persona", handler.updatePerson(handler.catalog.Coaches, reconcile.KindCoach))
		r.Get("/{id}/grupos", handler.coachGroups)
		r.Post("/{id}/asignar-grupo/{groupID}", handler.assignGroup)
	})

	handler.section(router, "/estudiantes-vinculacion", guard.SectionStudents, func(r chi.Router) {
		students := collection{resource: handler.catalog.Students, enricher: handler.enricher}
		r.Get("/", handler.listStudents(students))
		r.Post("/", handler.createStudent)
		r.Get("/{id}", students.get)
		r.Put("/{id}", handler.updateStudent)
		r.Delete("/{id}", students.remove)
		r.Put("/{id}/persona", handler.updatePerson(handler.catalog.Students, reconcile.KindStudent))
	})

	handler.section(router, "/grupos", guard.SectionGroups, func(r chi.Router) {
		groups := collection{resource: handler.catalog.Groups}
		groups.mount(r)
		r.Get("/{id}/atletas", handler.groupAthletes)
		r.Post("/{id}/asignar_atletas", handler.assignAthletes)
	})

	handler.section(router, "/inscripciones", guard.SectionEnrollments, func(r chi.Router) {
		enrollments := collection{resource: handler.catalog.Enrollments}
		enrollments.mount(r)
		r.Post("/{id}/habilitar", handler.setEnrollment(true))
		r.Post("/{id}/deshabilitar", handler.setEnrollment(false))
	})

	handler.section(router, "/pruebas-antropometricas", guard.SectionAnthropometric, func(r chi.Router) {
		tests := collection{resource: handler.catalog.Anthropometry}
		r.Get("/atleta/{athleteID}", handler.athleteTests(handler.catalog.AthleteAnthropometry))
		tests.mount(r)
	})

	handler.section(router, "/pruebas-fisicas", guard.SectionPhysical, func(r chi.Router) {
		tests := collection{resource: handler.catalog.PhysicalTests}
		r.Get("/atleta/{athleteID}", handler.athleteTests(handler.catalog.AthletePhysicalTests))
		r.Get("/tipo/{type}", handler.physicalTestsByType)
		tests.mount(r)
	})

	handler.section(router, "/personas", guard.SectionReconciliation, func(r chi.Router) {
		r.Get("/", handler.listPeople)
		r.Get("/existe/{identification}", handler.identificationExists)
		r.Get("/{externalID}", handler.getPerson)
	})
}

func (handler *Handler) section(router chi.Router, pattern string, section guard.Section, routes func(chi.Router)) {
	router.Route(pattern, func(r chi.Router) {
		r.Use(guard.Require(guard.RuleFor(section), handler.guard))
		routes(r)
	})
}

// # Generic Collection

// collection serves CRUD over one resource, optionally enriching rows.
type collection struct {
	resource *Resource[Record]
	enricher *Enricher
}

func (c collection) mount(r chi.Router) {
	r.Get("/", c.list)
	r.Post("/", c.create)
	r.Get("/{id}", c.get)
	r.Put("/{id}", c.update)
	r.Delete("/{id}", c.remove)
}

func (c collection) list(writer http.ResponseWriter, request *http.Request) {
	store, err := requestutil.Session(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	page, err := c.resource.List(request.Context(), store, params, forwardedFilters(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items := page.Items
	if c.enricher != nil {
		items = c.enricher.Enrich(request.Context(), items)
	}

	if params.IsZero() {
		respond.OK(writer, items)
		return
	}
	respond.Paginated(writer, items, pagination.NewMeta(params.Page, params.Limit, page.Total))
}

func (c collection) get(writer http.ResponseWriter, request *http.Request) {
	store, id, err := sessionAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := c.resource.Get(request.Context(), store, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if c.enricher != nil {
		record = c.enricher.EnrichOne(request.Context(), record)
	}
	respond.OK(writer, record)
}

func (c collection) create(writer http.ResponseWriter, request *http.Request) {
	store, err := requestutil.Session(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body Record
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := c.resource.Create(request.Context(), store, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, record)
}

func (c collection) update(writer http.ResponseWriter, request *http.Request) {
	store, id, err := sessionAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body Record
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := c.resource.Update(request.Context(), store, id, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (c collection) remove(writer http.ResponseWriter, request *http.Request) {
	store, id, err := sessionAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := c.resource.Delete(request.Context(), store, id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Coaches and Students

type coachForm struct {
	reconcile.PersonFields
	reconcile.CoachProfile
}

type studentForm struct {
	reconcile.PersonFields
	reconcile.StudentProfile
}

func (handler *Handler) createCoach(writer http.ResponseWriter, request *http.Request) {
	var form coachForm
	if err := requestutil.DecodeJSON(writer, request, &form); err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.create(writer, request, form.PersonFields, reconcile.ProfileSpec{Kind: reconcile.KindCoach, Coach: form.CoachProfile})
}

func (handler *Handler) createStudent(writer http.ResponseWriter, request *http.Request) {
	var form studentForm
	if err := requestutil.DecodeJSON(writer, request, &form); err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.create(writer, request, form.PersonFields, reconcile.ProfileSpec{Kind: reconcile.KindStudent, Student: form.StudentProfile})
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request, person reconcile.PersonFields, profile reconcile.ProfileSpec) {
	store, err := requestutil.Session(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	saga, err := handler.reconciler.CreatePersonThenProfile(request.Context(), store, person, profile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, saga)
}

// listStudents narrows the list to one career when ?carrera= is given.
func (handler *Handler) listStudents(students collection) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		career := request.URL.Query().Get("carrera")
		if career == "" {
			students.list(writer, request)
			return
		}

		store, err := requestutil.Session(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		rows, err := handler.catalog.StudentsByCareer(request.Context(), store, career)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		if handler.enricher != nil {
			rows = handler.enricher.Enrich(request.Context(), rows)
		}
		respond.OK(writer, rows)
	}
}

// updateCoach edits the coach profile only; person fields go through /persona.
func (handler *Handler) updateCoach(writer http.ResponseWriter, request *http.Request) {
	var profile reconcile.CoachProfile
	if err := requestutil.DecodeJSON(writer, request, &profile); err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.updateProfile(writer, request, handler.catalog.Coaches, profile)
}

// updateStudent edits the student profile only; person fields go through /persona.
func (handler *Handler) updateStudent(writer http.ResponseWriter, request *http.Request) {
	var profile reconcile.StudentProfile
	if err := requestutil.DecodeJSON(writer, request, &profile); err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.updateProfile(writer, request, handler.catalog.Students, profile)
}

func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request, resource *Resource[Record], body any) {
	store, id, err := sessionAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := resource.Update(request.Context(), store, id, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// updatePerson edits the identity person linked to a coach or student row.
func (handler *Handler) updatePerson(resource *Resource[Record], kind reconcile.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		store, id, err := sessionAndID(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		var fields reconcile.MutableFields
		if err := requestutil.DecodeJSON(writer, request, &fields); err != nil {
			respond.Error(writer, request, err)
			return
		}
		fields.Kind = kind

		row, err := resource.Get(request.Context(), store, id)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		externalID := row.String("persona_external")
		if externalID == "" {
			respond.Error(writer, request, apperr.Conflict(resource.Name()+" is not linked to a person"))
			return
		}

		person, err := handler.reconciler.UpdatePerson(request.Context(), externalID, fields)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		if handler.enricher != nil {
			handler.enricher.Forget(externalID)
		}
		respond.OK(writer, person)
	}
}

func (handler *Handler) coachGroups(writer http.ResponseWriter, request *http.Request) {
	store, id, err := sessionAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	groups, err := handler.catalog.CoachGroups(request.Context(), store, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, groups)
}

func (handler *Handler) assignGroup(writer http.ResponseWriter, request *http.Request) {
	store, id, err := sessionAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	groupID, err := requestutil.RequiredParam(request, "groupID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.catalog.AssignGroupToCoach(request.Context(), store, id, groupID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// # Athletes, Groups and Enrollments

func (handler *Handler) searchAthletes(writer http.ResponseWriter, request *http.Request) {
	store, err := requestutil.Session(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	athletes, err := handler.catalog.SearchAthletes(request.Context(), store, forwardedFilters(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, athletes)
}

func (handler *Handler) groupAthletes(writer http.ResponseWriter, request *http.Request) {
	store, id, err := sessionAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	athletes, err := handler.catalog.GroupAthletes(request.Context(), store, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, athletes)
}

func (handler *Handler) assignAthletes(writer http.ResponseWriter, request *http.Request) {
	store, id, err := sessionAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body struct {
		Athletes []json.Number `json:"atletas"`
	}
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if len(body.Athletes) == 0 {
		respond.Error(writer, request, apperr.ValidationError("At least one athlete is required",
			apperr.FieldError{Field: "atletas", Message: "This field is required"}))
		return
	}

	result, err := handler.catalog.AssignAthletes(request.Context(), store, id, body.Athletes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) setEnrollment(enabled bool) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		store, id, err := sessionAndID(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		result, err := handler.catalog.SetEnrollmentEnabled(request.Context(), store, id, enabled)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, result)
	}
}

// # Measurements

type athleteLister func(ctx context.Context, creds gateway.Credentials, athleteID string) ([]Record, error)

func (handler *Handler) athleteTests(list athleteLister) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		store, err := requestutil.Session(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		athleteID, err := requestutil.RequiredParam(request, "athleteID")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		tests, err := list(request.Context(), store, athleteID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, tests)
	}
}

func (handler *Handler) physicalTestsByType(writer http.ResponseWriter, request *http.Request) {
	store, err := requestutil.Session(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	testType, err := requestutil.RequiredParam(request, "type")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tests, err := handler.catalog.PhysicalTestsByType(request.Context(), store, testType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tests)
}

// # Persons

func (handler *Handler) getPerson(writer http.ResponseWriter, request *http.Request) {
	externalID, err := requestutil.RequiredParam(request, "externalID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	person, err := handler.reconciler.ResolveByExternalID(request.Context(), externalID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, person)
}

func (handler *Handler) listPeople(writer http.ResponseWriter, request *http.Request) {
	people, err := handler.reconciler.People(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, people)
}

// identificationExists lets the coach and student forms flag a duplicate
// national id before submitting.
func (handler *Handler) identificationExists(writer http.ResponseWriter, request *http.Request) {
	identification, err := requestutil.RequiredParam(request, "identification")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	taken, err := handler.reconciler.IdentificationTaken(request.Context(), identification)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]bool{"exists": taken})
}

// # Helpers

func sessionAndID(request *http.Request) (gateway.Credentials, string, error) {
	store, err := requestutil.Session(request)
	if err != nil {
		return nil, "", err
	}
	id, err := requestutil.RequiredParam(request, "id")
	if err != nil {
		return nil, "", err
	}
	return store, id, nil
}

// forwardedFilters passes query parameters through, minus the local paging keys.
func forwardedFilters(request *http.Request) url.Values {
	filters := url.Values{}
	for key, values := range request.URL.Query() {
		if key == "page" || key == "limit" {
			continue
		}
		filters[key] = values
	}
	return filters
}
