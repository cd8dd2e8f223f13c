package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/persistence"
)

type catalogHandler struct {
	service *application.CatalogService
	respond responder
}

type facultyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type professorResponse struct {
	ID        string  `json:"id"`
	FullName  string  `json:"full_name"`
	Email     string  `json:"email"`
	FacultyID *string `json:"faculty_id,omitempty"`
}

type courseResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	ProfessorID *string `json:"professor_id,omitempty"`
}

type periodResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PeriodType string    `json:"period_type"`
	StartsOn   time.Time `json:"starts_on"`
	EndsOn     time.Time `json:"ends_on"`
	IsActive   bool      `json:"is_active"`
}

func (h *catalogHandler) faculties(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		faculties, err := h.service.ListFaculties(req.Context())
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		responses := make([]facultyResponse, 0, len(faculties))
		for _, faculty := range faculties {
			responses = append(responses, facultyResponse{ID: faculty.ID, Name: faculty.Name, Code: faculty.Code})
		}
		h.respond.writeJSON(w, http.StatusOK, responses)
	case http.MethodPost:
		principal, ok := principalFrom(req.Context())
		if !ok {
			h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		var body struct {
			Name string `json:"name"`
			Code string `json:"code"`
		}
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		faculty, err := h.service.CreateFaculty(req.Context(), principal, application.FacultyParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusCreated, facultyResponse{ID: faculty.ID, Name: faculty.Name, Code: faculty.Code})
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *catalogHandler) facultyItem(w http.ResponseWriter, req *http.Request) {
	id, principal, ok := h.itemRequest(w, req, "/api/faculties/")
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodPut:
		var body struct {
			Name string `json:"name"`
			Code string `json:"code"`
		}
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		faculty, err := h.service.UpdateFaculty(req.Context(), principal, id, application.FacultyParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusOK, facultyResponse{ID: faculty.ID, Name: faculty.Name, Code: faculty.Code})
	case http.MethodDelete:
		h.remove(w, req, principal, id, h.service.DeleteFaculty)
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *catalogHandler) professors(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		professors, err := h.service.ListProfessors(req.Context())
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		responses := make([]professorResponse, 0, len(professors))
		for _, professor := range professors {
			responses = append(responses, professorResponse{
				ID: professor.ID, FullName: professor.FullName,
				Email: professor.Email, FacultyID: professor.FacultyID,
			})
		}
		h.respond.writeJSON(w, http.StatusOK, responses)
	case http.MethodPost:
		principal, ok := principalFrom(req.Context())
		if !ok {
			h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		var body struct {
			FullName  string  `json:"full_name"`
			Email     string  `json:"email"`
			FacultyID *string `json:"faculty_id,omitempty"`
		}
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		professor, err := h.service.CreateProfessor(req.Context(), principal, application.ProfessorParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusCreated, professorResponse{
			ID: professor.ID, FullName: professor.FullName,
			Email: professor.Email, FacultyID: professor.FacultyID,
		})
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *catalogHandler) professorItem(w http.ResponseWriter, req *http.Request) {
	id, principal, ok := h.itemRequest(w, req, "/api/professors/")
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodPut:
		var body struct {
			FullName  string  `json:"full_name"`
			Email     string  `json:"email"`
			FacultyID *string `json:"faculty_id,omitempty"`
		}
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		professor, err := h.service.UpdateProfessor(req.Context(), principal, id, application.ProfessorParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusOK, professorResponse{
			ID: professor.ID, FullName: professor.FullName,
			Email: professor.Email, FacultyID: professor.FacultyID,
		})
	case http.MethodDelete:
		h.remove(w, req, principal, id, h.service.DeleteProfessor)
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *catalogHandler) courses(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		courses, err := h.service.ListCourses(req.Context())
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		responses := make([]courseResponse, 0, len(courses))
		for _, course := range courses {
			responses = append(responses, courseResponse{
				ID: course.ID, Name: course.Name, Code: course.Code, ProfessorID: course.ProfessorID,
			})
		}
		h.respond.writeJSON(w, http.StatusOK, responses)
	case http.MethodPost:
		principal, ok := principalFrom(req.Context())
		if !ok {
			h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		var body struct {
			Name        string  `json:"name"`
			Code        string  `json:"code"`
			ProfessorID *string `json:"professor_id,omitempty"`
		}
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		course, err := h.service.CreateCourse(req.Context(), principal, application.CourseParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusCreated, courseResponse{
			ID: course.ID, Name: course.Name, Code: course.Code, ProfessorID: course.ProfessorID,
		})
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *catalogHandler) courseItem(w http.ResponseWriter, req *http.Request) {
	id, principal, ok := h.itemRequest(w, req, "/api/courses/")
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodPut:
		var body struct {
			Name        string  `json:"name"`
			Code        string  `json:"code"`
			ProfessorID *string `json:"professor_id,omitempty"`
		}
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		course, err := h.service.UpdateCourse(req.Context(), principal, id, application.CourseParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusOK, courseResponse{
			ID: course.ID, Name: course.Name, Code: course.Code, ProfessorID: course.ProfessorID,
		})
	case http.MethodDelete:
		h.remove(w, req, principal, id, h.service.DeleteCourse)
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *catalogHandler) periods(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		activeOnly := req.URL.Query().Get("active") == "true"
		periods, err := h.service.ListAcademicPeriods(req.Context(), activeOnly)
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		responses := make([]periodResponse, 0, len(periods))
		for _, period := range periods {
			responses = append(responses, toPeriodResponse(period))
		}
		h.respond.writeJSON(w, http.StatusOK, responses)
	case http.MethodPost:
		principal, ok := principalFrom(req.Context())
		if !ok {
			h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		var body struct {
			Name       string    `json:"name"`
			PeriodType string    `json:"period_type,omitempty"`
			StartsOn   time.Time `json:"starts_on"`
			EndsOn     time.Time `json:"ends_on"`
			IsActive   bool      `json:"is_active,omitempty"`
		}
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		period, err := h.service.CreateAcademicPeriod(req.Context(), principal, application.AcademicPeriodParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusCreated, toPeriodResponse(period))
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *catalogHandler) periodItem(w http.ResponseWriter, req *http.Request) {
	id, principal, ok := h.itemRequest(w, req, "/api/periods/")
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodPut:
		var body struct {
			Name       string    `json:"name"`
			PeriodType string    `json:"period_type,omitempty"`
			StartsOn   time.Time `json:"starts_on"`
			EndsOn     time.Time `json:"ends_on"`
			IsActive   bool      `json:"is_active,omitempty"`
		}
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		period, err := h.service.UpdateAcademicPeriod(req.Context(), principal, id, application.AcademicPeriodParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusOK, toPeriodResponse(period))
	case http.MethodDelete:
		h.remove(w, req, principal, id, h.service.DeleteAcademicPeriod)
	default:
		h.respond.methodNotAllowed(w)
	}
}

// itemRequest extracts the id from the path and the principal from the
// context, writing the error response itself when either is missing.
func (h *catalogHandler) itemRequest(w http.ResponseWriter, req *http.Request, prefix string) (string, application.Principal, bool) {
	id := strings.TrimPrefix(req.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		h.respond.writeError(w, http.StatusNotFound, "not found")
		return "", application.Principal{}, false
	}
	principal, ok := principalFrom(req.Context())
	if !ok {
		h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
		return "", application.Principal{}, false
	}
	return id, principal, true
}

func (h *catalogHandler) remove(w http.ResponseWriter, req *http.Request,
	principal application.Principal, id string,
	remove func(ctx context.Context, principal application.Principal, id string) error) {
	if err := remove(req.Context(), principal, id); err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}
	h.respond.writeJSON(w, http.StatusNoContent, nil)
}

func toPeriodResponse(period persistence.AcademicPeriod) periodResponse {
	return periodResponse{
		ID: period.ID, Name: period.Name, PeriodType: period.PeriodType,
		StartsOn: period.StartsOn, EndsOn: period.EndsOn, IsActive: period.IsActive,
	}
}
