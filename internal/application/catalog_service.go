package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/campus-scheduler/internal/logging"
	"github.com/example/campus-scheduler/internal/persistence"
)

// CatalogService administers faculties, professors, courses, and academic
// periods. All writes are admin-only.
type CatalogService struct {
	faculties   persistence.FacultyRepository
	professors  persistence.ProfessorRepository
	courses     persistence.CourseRepository
	periods     persistence.AcademicPeriodRepository
	idGenerator func() string
	now         func() time.Time
}

func NewCatalogService(
	faculties persistence.FacultyRepository,
	professors persistence.ProfessorRepository,
	courses persistence.CourseRepository,
	periods persistence.AcademicPeriodRepository,
	idGenerator func() string,
	now func() time.Time,
) *CatalogService {
	return &CatalogService{
		faculties:   faculties,
		professors:  professors,
		courses:     courses,
		periods:     periods,
		idGenerator: idGenerator,
		now:         now,
	}
}

// FacultyParams carries faculty input.
type FacultyParams struct {
	Name string
	Code string
}

func (s *CatalogService) CreateFaculty(ctx context.Context, principal Principal, params FacultyParams) (faculty persistence.Faculty, err error) {
	defer s.logFailure(ctx, "create faculty", &err)

	if !principal.IsAdmin {
		return persistence.Faculty{}, fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	validation := NewValidationError()
	if params.Name == "" {
		validation.Add("name", "is required")
	}
	if params.Code == "" {
		validation.Add("code", "is required")
	}
	if err := validation.ErrOrNil(); err != nil {
		return persistence.Faculty{}, err
	}

	now := s.now()
	faculty = persistence.Faculty{
		ID: s.idGenerator(), Name: params.Name, Code: params.Code,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.faculties.CreateFaculty(ctx, faculty); err != nil {
		return persistence.Faculty{}, s.mapWriteError("faculty", params.Code, err)
	}
	return faculty, nil
}

func (s *CatalogService) UpdateFaculty(ctx context.Context, principal Principal, id string, params FacultyParams) (faculty persistence.Faculty, err error) {
	defer s.logFailure(ctx, "update faculty", &err)

	if !principal.IsAdmin {
		return persistence.Faculty{}, fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	faculty, err = s.faculties.GetFaculty(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Faculty{}, fmt.Errorf("faculty %s: %w", id, ErrNotFound)
		}
		return persistence.Faculty{}, fmt.Errorf("load faculty: %w", err)
	}

	faculty.Name = params.Name
	faculty.Code = params.Code
	faculty.UpdatedAt = s.now()
	if err := s.faculties.UpdateFaculty(ctx, faculty); err != nil {
		return persistence.Faculty{}, s.mapWriteError("faculty", params.Code, err)
	}
	return faculty, nil
}

func (s *CatalogService) ListFaculties(ctx context.Context) ([]persistence.Faculty, error) {
	faculties, err := s.faculties.ListFaculties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	return faculties, nil
}

func (s *CatalogService) DeleteFaculty(ctx context.Context, principal Principal, id string) (err error) {
	defer s.logFailure(ctx, "delete faculty", &err)
	if !principal.IsAdmin {
		return fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	return s.mapDeleteError("faculty", id, s.faculties.DeleteFaculty(ctx, id))
}

// ProfessorParams carries professor input.
type ProfessorParams struct {
	FullName  string
	Email     string
	FacultyID *string
}

func (s *CatalogService) CreateProfessor(ctx context.Context, principal Principal, params ProfessorParams) (professor persistence.Professor, err error) {
	defer s.logFailure(ctx, "create professor", &err)

	if !principal.IsAdmin {
		return persistence.Professor{}, fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	validation := NewValidationError()
	if params.FullName == "" {
		validation.Add("full_name", "is required")
	}
	if params.Email == "" {
		validation.Add("email", "is required")
	}
	if err := validation.ErrOrNil(); err != nil {
		return persistence.Professor{}, err
	}

	now := s.now()
	professor = persistence.Professor{
		ID: s.idGenerator(), FullName: params.FullName, Email: params.Email,
		FacultyID: params.FacultyID, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.professors.CreateProfessor(ctx, professor); err != nil {
		return persistence.Professor{}, s.mapWriteError("professor", params.Email, err)
	}
	return professor, nil
}

func (s *CatalogService) UpdateProfessor(ctx context.Context, principal Principal, id string, params ProfessorParams) (professor persistence.Professor, err error) {
	defer s.logFailure(ctx, "update professor", &err)

	if !principal.IsAdmin {
		return persistence.Professor{}, fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	professor, err = s.professors.GetProfessor(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Professor{}, fmt.Errorf("professor %s: %w", id, ErrNotFound)
		}
		return persistence.Professor{}, fmt.Errorf("load professor: %w", err)
	}

	professor.FullName = params.FullName
	professor.Email = params.Email
	professor.FacultyID = params.FacultyID
	professor.UpdatedAt = s.now()
	if err := s.professors.UpdateProfessor(ctx, professor); err != nil {
		return persistence.Professor{}, s.mapWriteError("professor", params.Email, err)
	}
	return professor, nil
}

func (s *CatalogService) ListProfessors(ctx context.Context) ([]persistence.Professor, error) {
	professors, err := s.professors.ListProfessors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	return professors, nil
}

func (s *CatalogService) DeleteProfessor(ctx context.Context, principal Principal, id string) (err error) {
	defer s.logFailure(ctx, "delete professor", &err)
	if !principal.IsAdmin {
		return fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	return s.mapDeleteError("professor", id, s.professors.DeleteProfessor(ctx, id))
}

// CourseParams carries course input.
type CourseParams struct {
	Name        string
	Code        string
	ProfessorID *string
}

func (s *CatalogService) CreateCourse(ctx context.Context, principal Principal, params CourseParams) (course persistence.Course, err error) {
	defer s.logFailure(ctx, "create course", &err)

	if !principal.IsAdmin {
		return persistence.Course{}, fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	validation := NewValidationError()
	if params.Name == "" {
		validation.Add("name", "is required")
	}
	if params.Code == "" {
		validation.Add("code", "is required")
	}
	if err := validation.ErrOrNil(); err != nil {
		return persistence.Course{}, err
	}

	now := s.now()
	course = persistence.Course{
		ID: s.idGenerator(), Name: params.Name, Code: params.Code,
		ProfessorID: params.ProfessorID, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.courses.CreateCourse(ctx, course); err != nil {
		return persistence.Course{}, s.mapWriteError("course", params.Code, err)
	}
	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, principal Principal, id string, params CourseParams) (course persistence.Course, err error) {
	defer s.logFailure(ctx, "update course", &err)

	if !principal.IsAdmin {
		return persistence.Course{}, fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	course, err = s.courses.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
		}
		return persistence.Course{}, fmt.Errorf("load course: %w", err)
	}

	course.Name = params.Name
	course.Code = params.Code
	course.ProfessorID = params.ProfessorID
	course.UpdatedAt = s.now()
	if err := s.courses.UpdateCourse(ctx, course); err != nil {
		return persistence.Course{}, s.mapWriteError("course", params.Code, err)
	}
	return course, nil
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]persistence.Course, error) {
	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, principal Principal, id string) (err error) {
	defer s.logFailure(ctx, "delete course", &err)
	if !principal.IsAdmin {
		return fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	return s.mapDeleteError("course", id, s.courses.DeleteCourse(ctx, id))
}

// AcademicPeriodParams carries academic period input.
type AcademicPeriodParams struct {
	Name       string
	PeriodType string
	StartsOn   time.Time
	EndsOn     time.Time
	IsActive   bool
}

func (s *CatalogService) CreateAcademicPeriod(ctx context.Context, principal Principal, params AcademicPeriodParams) (period persistence.AcademicPeriod, err error) {
	defer s.logFailure(ctx, "create academic period", &err)

	if !principal.IsAdmin {
		return persistence.AcademicPeriod{}, fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	validation := NewValidationError()
	if params.Name == "" {
		validation.Add("name", "is required")
	}
	if !params.StartsOn.Before(params.EndsOn) {
		validation.Add("ends_on", "must be after starts_on")
	}
	if err := validation.ErrOrNil(); err != nil {
		return persistence.AcademicPeriod{}, err
	}

	periodType := params.PeriodType
	if periodType == "" {
		periodType = "semester"
	}
	now := s.now()
	period = persistence.AcademicPeriod{
		ID: s.idGenerator(), Name: params.Name, PeriodType: periodType,
		StartsOn: params.StartsOn, EndsOn: params.EndsOn, IsActive: params.IsActive,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.periods.CreateAcademicPeriod(ctx, period); err != nil {
		return persistence.AcademicPeriod{}, s.mapWriteError("academic period", params.Name, err)
	}
	return period, nil
}

func (s *CatalogService) UpdateAcademicPeriod(ctx context.Context, principal Principal, id string, params AcademicPeriodParams) (period persistence.AcademicPeriod, err error) {
	defer s.logFailure(ctx, "update academic period", &err)

	if !principal.IsAdmin {
		return persistence.AcademicPeriod{}, fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	if !params.StartsOn.Before(params.EndsOn) {
		validation := NewValidationError()
		validation.Add("ends_on", "must be after starts_on")
		return persistence.AcademicPeriod{}, validation
	}
	period, err = s.periods.GetAcademicPeriod(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.AcademicPeriod{}, fmt.Errorf("academic period %s: %w", id, ErrNotFound)
		}
		return persistence.AcademicPeriod{}, fmt.Errorf("load academic period: %w", err)
	}

	period.Name = params.Name
	if params.PeriodType != "" {
		period.PeriodType = params.PeriodType
	}
	period.StartsOn = params.StartsOn
	period.EndsOn = params.EndsOn
	period.IsActive = params.IsActive
	period.UpdatedAt = s.now()
	if err := s.periods.UpdateAcademicPeriod(ctx, period); err != nil {
		return persistence.AcademicPeriod{}, s.mapWriteError("academic period", params.Name, err)
	}
	return period, nil
}

func (s *CatalogService) ListAcademicPeriods(ctx context.Context, activeOnly bool) ([]persistence.AcademicPeriod, error) {
	periods, err := s.periods.ListAcademicPeriods(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list academic periods: %w", err)
	}
	return periods, nil
}

func (s *CatalogService) DeleteAcademicPeriod(ctx context.Context, principal Principal, id string) (err error) {
	defer s.logFailure(ctx, "delete academic period", &err)
	if !principal.IsAdmin {
		return fmt.Errorf("catalog management: %w", ErrForbidden)
	}
	return s.mapDeleteError("academic period", id, s.periods.DeleteAcademicPeriod(ctx, id))
}

func (s *CatalogService) mapWriteError(entity, key string, err error) error {
	switch {
	case errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%s %s: %w", entity, key, ErrAlreadyExists)
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("%s %s references a missing record: %w", entity, key, ErrNotFound)
	}
	return fmt.Errorf("store %s: %w", entity, err)
}

func (s *CatalogService) mapDeleteError(entity, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("%s %s is still referenced: %w", entity, id, ErrInvalidTransition)
	}
	return fmt.Errorf("delete %s: %w", entity, err)
}

func (s *CatalogService) logFailure(ctx context.Context, operation string, err *error) {
	if *err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, operation+" failed",
			slog.String("error_kind", ErrorKind(*err)),
			slog.String("error", (*err).Error()))
	}
}
