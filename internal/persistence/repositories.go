package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for staff accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// RoomRepository exposes CRUD operations for the room catalog.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// FacultyRepository exposes CRUD operations for faculties.
type FacultyRepository interface {
	CreateFaculty(ctx context.Context, faculty Faculty) error
	UpdateFaculty(ctx context.Context, faculty Faculty) error
	GetFaculty(ctx context.Context, id string) (Faculty, error)
	ListFaculties(ctx context.Context) ([]Faculty, error)
	DeleteFaculty(ctx context.Context, id string) error
}

// ProfessorRepository exposes CRUD operations for professors.
type ProfessorRepository interface {
	CreateProfessor(ctx context.Context, professor Professor) error
	UpdateProfessor(ctx context.Context, professor Professor) error
	GetProfessor(ctx context.Context, id string) (Professor, error)
	ListProfessors(ctx context.Context) ([]Professor, error)
	DeleteProfessor(ctx context.Context, id string) error
}

// CourseRepository exposes CRUD operations for courses.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course Course) error
	UpdateCourse(ctx context.Context, course Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

// AcademicPeriodRepository exposes CRUD operations for academic periods.
type AcademicPeriodRepository interface {
	CreateAcademicPeriod(ctx context.Context, period AcademicPeriod) error
	UpdateAcademicPeriod(ctx context.Context, period AcademicPeriod) error
	GetAcademicPeriod(ctx context.Context, id string) (AcademicPeriod, error)
	ListAcademicPeriods(ctx context.Context, activeOnly bool) ([]AcademicPeriod, error)
	DeleteAcademicPeriod(ctx context.Context, id string) error
}

// CleaningReportRepository stores the daily room cleaning checklist.
type CleaningReportRepository interface {
	CreateCleaningReport(ctx context.Context, report CleaningReport) error
	GetCleaningReport(ctx context.Context, id string) (CleaningReport, error)
	// ListCleaningReports returns every report filed for the given calendar
	// date, ordered by room.
	ListCleaningReports(ctx context.Context, date time.Time) ([]CleaningReport, error)
	UpdateCleaningReport(ctx context.Context, report CleaningReport) error
}

// ReservationFilter narrows reservation queries.
type ReservationFilter struct {
	RoomID      *string
	GroupID     *string
	Statuses    []string
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// ReservationUpdate carries the mutable reservation fields. Nil fields are
// left untouched. UpdatedAt is stamped on every updated row; callers supply
// it so the write clock stays injectable.
type ReservationUpdate struct {
	Status              *string
	RecurringTemplateID *string
	UpdatedAt           time.Time
}

// ReservationRepository stores reservations and supports the scheduling
// engine's overlap query and recurrence-group updates.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	UpdateReservation(ctx context.Context, id string, update ReservationUpdate) error
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	// FindOverlapping returns reservations for roomID in one of the given
	// statuses whose interval intersects the half-open window [start, end).
	FindOverlapping(ctx context.Context, roomID string, start, end time.Time, statuses []string) ([]Reservation, error)
	// UpdateReservationsByGroup applies the update to every row sharing the
	// recurrence group, skipping rows whose status is in excludeStatuses.
	UpdateReservationsByGroup(ctx context.Context, groupID string, update ReservationUpdate, excludeStatuses []string) (int64, error)
	// MarkCompleted flips confirmed reservations that ended before the
	// reference time to completed and reports how many rows changed.
	MarkCompleted(ctx context.Context, before time.Time) (int64, error)
}
