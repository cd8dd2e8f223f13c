package persistence

import "time"

// User represents a staff account in the campus scheduler domain.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Faculty represents an organizational unit rooms and courses belong to.
type Faculty struct {
	ID        string
	Name      string
	Code      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room represents a bookable space in the facility catalog.
type Room struct {
	ID        string
	Name      string
	Code      string
	Building  string
	Capacity  int
	RoomType  string
	Features  []string
	FacultyID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Professor represents a teaching staff member.
type Professor struct {
	ID        string
	FullName  string
	Email     string
	FacultyID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Course represents a taught course that reservations may reference.
type Course struct {
	ID          string
	Name        string
	Code        string
	ProfessorID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AcademicPeriod represents a semester or term.
type AcademicPeriod struct {
	ID         string
	Name       string
	PeriodType string
	StartsOn   time.Time
	EndsOn     time.Time
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CleaningReport tracks whether a room was cleaned on a given day and what
// the cleaning crew found. One row exists per room and date.
type CleaningReport struct {
	ID           string
	RoomID       string
	ReportDate   time.Time
	IsCleaned    bool
	CleanedBy    string
	CleanedAt    *time.Time
	Observations []string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reservation represents one booked use of a room for an interval of time.
// Rows generated from a single recurring request share RecurringTemplateID.
type Reservation struct {
	ID                  string
	RoomID              string
	CourseID            *string
	Title               string
	Description         string
	Notes               string
	Start               time.Time
	End                 time.Time
	EventType           string
	Status              string
	AttendeeCount       int
	EquipmentNeeded     []string
	RecurringTemplateID *string
	CreatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
