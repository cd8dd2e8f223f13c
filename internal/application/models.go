package application

import (
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/scheduling"
)

// Principal identifies the authenticated caller of a service operation.
type Principal struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// Event types a reservation may carry.
var eventTypes = map[string]bool{
	"class":   true,
	"lab":     true,
	"seminar": true,
	"exam":    true,
	"meeting": true,
	"event":   true,
}

// Reservation statuses.
const (
	StatusPending   = string(scheduling.StatusPending)
	StatusConfirmed = string(scheduling.StatusConfirmed)
	StatusCancelled = string(scheduling.StatusCancelled)
	StatusCompleted = string(scheduling.StatusCompleted)
)

// OccupyingStatuses are the statuses that hold a room against new bookings.
var OccupyingStatuses = func() []string {
	statuses := make([]string, 0, len(scheduling.OccupyingStatuses))
	for _, status := range scheduling.OccupyingStatuses {
		statuses = append(statuses, string(status))
	}
	return statuses
}()

// RecurrenceParams describes how a reservation repeats. Exactly one of
// Until and Count terminates the series.
type RecurrenceParams struct {
	Frequency string
	Weekdays  []string
	Until     *time.Time
	Count     int
}

// CreateReservationParams carries the input for a new reservation request.
type CreateReservationParams struct {
	RoomID          string
	CourseID        *string
	Title           string
	Description     string
	Notes           string
	Start           time.Time
	End             time.Time
	EventType       string
	AttendeeCount   int
	EquipmentNeeded []string
	Recurrence      *RecurrenceParams
}

// SkippedOccurrence records a recurrence member that could not be booked.
type SkippedOccurrence struct {
	Start  time.Time
	End    time.Time
	Reason string
}

// CancelScope selects how far a cancellation reaches.
type CancelScope string

const (
	// CancelScopeSingle cancels only the addressed reservation.
	CancelScopeSingle CancelScope = "single"
	// CancelScopeSeries cancels every active member of the reservation's
	// recurrence group.
	CancelScopeSeries CancelScope = "series"
)

// ListPreset names a calendar-style listing window.
type ListPreset string

const (
	PresetDay   ListPreset = "day"
	PresetWeek  ListPreset = "week"
	PresetMonth ListPreset = "month"
)

// ListReservationsParams narrows a reservation listing. When Preset is set,
// the window is derived from On; otherwise From/To apply as given.
type ListReservationsParams struct {
	RoomID   *string
	GroupID  *string
	Statuses []string
	Preset   ListPreset
	On       time.Time
	From     *time.Time
	To       *time.Time
}

// presetWindow resolves a listing preset to a half-open [from, to) window.
// Weeks start on Monday.
func presetWindow(preset ListPreset, on time.Time) (time.Time, time.Time, bool) {
	day := time.Date(on.Year(), on.Month(), on.Day(), 0, 0, 0, 0, on.Location())
	switch preset {
	case PresetDay:
		return day, day.AddDate(0, 0, 1), true
	case PresetWeek:
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		return monday, monday.AddDate(0, 0, 7), true
	case PresetMonth:
		first := time.Date(on.Year(), on.Month(), 1, 0, 0, 0, 0, on.Location())
		return first, first.AddDate(0, 1, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, bool) {
	weekdays := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		weekday, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, false
		}
		weekdays = append(weekdays, weekday)
	}
	return weekdays, true
}
