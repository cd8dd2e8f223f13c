package scheduling

import "time"

// Status represents the lifecycle state of a reservation.
type Status string

const (
	// StatusPending marks a newly created reservation awaiting confirmation.
	StatusPending Status = "pending"
	// StatusConfirmed marks a reservation approved by staff.
	StatusConfirmed Status = "confirmed"
	// StatusCancelled marks a reservation that was called off.
	StatusCancelled Status = "cancelled"
	// StatusCompleted marks a reservation whose time has passed.
	StatusCompleted Status = "completed"
)

// OccupyingStatuses are the statuses that count toward conflict detection.
// Cancelled and completed reservations never block a room.
var OccupyingStatuses = []Status{StatusPending, StatusConfirmed}

// Booking is the subset of a reservation relevant to conflict detection.
type Booking struct {
	ID     string
	Title  string
	RoomID string
	Status Status
	Start  time.Time
	End    time.Time
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back bookings, where one ends exactly
// when the other starts, do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Occupies reports whether a booking in the given status blocks the room.
func Occupies(status Status, occupying []Status) bool {
	for _, s := range occupying {
		if s == status {
			return true
		}
	}
	return false
}

// FindConflicts returns every existing booking for roomID whose interval
// overlaps the candidate [start, end) window and whose status is in the
// occupying set. The result preserves the order of the input slice and is
// empty when the candidate may be booked safely.
func FindConflicts(existing []Booking, roomID string, start, end time.Time, occupying []Status) []Booking {
	conflicts := make([]Booking, 0)
	for _, booking := range existing {
		if booking.RoomID != roomID {
			continue
		}
		if !Occupies(booking.Status, occupying) {
			continue
		}
		if Overlaps(start, end, booking.Start, booking.End) {
			conflicts = append(conflicts, booking)
		}
	}
	return conflicts
}
