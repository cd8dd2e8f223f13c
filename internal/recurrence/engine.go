package recurrence

import (
	"errors"
	"time"
)

// MaxIterations bounds the date scan so expansion always terminates, even
// with contradictory parameters or a far-off end date.
const MaxIterations = 365

// Frequency represents supported recurrence intervals.
type Frequency int

const (
	// FrequencyUnspecified indicates the request frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily repeats on every calendar day.
	FrequencyDaily
	// FrequencyWeekly repeats on the selected weekdays.
	FrequencyWeekly
	// FrequencyMonthly repeats on the anchor's day of month.
	FrequencyMonthly
)

// ParseFrequency maps a wire value to a Frequency.
func ParseFrequency(value string) Frequency {
	switch value {
	case "daily":
		return FrequencyDaily
	case "weekly":
		return FrequencyWeekly
	case "monthly":
		return FrequencyMonthly
	}
	return FrequencyUnspecified
}

// String returns the wire value of the frequency.
func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyMonthly:
		return "monthly"
	}
	return "unspecified"
}

// Request describes how to expand one booking into a series. AnchorStart and
// AnchorEnd define both the first occurrence and the time-of-day window
// replicated on every generated date. Termination is either Until (last
// admissible date, inclusive) or Count (number of generated occurrences,
// excluding the anchor); exactly one must be set.
type Request struct {
	AnchorStart time.Time
	AnchorEnd   time.Time
	Frequency   Frequency
	Weekdays    []time.Weekday
	Until       *time.Time
	Count       int
}

// Occurrence is one concrete start/end instance generated from a request.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

var (
	// ErrInvalidFrequency indicates the recurrence frequency is not supported.
	ErrInvalidFrequency = errors.New("recurrence: invalid frequency")
	// ErrInvalidDuration indicates the anchor window is empty or inverted.
	ErrInvalidDuration = errors.New("recurrence: anchor end must be after anchor start")
	// ErrInvalidTermination indicates neither an end date nor a count was given.
	ErrInvalidTermination = errors.New("recurrence: termination requires an end date or occurrence count")
)

// Engine expands recurrence requests into occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that performs calendar arithmetic in the
// provided location. If loc is nil, each request's anchor location is used.
func NewEngine(loc *time.Location) *Engine {
	return &Engine{location: loc}
}

// Expand produces the ordered occurrences described by the request. The
// anchor itself is never emitted; it is the caller's original booking. The
// scan never exceeds MaxIterations steps, so contradictory input (for
// example a weekly request with no weekdays) yields an empty result rather
// than an unbounded loop.
func (e *Engine) Expand(req Request) ([]Occurrence, error) {
	loc := e.location
	if loc == nil {
		loc = req.AnchorStart.Location()
	}

	anchorStart := req.AnchorStart.In(loc)
	anchorEnd := req.AnchorEnd.In(loc)
	if !anchorEnd.After(anchorStart) {
		return nil, ErrInvalidDuration
	}

	switch req.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return nil, ErrInvalidFrequency
	}

	if req.Count < 0 {
		return nil, ErrInvalidTermination
	}
	if req.Count == 0 && req.Until == nil {
		return nil, ErrInvalidTermination
	}

	limit := req.Count
	if limit == 0 || limit > MaxIterations {
		limit = MaxIterations
	}

	var until time.Time
	if req.Until != nil {
		until = endOfDay(req.Until.In(loc))
	}

	if req.Frequency == FrequencyMonthly {
		return e.expandMonthly(anchorStart, anchorEnd, until, limit, loc)
	}
	return e.expandByDay(req, anchorStart, anchorEnd, until, limit, loc)
}

// expandByDay scans one calendar day at a time. Weekly requests still scan
// daily so the weekday filter can pick out qualifying dates.
func (e *Engine) expandByDay(req Request, anchorStart, anchorEnd, until time.Time, limit int, loc *time.Location) ([]Occurrence, error) {
	weekdaySet := make(map[time.Weekday]struct{}, len(req.Weekdays))
	for _, day := range req.Weekdays {
		weekdaySet[day] = struct{}{}
	}

	occurrences := make([]Occurrence, 0, limit)
	for step := 0; step <= MaxIterations; step++ {
		cursor := anchorStart.AddDate(0, 0, step)
		if !until.IsZero() && cursor.After(until) {
			break
		}

		qualifies := true
		if req.Frequency == FrequencyWeekly {
			_, qualifies = weekdaySet[cursor.Weekday()]
		}
		if !qualifies || step == 0 {
			continue
		}

		occurrences = append(occurrences, makeOccurrence(cursor, anchorStart, anchorEnd, loc))
		if len(occurrences) == limit {
			break
		}
	}
	return occurrences, nil
}

// expandMonthly advances by whole calendar months and qualifies a month only
// when it contains the anchor's exact day of month. Months too short for the
// anchor day (an anchor on the 31st in a 30-day month) contribute nothing.
func (e *Engine) expandMonthly(anchorStart, anchorEnd, until time.Time, limit int, loc *time.Location) ([]Occurrence, error) {
	year, month, day := anchorStart.Date()

	occurrences := make([]Occurrence, 0, limit)
	for step := 1; step <= MaxIterations; step++ {
		firstOfMonth := time.Date(year, month+time.Month(step), 1, 0, 0, 0, 0, loc)
		if !until.IsZero() && firstOfMonth.After(until) {
			break
		}

		cursor := time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, 0, 0, 0, 0, loc)
		if cursor.Day() != day {
			// Date normalization rolled into the next month: the month has
			// no such day, so it is skipped.
			continue
		}
		if !until.IsZero() && cursor.After(until) {
			break
		}

		occurrences = append(occurrences, makeOccurrence(cursor, anchorStart, anchorEnd, loc))
		if len(occurrences) == limit {
			break
		}
	}
	return occurrences, nil
}

// makeOccurrence combines the cursor's date with the anchor's time-of-day
// window to produce a concrete interval.
func makeOccurrence(cursor, anchorStart, anchorEnd time.Time, loc *time.Location) Occurrence {
	y, m, d := cursor.In(loc).Date()
	start := time.Date(y, m, d, anchorStart.Hour(), anchorStart.Minute(), anchorStart.Second(), anchorStart.Nanosecond(), loc)
	end := time.Date(y, m, d, anchorEnd.Hour(), anchorEnd.Minute(), anchorEnd.Second(), anchorEnd.Nanosecond(), loc)
	if !end.After(start) {
		end = start.Add(anchorEnd.Sub(anchorStart))
	}
	return Occurrence{Start: start, End: end}
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
