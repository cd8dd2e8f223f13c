package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/campus-scheduler/internal/logging"
	"github.com/example/campus-scheduler/internal/notify"
	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/recurrence"
	"github.com/example/campus-scheduler/internal/scheduling"
)

// keyedMutex serializes writers per room so two requests for the same room
// cannot both pass the conflict check before either inserts.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*sync.Mutex{}}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// CreateReservationResult reports the outcome of a booking request: the
// anchor row, any recurrence members that were booked, and the occurrences
// that were skipped because their window was taken.
type CreateReservationResult struct {
	Anchor  persistence.Reservation
	Members []persistence.Reservation
	Skipped []SkippedOccurrence
}

// ReservationService implements the scheduling workflow: conflict-checked
// booking, recurrence expansion, status transitions, and cancellation.
type ReservationService struct {
	reservations persistence.ReservationRepository
	rooms        persistence.RoomRepository
	courses      persistence.CourseRepository
	engine       *recurrence.Engine
	notifier     notify.Notifier
	idGenerator  func() string
	now          func() time.Time
	roomLocks    *keyedMutex
}

// NewReservationService wires the scheduling workflow. idGenerator and now
// are injected so tests can fix them.
func NewReservationService(
	reservations persistence.ReservationRepository,
	rooms persistence.RoomRepository,
	courses persistence.CourseRepository,
	engine *recurrence.Engine,
	notifier notify.Notifier,
	idGenerator func() string,
	now func() time.Time,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		rooms:        rooms,
		courses:      courses,
		engine:       engine,
		notifier:     notifier,
		idGenerator:  idGenerator,
		now:          now,
		roomLocks:    newKeyedMutex(),
	}
}

// CreateReservation books a room. The requested window itself is strict:
// any conflict rejects the whole request. When a recurrence is attached,
// the remaining occurrences are booked best effort, and conflicting ones
// are reported back as skipped rather than failing the series.
func (s *ReservationService) CreateReservation(ctx context.Context, principal Principal, params CreateReservationParams) (result CreateReservationResult, err error) {
	logger := logging.FromContext(ctx)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "create reservation failed",
				slog.String("room_id", params.RoomID),
				slog.String("error_kind", ErrorKind(err)),
				slog.String("error", err.Error()))
		}
	}()

	recurrenceReq, err := s.validateCreate(params)
	if err != nil {
		return CreateReservationResult{}, err
	}

	if _, err := s.rooms.GetRoom(ctx, params.RoomID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return CreateReservationResult{}, fmt.Errorf("room %s: %w", params.RoomID, ErrNotFound)
		}
		return CreateReservationResult{}, fmt.Errorf("load room: %w", err)
	}
	if params.CourseID != nil {
		if _, err := s.courses.GetCourse(ctx, *params.CourseID); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return CreateReservationResult{}, fmt.Errorf("course %s: %w", *params.CourseID, ErrNotFound)
			}
			return CreateReservationResult{}, fmt.Errorf("load course: %w", err)
		}
	}

	unlock := s.roomLocks.lock(params.RoomID)
	defer unlock()

	if err := s.checkWindow(ctx, params.RoomID, params.Start, params.End); err != nil {
		return CreateReservationResult{}, err
	}

	now := s.now()
	anchor := persistence.Reservation{
		ID:              s.idGenerator(),
		RoomID:          params.RoomID,
		CourseID:        params.CourseID,
		Title:           params.Title,
		Description:     params.Description,
		Notes:           params.Notes,
		Start:           params.Start,
		End:             params.End,
		EventType:       params.EventType,
		Status:          StatusPending,
		AttendeeCount:   params.AttendeeCount,
		EquipmentNeeded: params.EquipmentNeeded,
		CreatedBy:       principal.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.reservations.CreateReservation(ctx, anchor); err != nil {
		return CreateReservationResult{}, fmt.Errorf("store reservation: %w", err)
	}
	s.publish(ctx, anchor.ID, notify.EventCreated)

	result = CreateReservationResult{Anchor: anchor}
	if recurrenceReq == nil {
		return result, nil
	}

	occurrences, err := s.engine.Expand(*recurrenceReq)
	if err != nil {
		// Termination and frequency were validated up front; an engine
		// error here means the two layers disagree.
		return CreateReservationResult{}, fmt.Errorf("expand recurrence: %w", err)
	}

	groupID := s.idGenerator()
	for _, occurrence := range occurrences {
		if err := s.checkWindow(ctx, params.RoomID, occurrence.Start, occurrence.End); err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				result.Skipped = append(result.Skipped, SkippedOccurrence{
					Start:  occurrence.Start,
					End:    occurrence.End,
					Reason: fmt.Sprintf("conflicts with %q", conflict.BlockingTitle),
				})
				continue
			}
			return CreateReservationResult{}, err
		}

		member := anchor
		member.ID = s.idGenerator()
		member.Start = occurrence.Start
		member.End = occurrence.End
		member.RecurringTemplateID = &groupID
		if err := s.reservations.CreateReservation(ctx, member); err != nil {
			return CreateReservationResult{}, fmt.Errorf("store recurrence member: %w", err)
		}
		s.publish(ctx, member.ID, notify.EventCreated)
		result.Members = append(result.Members, member)
	}

	// Tag the anchor so a series cancellation reaches it too.
	err = s.reservations.UpdateReservation(ctx, anchor.ID, persistence.ReservationUpdate{
		RecurringTemplateID: &groupID,
		UpdatedAt:           s.now(),
	})
	if err != nil {
		return CreateReservationResult{}, fmt.Errorf("tag anchor with recurrence group: %w", err)
	}
	result.Anchor.RecurringTemplateID = &groupID

	logger.InfoContext(ctx, "recurring reservation created",
		slog.String("group_id", groupID),
		slog.Int("booked", len(result.Members)+1),
		slog.Int("skipped", len(result.Skipped)))
	return result, nil
}

// GetReservation loads a single reservation.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	reservation, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Reservation{}, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
		}
		return persistence.Reservation{}, fmt.Errorf("load reservation: %w", err)
	}
	return reservation, nil
}

// ListReservations lists reservations, optionally narrowed to a calendar
// preset window or an explicit range.
func (s *ReservationService) ListReservations(ctx context.Context, params ListReservationsParams) ([]persistence.Reservation, error) {
	filter := persistence.ReservationFilter{
		RoomID:   params.RoomID,
		GroupID:  params.GroupID,
		Statuses: params.Statuses,
	}

	if params.Preset != "" {
		on := params.On
		if on.IsZero() {
			on = s.now()
		}
		from, to, ok := presetWindow(params.Preset, on)
		if !ok {
			validation := NewValidationError()
			validation.Add("period", "must be one of day, week, month")
			return nil, validation
		}
		filter.StartsAfter = &from
		filter.EndsBefore = &to
	} else {
		filter.StartsAfter = params.From
		filter.EndsBefore = params.To
	}

	reservations, err := s.reservations.ListReservations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

// allowed status transitions, keyed by the current status.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// UpdateStatus moves a reservation to a new status when the transition is
// allowed from its current one.
func (s *ReservationService) UpdateStatus(ctx context.Context, principal Principal, id, status string) (err error) {
	logger := logging.FromContext(ctx)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "status update failed",
				slog.String("reservation_id", id),
				slog.String("error_kind", ErrorKind(err)),
				slog.String("error", err.Error()))
		}
	}()

	reservation, err := s.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(principal, reservation); err != nil {
		return err
	}

	allowed := false
	for _, next := range statusTransitions[reservation.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%s to %s: %w", reservation.Status, status, ErrInvalidTransition)
	}

	err = s.reservations.UpdateReservation(ctx, id, persistence.ReservationUpdate{Status: &status, UpdatedAt: s.now()})
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	s.publish(ctx, id, notify.EventUpdated)
	return nil
}

// CancelReservation cancels one reservation or, with CancelScopeSeries, the
// whole recurrence group it belongs to. Members that already finished or
// were cancelled earlier are left untouched.
func (s *ReservationService) CancelReservation(ctx context.Context, principal Principal, id string, scope CancelScope) (err error) {
	logger := logging.FromContext(ctx)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "cancellation failed",
				slog.String("reservation_id", id),
				slog.String("error_kind", ErrorKind(err)),
				slog.String("error", err.Error()))
		}
	}()

	reservation, err := s.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(principal, reservation); err != nil {
		return err
	}

	if scope == CancelScopeSeries && reservation.RecurringTemplateID != nil {
		cancelled := StatusCancelled
		affected, err := s.reservations.UpdateReservationsByGroup(ctx,
			*reservation.RecurringTemplateID,
			persistence.ReservationUpdate{Status: &cancelled, UpdatedAt: s.now()},
			[]string{StatusCancelled, StatusCompleted})
		if err != nil {
			return fmt.Errorf("cancel series: %w", err)
		}
		logger.InfoContext(ctx, "series cancelled",
			slog.String("group_id", *reservation.RecurringTemplateID),
			slog.Int64("cancelled", affected))
		s.publish(ctx, id, notify.EventDeleted)
		return nil
	}

	if reservation.Status == StatusCancelled || reservation.Status == StatusCompleted {
		return fmt.Errorf("%s reservation: %w", reservation.Status, ErrInvalidTransition)
	}

	cancelled := StatusCancelled
	err = s.reservations.UpdateReservation(ctx, id, persistence.ReservationUpdate{Status: &cancelled, UpdatedAt: s.now()})
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	s.publish(ctx, id, notify.EventDeleted)
	return nil
}

// CompletePastReservations flips confirmed reservations whose window has
// passed to completed. The maintenance job calls this on a schedule.
func (s *ReservationService) CompletePastReservations(ctx context.Context) (int64, error) {
	affected, err := s.reservations.MarkCompleted(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("complete past reservations: %w", err)
	}
	if affected > 0 {
		logging.FromContext(ctx).InfoContext(ctx, "past reservations completed",
			slog.Int64("count", affected))
	}
	return affected, nil
}

// checkWindow returns a ConflictError when the room is occupied anywhere in
// the half-open window [start, end). The repository query prefilters by
// room and status; the scheduling package owns the interval semantics.
func (s *ReservationService) checkWindow(ctx context.Context, roomID string, start, end time.Time) error {
	candidates, err := s.reservations.FindOverlapping(ctx, roomID, start, end, OccupyingStatuses)
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}

	bookings := make([]scheduling.Booking, 0, len(candidates))
	for _, candidate := range candidates {
		bookings = append(bookings, scheduling.Booking{
			ID:     candidate.ID,
			Title:  candidate.Title,
			RoomID: candidate.RoomID,
			Status: scheduling.Status(candidate.Status),
			Start:  candidate.Start,
			End:    candidate.End,
		})
	}

	conflicts := scheduling.FindConflicts(bookings, roomID, start, end, scheduling.OccupyingStatuses)
	if len(conflicts) > 0 {
		first := conflicts[0]
		return &ConflictError{
			RoomID:        roomID,
			BlockingID:    first.ID,
			BlockingTitle: first.Title,
			Start:         first.Start,
			End:           first.End,
		}
	}
	return nil
}

func (s *ReservationService) requireOwnership(principal Principal, reservation persistence.Reservation) error {
	if principal.IsAdmin || principal.UserID == reservation.CreatedBy {
		return nil
	}
	return fmt.Errorf("reservation belongs to another user: %w", ErrForbidden)
}

// publish delivers a reservation event best effort. A broker failure is
// logged and otherwise ignored.
func (s *ReservationService) publish(ctx context.Context, reservationID string, eventType notify.EventType) {
	err := s.notifier.Publish(ctx, notify.Event{ReservationID: reservationID, EventType: eventType})
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "notification delivery failed",
			slog.String("reservation_id", reservationID),
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
	}
}

func (s *ReservationService) validateCreate(params CreateReservationParams) (*recurrence.Request, error) {
	validation := NewValidationError()

	if params.RoomID == "" {
		validation.Add("room_id", "is required")
	}
	if params.Title == "" {
		validation.Add("title", "is required")
	}
	if !params.Start.Before(params.End) {
		validation.Add("end_datetime", "must be after start_datetime")
	}
	if !eventTypes[params.EventType] {
		validation.Add("event_type", "must be one of class, lab, seminar, exam, meeting, event")
	}
	if params.AttendeeCount < 0 {
		validation.Add("attendee_count", "must not be negative")
	}

	var request *recurrence.Request
	if params.Recurrence != nil {
		frequency := recurrence.ParseFrequency(params.Recurrence.Frequency)
		if frequency == recurrence.FrequencyUnspecified {
			validation.Add("recurrence.frequency", "must be one of daily, weekly, monthly")
		}
		weekdays, ok := parseWeekdays(params.Recurrence.Weekdays)
		if !ok {
			validation.Add("recurrence.weekdays", "contains an unknown weekday name")
		}
		hasUntil := params.Recurrence.Until != nil
		hasCount := params.Recurrence.Count > 0
		if hasUntil == hasCount {
			validation.Add("recurrence", "exactly one of end_date and count is required")
		}
		if params.Recurrence.Count < 0 {
			validation.Add("recurrence.count", "must be positive")
		}

		if !validation.HasErrors() {
			request = &recurrence.Request{
				AnchorStart: params.Start,
				AnchorEnd:   params.End,
				Frequency:   frequency,
				Weekdays:    weekdays,
				Until:       params.Recurrence.Until,
				Count:       params.Recurrence.Count,
			}
		}
	}

	if err := validation.ErrOrNil(); err != nil {
		return nil, err
	}
	return request, nil
}
