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

// RoomParams carries the input for creating or updating a room.
type RoomParams struct {
	Name      string
	Code      string
	Building  string
	Capacity  int
	RoomType  string
	Features  []string
	FacultyID *string
}

var roomTypes = map[string]bool{
	"classroom":  true,
	"laboratory": true,
	"auditorium": true,
	"seminar":    true,
	"office":     true,
}

// RoomService administers the bookable room catalog.
type RoomService struct {
	rooms       persistence.RoomRepository
	idGenerator func() string
	now         func() time.Time
}

func NewRoomService(rooms persistence.RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now}
}

// CreateRoom adds a room. Only administrators manage the catalog.
func (s *RoomService) CreateRoom(ctx context.Context, principal Principal, params RoomParams) (room persistence.Room, err error) {
	defer s.logFailure(ctx, "create room", &err)

	if !principal.IsAdmin {
		return persistence.Room{}, fmt.Errorf("room management: %w", ErrForbidden)
	}
	if err := validateRoom(params); err != nil {
		return persistence.Room{}, err
	}

	now := s.now()
	room = persistence.Room{
		ID:        s.idGenerator(),
		Name:      params.Name,
		Code:      params.Code,
		Building:  params.Building,
		Capacity:  params.Capacity,
		RoomType:  params.RoomType,
		Features:  params.Features,
		FacultyID: params.FacultyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Room{}, fmt.Errorf("room code %s: %w", params.Code, ErrAlreadyExists)
		}
		return persistence.Room{}, fmt.Errorf("store room: %w", err)
	}
	return room, nil
}

// UpdateRoom replaces a room's attributes.
func (s *RoomService) UpdateRoom(ctx context.Context, principal Principal, id string, params RoomParams) (room persistence.Room, err error) {
	defer s.logFailure(ctx, "update room", &err)

	if !principal.IsAdmin {
		return persistence.Room{}, fmt.Errorf("room management: %w", ErrForbidden)
	}
	if err := validateRoom(params); err != nil {
		return persistence.Room{}, err
	}

	existing, err := s.GetRoom(ctx, id)
	if err != nil {
		return persistence.Room{}, err
	}

	room = existing
	room.Name = params.Name
	room.Code = params.Code
	room.Building = params.Building
	room.Capacity = params.Capacity
	room.RoomType = params.RoomType
	room.Features = params.Features
	room.FacultyID = params.FacultyID
	room.UpdatedAt = s.now()

	if err := s.rooms.UpdateRoom(ctx, room); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Room{}, fmt.Errorf("room code %s: %w", params.Code, ErrAlreadyExists)
		}
		return persistence.Room{}, fmt.Errorf("update room: %w", err)
	}
	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Room{}, fmt.Errorf("room %s: %w", id, ErrNotFound)
		}
		return persistence.Room{}, fmt.Errorf("load room: %w", err)
	}
	return room, nil
}

func (s *RoomService) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// DeleteRoom removes a room. Rooms with reservations are protected by the
// schema's foreign key.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, id string) (err error) {
	defer s.logFailure(ctx, "delete room", &err)

	if !principal.IsAdmin {
		return fmt.Errorf("room management: %w", ErrForbidden)
	}
	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			return fmt.Errorf("room %s: %w", id, ErrNotFound)
		case errors.Is(err, persistence.ErrForeignKeyViolation):
			return fmt.Errorf("room %s still has reservations: %w", id, ErrInvalidTransition)
		}
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

func (s *RoomService) logFailure(ctx context.Context, operation string, err *error) {
	if *err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, operation+" failed",
			slog.String("error_kind", ErrorKind(*err)),
			slog.String("error", (*err).Error()))
	}
}

func validateRoom(params RoomParams) error {
	validation := NewValidationError()
	if params.Name == "" {
		validation.Add("name", "is required")
	}
	if params.Code == "" {
		validation.Add("code", "is required")
	}
	if params.Capacity < 0 {
		validation.Add("capacity", "must not be negative")
	}
	if params.RoomType != "" && !roomTypes[params.RoomType] {
		validation.Add("room_type", "must be one of classroom, laboratory, auditorium, seminar, office")
	}
	return validation.ErrOrNil()
}
