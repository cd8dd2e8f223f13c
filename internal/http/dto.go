package http

import (
	"time"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/persistence"
)

type recurrenceRequest struct {
	Frequency string     `json:"frequency"`
	Weekdays  []string   `json:"weekdays,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Count     int        `json:"count,omitempty"`
}

type createReservationRequest struct {
	RoomID          string             `json:"room_id"`
	CourseID        *string            `json:"course_id,omitempty"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	StartDatetime   time.Time          `json:"start_datetime"`
	EndDatetime     time.Time          `json:"end_datetime"`
	EventType       string             `json:"event_type"`
	AttendeeCount   int                `json:"attendee_count,omitempty"`
	EquipmentNeeded []string           `json:"equipment_needed,omitempty"`
	Recurrence      *recurrenceRequest `json:"recurrence,omitempty"`
}

func (r createReservationRequest) toParams() application.CreateReservationParams {
	params := application.CreateReservationParams{
		RoomID:          r.RoomID,
		CourseID:        r.CourseID,
		Title:           r.Title,
		Description:     r.Description,
		Notes:           r.Notes,
		Start:           r.StartDatetime,
		End:             r.EndDatetime,
		EventType:       r.EventType,
		AttendeeCount:   r.AttendeeCount,
		EquipmentNeeded: r.EquipmentNeeded,
	}
	if r.Recurrence != nil {
		params.Recurrence = &application.RecurrenceParams{
			Frequency: r.Recurrence.Frequency,
			Weekdays:  r.Recurrence.Weekdays,
			Until:     r.Recurrence.EndDate,
			Count:     r.Recurrence.Count,
		}
	}
	return params
}

type reservationResponse struct {
	ID                  string    `json:"id"`
	RoomID              string    `json:"room_id"`
	CourseID            *string   `json:"course_id,omitempty"`
	Title               string    `json:"title"`
	Description         string    `json:"description,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	StartDatetime       time.Time `json:"start_datetime"`
	EndDatetime         time.Time `json:"end_datetime"`
	EventType           string    `json:"event_type"`
	Status              string    `json:"status"`
	AttendeeCount       int       `json:"attendee_count"`
	EquipmentNeeded     []string  `json:"equipment_needed,omitempty"`
	RecurringTemplateID *string   `json:"recurring_template_id,omitempty"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toReservationResponse(r persistence.Reservation) reservationResponse {
	return reservationResponse{
		ID:                  r.ID,
		RoomID:              r.RoomID,
		CourseID:            r.CourseID,
		Title:               r.Title,
		Description:         r.Description,
		Notes:               r.Notes,
		StartDatetime:       r.Start,
		EndDatetime:         r.End,
		EventType:           r.EventType,
		Status:              r.Status,
		AttendeeCount:       r.AttendeeCount,
		EquipmentNeeded:     r.EquipmentNeeded,
		RecurringTemplateID: r.RecurringTemplateID,
		CreatedBy:           r.CreatedBy,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func toReservationResponses(reservations []persistence.Reservation) []reservationResponse {
	responses := make([]reservationResponse, 0, len(reservations))
	for _, reservation := range reservations {
		responses = append(responses, toReservationResponse(reservation))
	}
	return responses
}

type skippedResponse struct {
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Reason        string    `json:"reason"`
}

type createReservationResponse struct {
	Reservation reservationResponse   `json:"reservation"`
	Members     []reservationResponse `json:"members,omitempty"`
	Skipped     []skippedResponse     `json:"skipped,omitempty"`
}

func toCreateReservationResponse(result application.CreateReservationResult) createReservationResponse {
	response := createReservationResponse{
		Reservation: toReservationResponse(result.Anchor),
	}
	for _, member := range result.Members {
		response.Members = append(response.Members, toReservationResponse(member))
	}
	for _, skipped := range result.Skipped {
		response.Skipped = append(response.Skipped, skippedResponse{
			StartDatetime: skipped.Start,
			EndDatetime:   skipped.End,
			Reason:        skipped.Reason,
		})
	}
	return response
}

type roomRequest struct {
	Name      string   `json:"name"`
	Code      string   `json:"code"`
	Building  string   `json:"building,omitempty"`
	Capacity  int      `json:"capacity,omitempty"`
	RoomType  string   `json:"room_type,omitempty"`
	Features  []string `json:"features,omitempty"`
	FacultyID *string  `json:"faculty_id,omitempty"`
}

type roomResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Building  string    `json:"building,omitempty"`
	Capacity  int       `json:"capacity"`
	RoomType  string    `json:"room_type"`
	Features  []string  `json:"features,omitempty"`
	FacultyID *string   `json:"faculty_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRoomResponse(r persistence.Room) roomResponse {
	return roomResponse{
		ID: r.ID, Name: r.Name, Code: r.Code, Building: r.Building,
		Capacity: r.Capacity, RoomType: r.RoomType, Features: r.Features,
		FacultyID: r.FacultyID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type userRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(u persistence.User) userResponse {
	return userResponse{
		ID: u.ID, Email: u.Email, DisplayName: u.DisplayName,
		IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt,
	}
}
