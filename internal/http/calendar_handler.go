package http

import (
	"net/http"

	ics "github.com/arran4/golang-ical"

	"github.com/example/campus-scheduler/internal/application"
)

type calendarHandler struct {
	reservations *application.ReservationService
	rooms        *application.RoomService
	respond      responder
}

// export serves the reservation calendar as an iCalendar feed. Cancelled
// reservations are left out; the feed covers the month around the requested
// date.
func (h *calendarHandler) export(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		h.respond.methodNotAllowed(w)
		return
	}

	params := application.ListReservationsParams{
		Preset:   application.PresetMonth,
		Statuses: []string{application.StatusPending, application.StatusConfirmed, application.StatusCompleted},
	}
	if roomID := req.URL.Query().Get("room_id"); roomID != "" {
		params.RoomID = &roomID
	}

	reservations, err := h.reservations.ListReservations(req.Context(), params)
	if err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}

	roomNames := map[string]string{}
	if rooms, err := h.rooms.ListRooms(req.Context()); err == nil {
		for _, room := range rooms {
			roomNames[room.ID] = room.Name
		}
	}

	calendar := ics.NewCalendar()
	calendar.SetMethod(ics.MethodPublish)
	calendar.SetProductId("-//campus-scheduler//EN")

	for _, reservation := range reservations {
		event := calendar.AddEvent(reservation.ID + "@campus-scheduler")
		event.SetSummary(reservation.Title)
		event.SetStartAt(reservation.Start)
		event.SetEndAt(reservation.End)
		event.SetDtStampTime(reservation.UpdatedAt)
		if reservation.Description != "" {
			event.SetDescription(reservation.Description)
		}
		if name, ok := roomNames[reservation.RoomID]; ok {
			event.SetLocation(name)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(calendar.Serialize()))
}
