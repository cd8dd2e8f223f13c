package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

type reservationHandler struct {
	service *application.ReservationService
	respond responder
}

func (h *reservationHandler) collection(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		h.list(w, req)
	case http.MethodPost:
		h.create(w, req)
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *reservationHandler) create(w http.ResponseWriter, req *http.Request) {
	principal, ok := principalFrom(req.Context())
	if !ok {
		h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var body createReservationRequest
	if !decodeBody(w, req, h.respond, &body) {
		return
	}

	result, err := h.service.CreateReservation(req.Context(), principal, body.toParams())
	if err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}
	h.respond.writeJSON(w, http.StatusCreated, toCreateReservationResponse(result))
}

func (h *reservationHandler) list(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()
	params := application.ListReservationsParams{
		Preset: application.ListPreset(query.Get("period")),
	}

	if roomID := query.Get("room_id"); roomID != "" {
		params.RoomID = &roomID
	}
	if groupID := query.Get("recurring_template_id"); groupID != "" {
		params.GroupID = &groupID
	}
	if statuses := query.Get("status"); statuses != "" {
		params.Statuses = strings.Split(statuses, ",")
	}
	if on := query.Get("on"); on != "" {
		parsed, err := time.Parse("2006-01-02", on)
		if err != nil {
			h.respond.writeError(w, http.StatusBadRequest, "on must be a YYYY-MM-DD date")
			return
		}
		params.On = parsed
	}
	for name, target := range map[string]**time.Time{"from": &params.From, "to": &params.To} {
		if value := query.Get(name); value != "" {
			parsed, err := time.Parse(time.RFC3339, value)
			if err != nil {
				h.respond.writeError(w, http.StatusBadRequest, name+" must be an RFC 3339 timestamp")
				return
			}
			*target = &parsed
		}
	}

	reservations, err := h.service.ListReservations(req.Context(), params)
	if err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}
	h.respond.writeJSON(w, http.StatusOK, toReservationResponses(reservations))
}

// item routes /api/reservations/{id} and its cancel/status subresources.
func (h *reservationHandler) item(w http.ResponseWriter, req *http.Request) {
	rest := strings.TrimPrefix(req.URL.Path, "/api/reservations/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		h.respond.writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch action {
	case "":
		if req.Method != http.MethodGet {
			h.respond.methodNotAllowed(w)
			return
		}
		h.get(w, req, id)
	case "cancel":
		if req.Method != http.MethodPost {
			h.respond.methodNotAllowed(w)
			return
		}
		h.cancel(w, req, id)
	case "status":
		if req.Method != http.MethodPost {
			h.respond.methodNotAllowed(w)
			return
		}
		h.updateStatus(w, req, id)
	default:
		h.respond.writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *reservationHandler) get(w http.ResponseWriter, req *http.Request, id string) {
	reservation, err := h.service.GetReservation(req.Context(), id)
	if err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}
	h.respond.writeJSON(w, http.StatusOK, toReservationResponse(reservation))
}

func (h *reservationHandler) cancel(w http.ResponseWriter, req *http.Request, id string) {
	principal, ok := principalFrom(req.Context())
	if !ok {
		h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var body struct {
		Scope string `json:"scope,omitempty"`
	}
	if req.ContentLength > 0 && !decodeBody(w, req, h.respond, &body) {
		return
	}

	scope := application.CancelScopeSingle
	switch body.Scope {
	case "", string(application.CancelScopeSingle):
	case string(application.CancelScopeSeries):
		scope = application.CancelScopeSeries
	default:
		h.respond.writeError(w, http.StatusBadRequest, "scope must be single or series")
		return
	}

	if err := h.service.CancelReservation(req.Context(), principal, id, scope); err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}
	h.respond.writeJSON(w, http.StatusNoContent, nil)
}

func (h *reservationHandler) updateStatus(w http.ResponseWriter, req *http.Request, id string) {
	principal, ok := principalFrom(req.Context())
	if !ok {
		h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, req, h.respond, &body) {
		return
	}

	if err := h.service.UpdateStatus(req.Context(), principal, id, body.Status); err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}

	reservation, err := h.service.GetReservation(req.Context(), id)
	if err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}
	h.respond.writeJSON(w, http.StatusOK, toReservationResponse(reservation))
}
