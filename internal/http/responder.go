// Package http exposes the scheduler's REST API.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/logging"
)

type responder struct{}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type conflictBody struct {
	Error         string    `json:"error"`
	RoomID        string    `json:"room_id"`
	BlockingID    string    `json:"blocking_reservation_id"`
	BlockingTitle string    `json:"blocking_title"`
	Start         time.Time `json:"start_datetime"`
	End           time.Time `json:"end_datetime"`
}

func (responder) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func (r responder) writeError(w http.ResponseWriter, status int, message string) {
	r.writeJSON(w, status, errorBody{Error: message})
}

// handleServiceError maps application errors onto HTTP statuses.
func (r responder) handleServiceError(w http.ResponseWriter, req *http.Request, err error) {
	var validation *application.ValidationError
	var conflict *application.ConflictError

	switch {
	case errors.As(err, &validation):
		r.writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  "validation failed",
			Fields: validation.FieldErrors,
		})
	case errors.As(err, &conflict):
		r.writeJSON(w, http.StatusConflict, conflictBody{
			Error:         "the room is already reserved in that window",
			RoomID:        conflict.RoomID,
			BlockingID:    conflict.BlockingID,
			BlockingTitle: conflict.BlockingTitle,
			Start:         conflict.Start,
			End:           conflict.End,
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, application.ErrForbidden):
		r.writeError(w, http.StatusForbidden, "you are not allowed to do that")
	case errors.Is(err, application.ErrNotFound):
		r.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeError(w, http.StatusConflict, "a record with that identifier already exists")
	case errors.Is(err, application.ErrInvalidTransition):
		r.writeError(w, http.StatusConflict, "the reservation's current status does not allow that change")
	default:
		logging.FromContext(req.Context()).ErrorContext(req.Context(), "request failed",
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()))
		r.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (r responder) methodNotAllowed(w http.ResponseWriter) {
	r.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeBody(w http.ResponseWriter, req *http.Request, r responder, target any) bool {
	if err := json.NewDecoder(req.Body).Decode(target); err != nil {
		r.writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return false
	}
	return true
}
