package http

import (
	"net/http"
	"strings"

	"github.com/example/campus-scheduler/internal/application"
)

type roomHandler struct {
	service *application.RoomService
	respond responder
}

func (h *roomHandler) collection(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		rooms, err := h.service.ListRooms(req.Context())
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		responses := make([]roomResponse, 0, len(rooms))
		for _, room := range rooms {
			responses = append(responses, toRoomResponse(room))
		}
		h.respond.writeJSON(w, http.StatusOK, responses)
	case http.MethodPost:
		principal, ok := principalFrom(req.Context())
		if !ok {
			h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		var body roomRequest
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		room, err := h.service.CreateRoom(req.Context(), principal, toRoomParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusCreated, toRoomResponse(room))
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *roomHandler) item(w http.ResponseWriter, req *http.Request) {
	id := strings.TrimPrefix(req.URL.Path, "/api/rooms/")
	if id == "" || strings.Contains(id, "/") {
		h.respond.writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch req.Method {
	case http.MethodGet:
		room, err := h.service.GetRoom(req.Context(), id)
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusOK, toRoomResponse(room))
	case http.MethodPut:
		principal, ok := principalFrom(req.Context())
		if !ok {
			h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		var body roomRequest
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		room, err := h.service.UpdateRoom(req.Context(), principal, id, toRoomParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusOK, toRoomResponse(room))
	case http.MethodDelete:
		principal, ok := principalFrom(req.Context())
		if !ok {
			h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if err := h.service.DeleteRoom(req.Context(), principal, id); err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusNoContent, nil)
	default:
		h.respond.methodNotAllowed(w)
	}
}

func toRoomParams(body roomRequest) application.RoomParams {
	return application.RoomParams{
		Name:      body.Name,
		Code:      body.Code,
		Building:  body.Building,
		Capacity:  body.Capacity,
		RoomType:  body.RoomType,
		Features:  body.Features,
		FacultyID: body.FacultyID,
	}
}
