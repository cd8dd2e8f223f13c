package http

import (
	"net/http"

	"github.com/example/campus-scheduler/internal/application"
)

type authHandler struct {
	service *application.AuthService
	respond responder
}

func (h *authHandler) login(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		h.respond.methodNotAllowed(w)
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, req, h.respond, &body) {
		return
	}

	token, err := h.service.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}
	h.respond.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type userHandler struct {
	service *application.UserService
	respond responder
}

func (h *userHandler) collection(w http.ResponseWriter, req *http.Request) {
	principal, ok := principalFrom(req.Context())
	if !ok {
		h.respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	switch req.Method {
	case http.MethodGet:
		users, err := h.service.ListUsers(req.Context(), principal)
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		responses := make([]userResponse, 0, len(users))
		for _, user := range users {
			responses = append(responses, toUserResponse(user))
		}
		h.respond.writeJSON(w, http.StatusOK, responses)
	case http.MethodPost:
		var body userRequest
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		user, err := h.service.CreateUser(req.Context(), principal, application.UserParams(body))
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusCreated, toUserResponse(user))
	default:
		h.respond.methodNotAllowed(w)
	}
}
