// Package handler contains the HTTP layer: request parsing, response
// writing, and nothing else. Business rules live in internal/service.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/movieweb/internal/service"
)

// UserHandler exposes the user operations over JSON.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns all users.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleCreate adds a new user.
//
// HTTP: POST /api/users
// REQUEST BODY: {"name": "Alice"}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleGetByName looks a user up by their exact name.
//
// HTTP: GET /api/users/{name}
func (h *UserHandler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	user, err := h.users.GetByName(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes a user along with their movie links and any movie
// left with no remaining links.
//
// HTTP: DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
