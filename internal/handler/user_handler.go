package handler

import (
	"net/http"

	"tiendita/internal/model"
	"tiendita/internal/service"

	"github.com/rs/zerolog"
)

// UserHandler handles the admin user roster endpoints.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("handler", "user").Logger(),
	}
}

// createdUserResponse carries the generated temporary password exactly once,
// in the creation response.
type createdUserResponse struct {
	model.User
	TemporaryPassword string `json:"temporaryPassword"`
}

// List handles GET /api/admin/users requests.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetByID handles GET /api/admin/users/{id} requests.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Create handles POST /api/admin/users requests.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	user, tempPassword, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("user created by admin")
	writeJSON(w, http.StatusCreated, createdUserResponse{User: *user, TemporaryPassword: tempPassword})
}

// Update handles PUT /api/admin/users/{id} requests.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var in model.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	user, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/admin/users/{id} requests.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().Int64("user_id", id).Msg("user deleted by admin")
	w.WriteHeader(http.StatusNoContent)
}
