package handler

import (
	"net/http"

	"tiendita/internal/middleware"
	"tiendita/internal/model"
	"tiendita/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests. Every endpoint requires a session.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	cart, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Add handles POST /api/cart requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	var req model.AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.Add(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveLine handles DELETE /api/cart/{lineID} requests.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	lineID, ok := pathID(w, r, "lineID", h.logger)
	if !ok {
		return
	}

	cart, err := h.service.RemoveLine(r.Context(), user.ID, lineID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}
