package handler

import (
	"net/http"

	"tiendita/internal/middleware"
	"tiendita/internal/model"
	"tiendita/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order history reads and the admin sales report.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// History handles GET /api/orders requests.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	entries, err := h.service.History(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// GetByID handles GET /api/orders/{id} requests. Orders belonging to other
// users are indistinguishable from unknown ones.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, model.ErrOrderNotFound, h.logger)
		return
	}

	entry, err := h.service.GetByID(r.Context(), user.ID, orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// Sales handles GET /api/admin/sales requests.
func (h *OrderHandler) Sales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.SalesByProduct(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sales)
}
