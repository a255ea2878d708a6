package handler

import (
	"net/http"

	"tiendita/internal/middleware"
	"tiendita/internal/model"
	"tiendita/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles the cart-to-order checkout endpoint.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/checkout requests. An optional Idempotency-Key
// header makes retries of the same submission safe: a repeated key returns
// the already-committed order instead of charging twice.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	resp, err := h.service.Checkout(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	status := http.StatusCreated
	if resp.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}
