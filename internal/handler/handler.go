package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"tiendita/internal/model"
)

// ErrorResponse is the JSON body every failed request carries.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps a service error onto the HTTP taxonomy and writes it.
// Unknown errors are reported as a retryable store failure so a client
// can tell them apart from the non-retryable checkout abort.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var (
		stockErr *model.InsufficientStockError
		abortErr *model.CheckoutAbortError
		domErr   *model.DomainError
	)

	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: stockErr.Error(),
			Code:  model.ErrCodeInsufficientStock,
			Details: map[string]any{
				"product_id": stockErr.ProductID,
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			},
		})
	case errors.As(err, &abortErr):
		logger.Error().Err(err).Msg("checkout abort failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "checkout could not be rolled back",
			Code:  model.ErrCodeCheckoutAbortFailed,
		})
	case errors.As(err, &domErr):
		writeJSON(w, statusForCode(domErr.Code), ErrorResponse{
			Error: domErr.Message,
			Code:  domErr.Code,
		})
	default:
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error: "store unavailable, retry later",
			Code:  model.ErrCodeStoreUnavailable,
		})
	}
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeUnauthorised, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeNotFound, model.ErrCodeProductNotFound:
		return http.StatusNotFound
	case model.ErrCodeInsufficientStock, model.ErrCodeProductInUse, model.ErrCodeKeyConflict, model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrCodeCheckoutAbortFailed, model.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &model.DomainError{Code: model.ErrCodeInvalidJSON, Message: "invalid JSON body"}
	}
	return nil
}
