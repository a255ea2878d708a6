package handler

import (
	"io"
	"net/http"
	"time"

	"tiendita/internal/middleware"
	"tiendita/internal/model"
	"tiendita/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthHandler handles registration, login and session lifecycle.
type AuthHandler struct {
	service      service.AuthService
	cookieName   string
	cookieSecure bool
	logger       zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, cookieName string, cookieSecure bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		logger:       logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().Int64("user_id", user.ID).Msg("account registered")
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login requests. On success the session token
// is set as an HTTP-only cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	user, session, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    session.Token.String(),
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info().Int64("user_id", user.ID).Msg("login")
	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout requests. Logging out without a
// session succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if token, err := uuid.Parse(cookie.Value); err == nil {
			if err := h.service.Logout(r.Context(), token); err != nil {
				writeError(w, err, h.logger)
				return
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me requests, returning the session's user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PUT /api/auth/me requests: the session's user updates
// their own name and/or password.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	var req model.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().Int64("user_id", user.ID).Msg("profile updated")
	writeJSON(w, http.StatusOK, updated)
}

// UploadProfileImage handles PUT /api/auth/me/image requests. The image
// arrives as a multipart form with an "image" field.
func (h *AuthHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, model.NewDomainError(model.ErrCodeMissingField, "expected multipart form with an image field"), h.logger)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, model.NewDomainError(model.ErrCodeMissingField, "image field is required"), h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.SetProfileImage(r.Context(), user.ID, data); err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().Int64("user_id", user.ID).Int("bytes", len(data)).Msg("profile image stored")
	w.WriteHeader(http.StatusNoContent)
}

// ProfileImage handles GET /api/users/{id}/image requests. The body is the
// raw image with its sniffed content type.
func (h *AuthHandler) ProfileImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	data, mime, err := h.service.GetProfileImage(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ResetPassword handles POST /api/auth/reset-password requests.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
