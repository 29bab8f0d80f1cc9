package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/service"
	"habit-tracker/internal/transport/http/middleware"

	"github.com/google/uuid"
)

// UserHandler handles auth and profile HTTP requests
type UserHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService service.AuthService, userService service.UserService) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
	}
}

type tokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

func toTokenResponse(pair *service.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}
}

// Register handles POST /api/auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), &entity.UserCreate{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"email": user.Email,
	})
}

// Login handles POST /api/auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

// RefreshToken handles POST /api/auth/refresh
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

// Logout handles POST /api/auth/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	sessionID := middleware.GetSessionID(r)

	if err := h.authService.Logout(r.Context(), principal.UserID, sessionID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	user, err := h.userService.GetByID(r.Context(), principal.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var telegramID *string
	if profile.HasTelegramID() {
		telegramID = profile.TelegramID
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":          user.ID,
		"email":       user.Email,
		"telegram_id": telegramID,
	})
}

// RegisterTelegram handles POST /api/telegram/register
func (h *UserHandler) RegisterTelegram(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	var req struct {
		TelegramID string `json:"telegram_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if _, err := h.userService.RegisterTelegramID(r.Context(), principal.UserID, req.TelegramID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Telegram ID registered successfully",
	})
}

// DeleteAccount handles DELETE /api/users/account. Owned habits and the
// profile are removed with the user.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	if err := h.userService.DeleteAccount(r.Context(), principal.UserID); err != nil {
		handleServiceError(w, err)
		return
	}

	sessionID := middleware.GetSessionID(r)
	if sessionID != uuid.Nil {
		// Best effort: the account is already gone.
		_ = h.authService.Logout(r.Context(), principal.UserID, sessionID)
	}

	w.WriteHeader(http.StatusNoContent)
}
