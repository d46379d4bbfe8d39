package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adskoe96/adsk-chat/internal/auth"
	"github.com/adskoe96/adsk-chat/internal/sanitize"
	"github.com/adskoe96/adsk-chat/internal/store"
)

// APIHandlers provides the REST endpoints for account management.
type APIHandlers struct {
	authService *auth.Service
	accounts    store.AccountStore
	log         *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(authService *auth.Service, accounts store.AccountStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		authService: authService,
		accounts:    accounts,
		log:         logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string `json:"token"`
}

// ProfileResponse is the caller's own account view.
type ProfileResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	Role        string `json:"role"`
	Bio         string `json:"bio,omitempty"`
}

// UpdateProfileRequest carries editable profile fields.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Bio         string `json:"bio"`
}

// UpdateAvatarRequest carries a reference to an already-uploaded avatar.
// Upload and storage of the image itself happen elsewhere.
type UpdateAvatarRequest struct {
	Avatar string `json:"avatar" binding:"required,max=512"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Register handles account registration.
// POST /api/register
func (h *APIHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "account already exists"})
			return
		}
		if errors.Is(err, auth.ErrInvalidUsername) || errors.Is(err, auth.ErrInvalidPassword) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to register account")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("username", req.Username).Msg("account registered")
	c.JSON(http.StatusCreated, AuthResponse{Token: token})
}

// Login handles account login.
// POST /api/login
func (h *APIHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to login")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// Me returns the calling account's profile.
// GET /api/me
func (h *APIHandlers) Me(c *gin.Context) {
	acc, ok := h.currentAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profileResponse(acc))
}

// UpdateProfile replaces the caller's display name and bio. Both fields pass
// through the sanitizer before they are stored.
// PUT /api/me
func (h *APIHandlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	acc, ok := h.currentAccount(c)
	if !ok {
		return
	}

	displayName := sanitize.Clean(req.DisplayName, sanitize.DisplayName)
	if displayName == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "display name contains no displayable content"})
		return
	}
	bio := sanitize.Clean(req.Bio, sanitize.ProfileBio)

	if err := h.accounts.UpdateProfile(c.Request.Context(), acc.ID, displayName, bio); err != nil {
		h.log.Error().Err(err).Int64("account_id", acc.ID).Msg("failed to update profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	acc.DisplayName = displayName
	acc.Bio = bio
	c.JSON(http.StatusOK, profileResponse(acc))
}

// UpdateAvatar replaces the caller's avatar reference.
// PUT /api/me/avatar
func (h *APIHandlers) UpdateAvatar(c *gin.Context) {
	var req UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	acc, ok := h.currentAccount(c)
	if !ok {
		return
	}

	if err := h.accounts.UpdateAvatar(c.Request.Context(), acc.ID, req.Avatar); err != nil {
		h.log.Error().Err(err).Int64("account_id", acc.ID).Msg("failed to update avatar")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	acc.Avatar = req.Avatar
	c.JSON(http.StatusOK, profileResponse(acc))
}

func (h *APIHandlers) currentAccount(c *gin.Context) (*store.Account, bool) {
	accountID := c.GetInt64(ContextKeyAccountID)
	acc, err := h.accounts.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "account no longer exists"})
			return nil, false
		}
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("failed to load account")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return nil, false
	}
	return acc, true
}

func profileResponse(acc *store.Account) ProfileResponse {
	return ProfileResponse{
		ID:          acc.ID,
		Username:    acc.Username,
		DisplayName: acc.DisplayName,
		Avatar:      acc.Avatar,
		Role:        string(acc.Role),
		Bio:         acc.Bio,
	}
}
