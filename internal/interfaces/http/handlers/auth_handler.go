package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/interfaces/http/middleware"
	"kitchenware-market.backend/internal/interfaces/http/response"
	"kitchenware-market.backend/internal/interfaces/http/validators"
	"kitchenware-market.backend/pkg/jwt"
)

type AuthService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, *entities.UserProfile, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	RefreshSession(ctx context.Context, sessionID string) error
	Logout(ctx context.Context, sessionID string) error
}

// OwnProfileService loads the caller's profile for /auth/me
type OwnProfileService interface {
	GetOwnProfile(ctx context.Context, actor *entities.Actor) (*entities.UserProfile, error)
}

const (
	accessCookie  = "token"
	refreshCookie = "refresh_token"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService    AuthService
	profileService OwnProfileService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, profileService OwnProfileService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, validators.ToDomain(err))
		return
	}

	user, profile, err := h.authService.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":    user,
		"profile": profile,
	})
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, validators.ToDomain(err))
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	if authResponse.AccessToken != "" {
		c.SetCookie(accessCookie, authResponse.AccessToken, 3600*24, "/", "", false, true)
		c.SetCookie(refreshCookie, authResponse.RefreshToken, 3600*24*7, "/", "", false, true)
	}

	response.Success(c, http.StatusOK, authResponse)
}

// RefreshToken handles token refresh. A session id header rotates the
// session's tokens instead.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	if sessionID := c.GetHeader(middleware.SessionIDHeader); sessionID != "" {
		if err := h.authService.RefreshSession(c.Request.Context(), sessionID); err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"sessionId": sessionID})
		return
	}

	var refreshToken string
	if c.Request.ContentLength > 0 {
		var input struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&input); err == nil {
			refreshToken = input.RefreshToken
		}
	}
	if refreshToken == "" {
		if cookie, err := c.Cookie(refreshCookie); err == nil {
			refreshToken = cookie
		}
	}
	if refreshToken == "" {
		response.Error(c, domainerrors.BadRequest("Refresh token is required"))
		return
	}

	tokenPair, err := h.authService.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "Invalid or expired refresh token", err))
		return
	}

	c.SetCookie(accessCookie, tokenPair.AccessToken, 3600*24, "/", "", false, true)
	c.SetCookie(refreshCookie, tokenPair.RefreshToken, 3600*24*7, "/", "", false, true)

	response.Success(c, http.StatusOK, tokenPair)
}

// Logout drops the session and clears auth cookies
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), c.GetHeader(middleware.SessionIDHeader)); err != nil {
		response.Error(c, err)
		return
	}
	c.SetCookie(accessCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe returns the current user with their profile
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	profile, err := h.profileService.GetOwnProfile(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":        profile.User,
		"profile":     profile,
		"displayName": displayName(profile.User),
	})
}

func displayName(u *entities.User) string {
	if u == nil {
		return ""
	}
	return u.DisplayName()
}
