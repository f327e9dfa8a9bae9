package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionIDHeader carries a server-side session id instead of a token
	SessionIDHeader = "X-Session-ID"
	// ActorKey is the context key for the resolved actor
	ActorKey = "actor"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserRoleKey is the context key for user role
	UserRoleKey = "userRole"
)

// Authenticator resolves request credentials into an actor
type Authenticator interface {
	Authenticate(ctx context.Context, bearerToken, sessionID string) (*entities.Actor, error)
}

// ActorMiddleware resolves the caller from a bearer token or session id.
// Requests without credentials continue as the anonymous actor; invalid
// credentials are rejected.
func ActorMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if authHeader := c.GetHeader(AuthorizationHeader); authHeader != "" {
			if !strings.HasPrefix(authHeader, BearerPrefix) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code":  domainerrors.CodeUnauthorized,
					"error": "Invalid authorization format. Use: Bearer <token>",
				})
				return
			}
			token = strings.TrimPrefix(authHeader, BearerPrefix)
		}
		sessionID := c.GetHeader(SessionIDHeader)

		actor, err := auth.Authenticate(c.Request.Context(), token, sessionID)
		if err != nil {
			if !errors.Is(err, domainerrors.ErrUnauthorized) && !errors.Is(err, domainerrors.ErrTokenExpired) {
				logger.Error(c.Request.Context(), "Authentication failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":  domainerrors.CodeInternalError,
					"error": "internal server error",
				})
				return
			}
			msg := "Invalid token"
			if errors.Is(err, domainerrors.ErrTokenExpired) {
				msg = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  domainerrors.CodeUnauthorized,
				"error": msg,
			})
			return
		}

		c.Set(ActorKey, actor)
		if actor.IsAuthenticated() {
			c.Set(UserIDKey, actor.UserID)
			c.Set(UserRoleKey, string(actor.Role))
			ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, actor.UserID.String())
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// GetActor returns the caller, anonymous when the middleware did not run.
func GetActor(c *gin.Context) *entities.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(*entities.Actor); ok && actor != nil {
			return actor
		}
	}
	return entities.AnonymousActor()
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// RequireAuth rejects anonymous callers
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetActor(c).IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  domainerrors.CodeUnauthorized,
				"error": "Authentication credentials were not provided",
			})
			return
		}
		c.Next()
	}
}

// RequireRole creates a middleware that requires a specific role
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  domainerrors.CodeUnauthorized,
				"error": "Authentication credentials were not provided",
			})
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":  domainerrors.CodeForbidden,
			"error": "Insufficient permissions",
		})
	}
}

// RequireAdmin creates a middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entities.UserRoleAdmin)
}
