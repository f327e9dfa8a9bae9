package usecases

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/domain/repositories"
	"kitchenware-market.backend/pkg/crypto"
	"kitchenware-market.backend/pkg/jwt"
	"kitchenware-market.backend/pkg/logger"
	"kitchenware-market.backend/pkg/redis"
	"kitchenware-market.backend/pkg/utils"
)

// SessionStore keeps server-side login sessions
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// AuthUsecase handles authentication business logic
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	identity   *IdentityUsecase
	uow        repositories.UnitOfWork
	jwtService *jwt.JWTService
	sessions   SessionStore
}

// NewAuthUsecase creates a new auth usecase. sessions may be nil when Redis
// is disabled; logins then always return tokens.
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	identity *IdentityUsecase,
	uow repositories.UnitOfWork,
	jwtService *jwt.JWTService,
	sessions SessionStore,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:   userRepo,
		identity:   identity,
		uow:        uow,
		jwtService: jwtService,
		sessions:   sessions,
	}
}

func (u *AuthUsecase) sessionsEnabled() bool {
	return u.sessions != nil
}

func (u *AuthUsecase) sessionTTL() time.Duration {
	if ttl := u.jwtService.RefreshExpiry(); ttl > 0 {
		return ttl
	}
	return DefaultSessionTTL
}

func validateRegisterInput(input *entities.RegisterInput) error {
	username := strings.TrimSpace(input.Username)
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return domainerrors.NewValidationError("username", "Ensure this value has between 3 and 150 characters.")
	}
	if !usernamePattern.MatchString(username) {
		return domainerrors.NewValidationError("username",
			"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if strings.TrimSpace(input.Email) == "" {
		return domainerrors.NewValidationError("email", "This field is required.")
	}
	if utf8.RuneCountInString(input.Password) < crypto.MinPasswordLength {
		return domainerrors.NewValidationError("password", "This password is too short. It must contain at least 8 characters.")
	}
	if input.Password != input.PasswordConfirm {
		return domainerrors.NewValidationError("passwordConfirm", "The two password fields didn't match.")
	}
	return nil
}

// Register creates a user and their profile in one transaction.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, *entities.UserProfile, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, nil, err
	}
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if _, err := u.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, nil, domainerrors.NewValidationError("username", "A user with that username already exists.")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil, err
	}
	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, nil, domainerrors.NewValidationError("email", "A user with that email already exists.")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &entities.User{
		ID:           utils.GenerateUUIDv7(),
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: passwordHash,
		Role:         entities.UserRoleUser,
	}

	var profile *entities.UserProfile
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		var err error
		profile, err = u.identity.EnsureProfileExists(txCtx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, nil, domainerrors.NewValidationError("username", "A user with that username or email already exists.")
		}
		return nil, nil, err
	}

	logger.Info(ctx, "User registered", zap.String("user_id", user.ID.String()))
	return user, profile, nil
}

// Login checks credentials and issues a token pair. With UseSession and a
// session store configured, the tokens stay server side and only the
// session id is returned.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	var profile *entities.UserProfile
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		profile, err = u.identity.EnsureProfileExists(txCtx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	pair, err := u.jwtService.GenerateTokenPair(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	resp := &entities.AuthResponse{User: user, Profile: profile}
	if input.UseSession && u.sessionsEnabled() {
		sessionID, err := crypto.NewSessionID()
		if err != nil {
			return nil, err
		}
		data := &redis.SessionData{
			UserID:       user.ID.String(),
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}
		if err := u.sessions.CreateSession(ctx, sessionID, data, u.sessionTTL()); err != nil {
			return nil, err
		}
		resp.SessionID = sessionID
		return resp, nil
	}

	resp.AccessToken = pair.AccessToken
	resp.RefreshToken = pair.RefreshToken
	return resp, nil
}

// RefreshToken exchanges a refresh token for a new pair.
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}

	return u.jwtService.GenerateTokenPair(user.ID, user.Username, string(user.Role))
}

// RefreshSession rotates the tokens held by a session.
func (u *AuthUsecase) RefreshSession(ctx context.Context, sessionID string) error {
	if !u.sessionsEnabled() {
		return domainerrors.ErrUnauthorized
	}
	data, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return domainerrors.ErrUnauthorized
		}
		return err
	}
	_, err = u.rotateSession(ctx, sessionID, data)
	return err
}

func (u *AuthUsecase) rotateSession(ctx context.Context, sessionID string, data *redis.SessionData) (*redis.SessionData, error) {
	pair, err := u.RefreshToken(ctx, data.RefreshToken)
	if err != nil {
		return nil, err
	}
	rotated := &redis.SessionData{
		UserID:       data.UserID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if err := u.sessions.CreateSession(ctx, sessionID, rotated, u.sessionTTL()); err != nil {
		return nil, err
	}
	return rotated, nil
}

// Logout drops the server-side session if there is one.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" || !u.sessionsEnabled() {
		return nil
	}
	return u.sessions.DeleteSession(ctx, sessionID)
}

// Authenticate turns request credentials into an actor. No credentials
// yield the anonymous actor; bad credentials are an error.
func (u *AuthUsecase) Authenticate(ctx context.Context, bearerToken, sessionID string) (*entities.Actor, error) {
	var claims *jwt.Claims
	switch {
	case sessionID != "" && u.sessionsEnabled():
		c, err := u.sessionClaims(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		claims = c
	case bearerToken != "":
		c, err := u.jwtService.ValidateAccessToken(bearerToken)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				return nil, domainerrors.ErrTokenExpired
			}
			return nil, domainerrors.ErrUnauthorized
		}
		claims = c
	default:
		return entities.AnonymousActor(), nil
	}

	return u.identity.ResolveActor(ctx, claims.UserID)
}

func (u *AuthUsecase) sessionClaims(ctx context.Context, sessionID string) (*jwt.Claims, error) {
	data, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}

	claims, err := u.jwtService.ValidateAccessToken(data.AccessToken)
	if errors.Is(err, jwt.ErrExpiredToken) {
		data, err = u.rotateSession(ctx, sessionID, data)
		if err != nil {
			return nil, err
		}
		claims, err = u.jwtService.ValidateAccessToken(data.AccessToken)
	}
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}
	if claims.UserID.String() != data.UserID {
		return nil, domainerrors.ErrUnauthorized
	}
	return claims, nil
}
