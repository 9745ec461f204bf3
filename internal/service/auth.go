package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fablepress/fablepress-server/internal/auth"
	"github.com/fablepress/fablepress-server/internal/domain"
	domainerrors "github.com/fablepress/fablepress-server/internal/errors"
	"github.com/fablepress/fablepress-server/internal/normalize"
	"github.com/fablepress/fablepress-server/internal/store"
)

// AuthService handles user authentication (registration, login, token
// verification). Session management is delegated to SessionService, account
// creation to UserService.
type AuthService struct {
	store          *store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	userService    *UserService
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	st *store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	userService *UserService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          st,
		tokenService:   tokenService,
		sessionService: sessionService,
		userService:    userService,
		logger:         logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	Username    string `json:"username" validate:"required,min=3,max=39"`
	DisplayName string `json:"display_name" validate:"max=100"`
	IPAddress   string `json:"-"` // Extracted from request by handler
	UserAgent   string `json:"-"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"` // Extracted from request by handler
	UserAgent string `json:"-"`
}

// RefreshRequest contains the refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IPAddress    string `json:"-"` // Extracted from request by handler
	UserAgent    string `json:"-"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Register creates a new account and logs it in.
// The email and username must both be unique; username is normalized before
// the uniqueness check so "BookWorm" and "bookworm" collide.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if normalize.Username(req.Username) == "" {
		return nil, domainerrors.Validation("username must contain at least one letter or digit")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	authID := "local:" + normalize.Email(req.Email)

	// EnsureUser returns the existing account for a known subject, which
	// would let registration impersonate it. Reject up front instead.
	if _, err := s.userService.GetByAuthSubject(ctx, authID); err == nil {
		return nil, domainerrors.AlreadyExists("email or username already in use")
	}

	user, err := s.userService.EnsureUser(ctx, EnsureUserParams{
		AuthID:       authID,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Username:     req.Username,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email or username already in use")
		}
		return nil, err
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered",
			"user_id", user.ID,
			"username", user.Username,
		)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Login authenticates a user and creates a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		user, err = store.GetByIndex(tx, store.Users, "email", req.Email)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether email exists
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	// Update last login. Failure here should not fail the login.
	err = s.store.Mutate(ctx, func(tx *store.Tx) error {
		updated, err := store.Update(tx, store.Users, user.ID, func(u *domain.User) {
			u.LastLoginAt = time.Now()
			u.Touch()
		})
		if err == nil {
			user = updated
		}
		return err
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("Failed to update last login time",
			"user_id", user.ID,
			"error", err,
		)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// RefreshTokens generates new tokens using a refresh token.
// The old refresh token is invalidated (token rotation).
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Logout revokes a session, invalidating its refresh token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// VerifyAccessToken validates a token and returns the associated user.
// Used by authentication middleware.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid token").WithCause(err)
	}

	var user *domain.User
	err = s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		user, err = store.Get(tx, store.Users, claims.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("user not found")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}
