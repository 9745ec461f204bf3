package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fablepress/fablepress-server/internal/auth"
	"github.com/fablepress/fablepress-server/internal/domain"
	domainerrors "github.com/fablepress/fablepress-server/internal/errors"
	"github.com/fablepress/fablepress-server/internal/id"
	"github.com/fablepress/fablepress-server/internal/store"
)

// SessionService handles user session management and lifecycle.
// Sessions track authenticated devices and their refresh tokens.
type SessionService struct {
	store        *store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewSessionService creates a new session management service.
func NewSessionService(
	st *store.Store,
	tokenService *auth.TokenService,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		store:        st,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SessionResponse contains session tokens and metadata.
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // Seconds until access token expires
	SessionID    string `json:"session_id"`
}

// CreateSession generates tokens and creates a new session for a user.
// Returns access token, refresh token, and session metadata.
func (s *SessionService) CreateSession(
	ctx context.Context,
	user *domain.User,
	ipAddress, userAgent string,
) (*SessionResponse, error) {
	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokenService.RefreshTokenDuration()),
		LastSeenAt:       now,
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
	}
	session.ID = sessionID
	session.InitTimestamps()

	err = s.store.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Sessions, sessionID, session)
	})
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenService.AccessTokenDuration().Seconds()),
		SessionID:    sessionID,
	}, nil
}

// RefreshSession rotates tokens for an existing session.
// The old refresh token is invalidated (token rotation for security).
func (s *SessionService) RefreshSession(
	ctx context.Context,
	refreshToken string,
	ipAddress, userAgent string,
) (*SessionResponse, *domain.User, error) {
	tokenHash := auth.HashRefreshToken(refreshToken)

	newRefreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}

	var session *domain.Session
	var user *domain.User

	// Lookup and rotation happen in one transaction so a concurrent refresh
	// with the same token cannot both succeed.
	err = s.store.Mutate(ctx, func(tx *store.Tx) error {
		found, err := store.GetByIndex(tx, store.Sessions, "token", tokenHash)
		if err != nil {
			return domainerrors.TokenExpired("invalid or expired refresh token").WithCause(err)
		}
		if found.IsExpired() {
			// Expired sessions are removed on sight.
			if err := store.Delete(tx, store.Sessions, found.ID); err != nil {
				return err
			}
			return domainerrors.TokenExpired("invalid or expired refresh token")
		}

		user, err = store.Get(tx, store.Users, found.UserID)
		if err != nil {
			// User was deleted, clean up the orphaned session.
			if err := store.Delete(tx, store.Sessions, found.ID); err != nil {
				return err
			}
			return domainerrors.NotFound("user not found")
		}

		session, err = store.Update(tx, store.Sessions, found.ID, func(sess *domain.Session) {
			sess.RefreshTokenHash = auth.HashRefreshToken(newRefreshToken)
			sess.Seen()
			if ipAddress != "" {
				sess.IPAddress = ipAddress
			}
			if userAgent != "" {
				sess.UserAgent = userAgent
			}
			sess.Touch()
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenService.AccessTokenDuration().Seconds()),
		SessionID:    session.ID,
	}, user, nil
}

// DeleteSession ends a session (logout). Deleting a session that does not
// exist is not an error.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		return store.Delete(tx, store.Sessions, sessionID)
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Session deleted", "session_id", sessionID)
	}

	return nil
}

// ListUserSessions returns all active sessions for a user.
func (s *SessionService) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		sessions, err = store.ScanIndex(tx, store.Sessions, "user", userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	return sessions, nil
}

// DeleteExpiredSessions removes all expired sessions.
// This should be run periodically as a cleanup job.
func (s *SessionService) DeleteExpiredSessions(ctx context.Context) (int, error) {
	count := 0
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		sessions, err := store.List(tx, store.Sessions)
		if err != nil {
			return err
		}
		for _, sess := range sessions {
			if !sess.IsExpired() {
				continue
			}
			if err := store.Delete(tx, store.Sessions, sess.ID); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	if s.logger != nil && count > 0 {
		s.logger.Info("Deleted expired sessions", "count", count)
	}

	return count, nil
}
