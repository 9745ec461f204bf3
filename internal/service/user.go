package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fablepress/fablepress-server/internal/color"
	"github.com/fablepress/fablepress-server/internal/domain"
	domainerrors "github.com/fablepress/fablepress-server/internal/errors"
	"github.com/fablepress/fablepress-server/internal/id"
	"github.com/fablepress/fablepress-server/internal/sanitize"
	"github.com/fablepress/fablepress-server/internal/store"
)

// UserService manages user accounts and author profiles.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st *store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: st, logger: logger}
}

// EnsureUserParams identifies an external authentication subject and the
// profile it should map to.
type EnsureUserParams struct {
	AuthID       string
	Email        string
	PasswordHash string
	Username     string
	DisplayName  string
}

// EnsureUser returns the user for an authentication subject, creating the
// account on first sight. Counters start at zero; the aggregate pipeline
// owns them from here on.
func (s *UserService) EnsureUser(ctx context.Context, params EnsureUserParams) (*domain.User, error) {
	var user *domain.User
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		existing, err := store.GetByIndex(tx, store.Users, "auth_id", params.AuthID)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		userID, err := id.Generate(id.PrefixUser)
		if err != nil {
			return fmt.Errorf("generate user ID: %w", err)
		}

		displayName := params.DisplayName
		if displayName == "" {
			displayName = params.Username
		}

		user = &domain.User{
			AuthID:       params.AuthID,
			Email:        params.Email,
			PasswordHash: params.PasswordHash,
			Username:     params.Username,
			DisplayName:  displayName,
			AvatarColor:  color.ForUser(userID),
		}
		user.ID = userID
		user.InitTimestamps()

		return store.Insert(tx, store.Users, userID, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByAuthSubject looks up a user by external authentication subject.
func (s *UserService) GetByAuthSubject(ctx context.Context, authID string) (*domain.User, error) {
	var user *domain.User
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		user, err = store.GetByIndex(tx, store.Users, "auth_id", authID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	var user *domain.User
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		user, err = store.Get(tx, store.Users, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// GetProfile returns a user's public profile by username.
// Credentials and private fields are stripped.
func (s *UserService) GetProfile(ctx context.Context, username string) (*domain.User, error) {
	var user *domain.User
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		user, err = store.GetByIndex(tx, store.Users, "username", username)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	return user.PublicProfile(), nil
}

// UpdateProfileRequest contains the editable profile fields. Nil pointers
// leave the current value unchanged.
type UpdateProfileRequest struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=39"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=500"`
}

// UpdateProfile updates the caller's own profile.
// A username change re-checks uniqueness against the normalized form.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		var err error
		user, err = store.Update(tx, store.Users, userID, func(u *domain.User) {
			if req.Username != nil {
				u.Username = *req.Username
			}
			if req.DisplayName != nil {
				u.DisplayName = *req.DisplayName
			}
			if req.Bio != nil {
				u.Bio = sanitize.HTML(*req.Bio)
			}
			if req.AvatarURL != nil {
				u.AvatarURL = *req.AvatarURL
			}
			u.Touch()
		})
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username already taken")
		}
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes a user. The cascade deletes the user's sessions,
// likes, follows in both directions, and authored feed activities. Authored
// books, chapters, comments, and reviews stay published.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		if _, err := store.Get(tx, store.Users, userID); err != nil {
			return err
		}
		return store.Delete(tx, store.Users, userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("User account deleted", "user_id", userID)
	}
	return nil
}
