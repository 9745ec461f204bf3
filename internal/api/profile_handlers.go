package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fablepress/fablepress-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's account including email",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Description: "Updates the authenticated user's profile fields",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAccount",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me",
		Summary:     "Delete account",
		Description: "Deletes the authenticated user's account. Authored books stay published; likes and follows are removed.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAccount)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/sessions",
		Summary:     "List sessions",
		Description: "Returns the authenticated user's active sessions",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSessions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{username}",
		Summary:     "Get public profile",
		Description: "Returns a user's public profile by username",
		Tags:        []string{"Users"},
	}, s.handleGetProfile)
}

// === DTOs ===

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UpdateProfileRequest is the request body for profile updates. Absent
// fields are left unchanged.
type UpdateProfileRequest struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=39" doc:"New username"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100" doc:"New display name"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=2000" doc:"Profile bio, sanitized HTML"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=500" doc:"Avatar image URL"`
}

// UpdateProfileInput wraps the profile update request for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// GetProfileInput contains the username path parameter.
type GetProfileInput struct {
	Username string `path:"username" maxLength:"39" doc:"Username to look up"`
}

// SessionResponse describes an active session.
type SessionResponse struct {
	ID         string    `json:"id" doc:"Session ID"`
	CreatedAt  time.Time `json:"created_at" doc:"Session creation timestamp"`
	LastSeenAt time.Time `json:"last_seen_at" doc:"Last token refresh timestamp"`
	ExpiresAt  time.Time `json:"expires_at" doc:"Refresh token expiry"`
	IPAddress  string    `json:"ip_address,omitempty" doc:"Client IP at last refresh"`
	UserAgent  string    `json:"user_agent,omitempty" doc:"Client user agent at last refresh"`
}

// SessionListResponse contains a user's sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions" doc:"Active sessions"`
}

// SessionListOutput wraps the session list for Huma.
type SessionListOutput struct {
	Body SessionListResponse
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	resp := mapUser(user)
	resp.Email = user.Email

	return &UserOutput{Body: resp}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Username:    input.Body.Username,
		DisplayName: input.Body.DisplayName,
		Bio:         input.Body.Bio,
		AvatarURL:   input.Body.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	resp := mapUser(user)
	resp.Email = user.Email

	return &UserOutput{Body: resp}, nil
}

func (s *Server) handleDeleteAccount(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.User.DeleteAccount(ctx, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Account deleted"}}, nil
}

func (s *Server) handleListSessions(ctx context.Context, _ *struct{}) (*SessionListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.Session.ListUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, SessionResponse{
			ID:         sess.ID,
			CreatedAt:  sess.CreatedAt,
			LastSeenAt: sess.LastSeenAt,
			ExpiresAt:  sess.ExpiresAt,
			IPAddress:  sess.IPAddress,
			UserAgent:  sess.UserAgent,
		})
	}

	return &SessionListOutput{Body: resp}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*UserOutput, error) {
	user, err := s.services.User.GetProfile(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUser(user)}, nil
}
