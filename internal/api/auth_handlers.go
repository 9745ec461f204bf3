package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register new account",
		Description: "Creates a new account and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the specified session",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)
}

// === DTOs ===

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254" doc:"Account email address"`
	Password    string `json:"password" validate:"required,min=8,max=1024" doc:"Account password"`
	Username    string `json:"username" validate:"required,min=3,max=39" doc:"Unique username"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=100" doc:"Display name, defaults to username"`
}

// RegisterInput wraps the register request with headers for Huma.
type RegisterInput struct {
	Body          RegisterRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" doc:"Account email"`
	Password string `json:"password" validate:"required,max=1024" doc:"Account password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request with headers for Huma.
type RefreshInput struct {
	Body          RefreshRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	SessionID string `json:"session_id" validate:"required,max=100" doc:"Session ID to revoke"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body LogoutRequest
}

// UserStatsResponse contains the denormalized counters for a user.
type UserStatsResponse struct {
	TotalBooks     int `json:"total_books" doc:"Books published"`
	TotalChapters  int `json:"total_chapters" doc:"Chapters published"`
	TotalReviews   int `json:"total_reviews" doc:"Reviews written"`
	TotalComments  int `json:"total_comments" doc:"Comments written"`
	TotalWords     int `json:"total_words" doc:"Words published across all chapters"`
	TotalLikes     int `json:"total_likes" doc:"Likes received on authored content"`
	TotalFollowers int `json:"total_followers" doc:"Users following this author"`
	TotalFollowing int `json:"total_following" doc:"Authors this user follows"`
}

// UserResponse contains user information in API responses. Email is only
// present for the account owner.
type UserResponse struct {
	ID          string            `json:"id" doc:"User ID"`
	Email       string            `json:"email,omitempty" doc:"Email, owner only"`
	Username    string            `json:"username" doc:"Unique username"`
	DisplayName string            `json:"display_name,omitempty" doc:"Display name"`
	Bio         string            `json:"bio,omitempty" doc:"Profile bio"`
	AvatarURL   string            `json:"avatar_url,omitempty" doc:"Avatar image URL"`
	AvatarColor string            `json:"avatar_color,omitempty" doc:"Fallback avatar color derived from the user ID"`
	CreatedAt   time.Time         `json:"created_at" doc:"Account creation timestamp"`
	Stats       UserStatsResponse `json:"stats" doc:"Denormalized counters"`
}

// AuthResponse contains authentication tokens and user info.
type AuthResponse struct {
	AccessToken  string       `json:"access_token" doc:"PASETO access token"`
	RefreshToken string       `json:"refresh_token" doc:"Refresh token"`
	SessionID    string       `json:"session_id" doc:"Session identifier"`
	TokenType    string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn    int          `json:"expires_in" doc:"Token expiry in seconds"`
	User         UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	req := service.RegisterRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		Username:    input.Body.Username,
		DisplayName: input.Body.DisplayName,
		IPAddress:   extractIP(input.XForwardedFor, input.XRealIP),
		UserAgent:   input.UserAgent,
	}

	resp, err := s.services.Auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	req := service.LoginRequest{
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		IPAddress: extractIP(input.XForwardedFor, input.XRealIP),
		UserAgent: input.UserAgent,
	}

	resp, err := s.services.Auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	req := service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
		IPAddress:    extractIP(input.XForwardedFor, input.XRealIP),
		UserAgent:    input.UserAgent,
	}

	resp, err := s.services.Auth.RefreshTokens(ctx, req)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.SessionID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

// === Helpers ===

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	user := mapUser(resp.User)
	user.Email = resp.User.Email

	return AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		SessionID:    resp.SessionID,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		User:         user,
	}
}

// mapUser maps the public fields of a user. Credentials and email stay out;
// callers add email back for owner-facing responses.
func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		AvatarColor: u.AvatarColor,
		CreatedAt:   u.CreatedAt,
		Stats: UserStatsResponse{
			TotalBooks:     u.TotalBooks,
			TotalChapters:  u.TotalChapters,
			TotalReviews:   u.TotalReviews,
			TotalComments:  u.TotalComments,
			TotalWords:     u.TotalWords,
			TotalLikes:     u.TotalLikes,
			TotalFollowers: u.TotalFollowers,
			TotalFollowing: u.TotalFollowing,
		},
	}
}

func extractIP(xForwardedFor, xRealIP string) string {
	return clientIP(xForwardedFor, xRealIP, "")
}
