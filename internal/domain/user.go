package domain

import "time"

// User represents an authenticated account with an author profile and the
// denormalized totals maintained by the aggregate pipeline.
type User struct {
	Meta
	AuthID       string    `json:"auth_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	AvatarColor  string    `json:"avatar_color,omitempty"`
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`

	UserStats
}

// UserStats holds the aggregate counters cached on the user document.
// Every field is derivable from a full scan of the dependent tables; the
// aggregate pipeline keeps them in step incrementally.
type UserStats struct {
	TotalBooks     int `json:"total_books"`
	TotalChapters  int `json:"total_chapters"`
	TotalReviews   int `json:"total_reviews"`
	TotalComments  int `json:"total_comments"`
	TotalWords     int `json:"total_words"`
	TotalLikes     int `json:"total_likes"`
	TotalFollowers int `json:"total_followers"`
	TotalFollowing int `json:"total_following"`
}

// PublicProfile strips credentials and private fields for API responses.
func (u *User) PublicProfile() *User {
	out := *u
	out.PasswordHash = ""
	out.Email = ""
	out.AuthID = ""
	return &out
}
