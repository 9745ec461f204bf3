package domain

import "time"

// Session tracks a logged-in device via its refresh token. Sessions live in
// the store like any other table but have no aggregate handlers attached.
type Session struct {
	Meta
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
}

// IsExpired returns true if the session's refresh token is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Seen updates the session's last seen timestamp.
func (s *Session) Seen() {
	s.LastSeenAt = time.Now()
}
