package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ReturnsTokensAndUser(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "ada@example.com",
		"password":     "TestPassword123!",
		"username":     "ada",
		"display_name": "Ada L.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.NotEmpty(t, envelope.Data.SessionID)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Equal(t, "ada", envelope.Data.User.Username)
	assert.Equal(t, "Ada L.", envelope.Data.User.DisplayName)
	assert.Equal(t, "ada@example.com", envelope.Data.User.Email)
	assert.Zero(t, envelope.Data.User.Stats.TotalBooks)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerTestUser(t, "first@example.com", "bookworm")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "second@example.com",
		"password": "TestPassword123!",
		"username": "BookWorm",
	})
	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "ALREADY_EXISTS", envelope.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "short@example.com",
		"password": "short",
		"username": "shorty",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION", envelope.Code)
}

func TestLogin_Succeeds(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "reader@example.com", "reader")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "reader", envelope.Data.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "reader@example.com", "reader")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "WrongPassword123!",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	// The message must not reveal whether the email exists.
	assert.Equal(t, "invalid email or password", envelope.Message)
}

func TestRefresh_RotatesRefreshToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "rotate@example.com",
		"password": "TestPassword123!",
		"username": "rotate",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var registered testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &registered))

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var refreshed testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &refreshed))
	assert.Equal(t, registered.Data.SessionID, refreshed.Data.SessionID)
	assert.NotEqual(t, registered.Data.RefreshToken, refreshed.Data.RefreshToken)

	// The old refresh token is dead after rotation.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
}

func TestLogout_RevokesSession(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "leaver@example.com",
		"password": "TestPassword123!",
		"username": "leaver",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var registered testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &registered))

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"session_id": registered.Data.SessionID,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
}

func TestGetCurrentUser_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetCurrentUser_ReturnsOwnerFields(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.registerTestUser(t, "owner@example.com", "owner")

	resp := ts.api.Get("/api/v1/users/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, userID, envelope.Data.ID)
	assert.Equal(t, "owner@example.com", envelope.Data.Email)
}

func TestGetProfile_PublicAndStripped(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "author@example.com", "storyteller")

	resp := ts.api.Get("/api/v1/users/storyteller")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "storyteller", envelope.Data.Username)
	assert.Empty(t, envelope.Data.Email)
}

func TestUpdateProfile_ChangesBio(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "bio@example.com", "biowriter")

	resp := ts.api.Patch("/api/v1/users/me", bearer(token), map[string]any{
		"bio": "<p>I write <strong>serials</strong>.</p>",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Data.Bio, "<strong>serials</strong>")
}

func TestListSessions_ShowsActiveSessions(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "sessions@example.com", "sessioner")

	resp := ts.api.Get("/api/v1/users/me/sessions", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SessionListResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Sessions, 1)
}
