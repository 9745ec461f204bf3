package api

import (
	"encoding/hex"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fablepress/fablepress-server/internal/aggregate"
	"github.com/fablepress/fablepress-server/internal/auth"
	"github.com/fablepress/fablepress-server/internal/service"
	"github.com/fablepress/fablepress-server/internal/store"
)

// testEnvelope mirrors the wire envelope for decoding test responses.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
}

// setupTestServer creates a full API server over a temp-dir store. The rate
// limiter is sized so tests never trip it.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	st, err := store.New(dbPath, nil, aggregate.NewPipeline())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	sessionService := service.NewSessionService(st, tokenService, logger)
	userService := service.NewUserService(st, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, userService, logger)

	services := &Services{
		Auth:     authService,
		Session:  sessionService,
		User:     userService,
		Book:     service.NewBookService(st, logger),
		Chapter:  service.NewChapterService(st, logger),
		Comment:  service.NewCommentService(st, logger),
		Review:   service.NewReviewService(st, logger),
		Social:   service.NewSocialService(st, logger),
		Activity: service.NewActivityService(st, logger),
	}

	router := chi.NewRouter()
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("FablePress API Test", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: NewRateLimiter(1000, time.Minute, 500),
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerBookRoutes()
	s.registerChapterRoutes()
	s.registerCommentRoutes()
	s.registerReviewRoutes()
	s.registerSocialRoutes()
	s.registerActivityRoutes()

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, api),
		tokenService: tokenService,
	}
}

// registerTestUser creates an account and returns the access token and user ID.
func (ts *testServer) registerTestUser(t *testing.T, email, username string) (token string, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    email,
		"password": "TestPassword123!",
		"username": username,
	})
	require.Equal(t, http.StatusOK, resp.Code, "Registration failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	claims, err := ts.tokenService.VerifyAccessToken(envelope.Data.AccessToken)
	require.NoError(t, err)

	return envelope.Data.AccessToken, claims.UserID
}

// bearer formats a token as an Authorization header value.
func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// createTestBook publishes a book and returns its ID.
func (ts *testServer) createTestBook(t *testing.T, token, title string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title":       title,
		"description": "A test book",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Create book failed: %s", resp.Body.String())

	var envelope testEnvelope[BookResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	return envelope.Data.ID
}

// createTestChapter publishes a chapter and returns its ID.
func (ts *testServer) createTestChapter(t *testing.T, token, bookID, title, content string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/chapters", bearer(token), map[string]any{
		"book_id": bookID,
		"title":   title,
		"content": content,
	})
	require.Equal(t, http.StatusOK, resp.Code, "Create chapter failed: %s", resp.Body.String())

	var envelope testEnvelope[ChapterResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	return envelope.Data.ID
}
