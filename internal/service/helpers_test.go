package service

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fablepress/fablepress-server/internal/aggregate"
	"github.com/fablepress/fablepress-server/internal/auth"
	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

// testServices bundles every service over one temp-dir store.
type testServices struct {
	store    *store.Store
	tokens   *auth.TokenService
	auth     *AuthService
	sessions *SessionService
	users    *UserService
	books    *BookService
	chapters *ChapterService
	comments *CommentService
	reviews  *ReviewService
	social   *SocialService
	activity *ActivityService
}

// setupServices creates the full service stack with temporary storage.
func setupServices(t *testing.T) *testServices {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(dbPath, nil, aggregate.NewPipeline())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	sessions := NewSessionService(s, tokens, nil)
	users := NewUserService(s, nil)

	return &testServices{
		store:    s,
		tokens:   tokens,
		auth:     NewAuthService(s, tokens, sessions, users, nil),
		sessions: sessions,
		users:    users,
		books:    NewBookService(s, nil),
		chapters: NewChapterService(s, nil),
		comments: NewCommentService(s, nil),
		reviews:  NewReviewService(s, nil),
		social:   NewSocialService(s, nil),
		activity: NewActivityService(s, nil),
	}
}

// registerUser creates an account through the normal registration flow.
func registerUser(t *testing.T, svc *testServices, email, username string) *domain.User {
	t.Helper()

	resp, err := svc.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "SecurePassword123!",
		Username: username,
	})
	require.NoError(t, err)
	return resp.User
}

// createBook publishes a book for the given author.
func createBook(t *testing.T, svc *testServices, authorID, title string) *domain.Book {
	t.Helper()

	book, err := svc.books.Create(context.Background(), authorID, CreateBookRequest{
		Title:       title,
		Description: "A test book",
	})
	require.NoError(t, err)
	return book
}

// createChapter publishes a chapter for the given book.
func createChapter(t *testing.T, svc *testServices, authorID, bookID, title, content string) *domain.Chapter {
	t.Helper()

	chapter, err := svc.chapters.Create(context.Background(), authorID, CreateChapterRequest{
		BookID:  bookID,
		Title:   title,
		Content: content,
	})
	require.NoError(t, err)
	return chapter
}
