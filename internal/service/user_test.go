package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fablepress/fablepress-server/internal/errors"
)

func TestUserService_GetProfile_Normalized(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	registerUser(t, svc, "author@example.com", "Book Worm")

	// Lookup normalizes the same way the index does
	profile, err := svc.users.GetProfile(ctx, "book worm")
	require.NoError(t, err)
	assert.Equal(t, "Book Worm", profile.Username)

	// Credentials are stripped
	assert.Empty(t, profile.Email)
	assert.Empty(t, profile.PasswordHash)
	assert.Empty(t, profile.AuthID)

	_, err = svc.users.GetProfile(ctx, "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, svc, "author@example.com", "author")

	bio := "<p>I write things</p><script>x()</script>"
	displayName := "The Author"
	updated, err := svc.users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		DisplayName: &displayName,
		Bio:         &bio,
	})
	require.NoError(t, err)
	assert.Equal(t, "The Author", updated.DisplayName)
	assert.Contains(t, updated.Bio, "<p>I write things</p>")
	assert.NotContains(t, updated.Bio, "<script>")
	assert.Equal(t, "author", updated.Username) // Unchanged
}

func TestUserService_UpdateProfile_UsernameConflict(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	registerUser(t, svc, "first@example.com", "first")
	second := registerUser(t, svc, "second@example.com", "second")

	taken := "First" // Case-only variant collides after normalization
	_, err := svc.users.UpdateProfile(ctx, second.ID, UpdateProfileRequest{Username: &taken})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestUserService_EnsureUser_Idempotent(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	params := EnsureUserParams{
		AuthID:   "oidc:sub-12345",
		Email:    "reader@example.com",
		Username: "reader",
	}

	first, err := svc.users.EnsureUser(ctx, params)
	require.NoError(t, err)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, first.AvatarColor)

	again, err := svc.users.EnsureUser(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.AvatarColor, again.AvatarColor)

	found, err := svc.users.GetByAuthSubject(ctx, "oidc:sub-12345")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestUserService_DeleteAccount_KeepsAuthoredContent(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	book := createBook(t, svc, author.ID, "The Raven")
	chapter := createChapter(t, svc, author.ID, book.ID, "I", "text")

	require.NoError(t, svc.users.DeleteAccount(ctx, author.ID))

	// Published work survives the account
	view, err := svc.books.Get(ctx, "", book.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Author) // But the author no longer resolves

	chapterView, err := svc.chapters.Get(ctx, "", chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, chapter.ID, chapterView.Chapter.ID)
}
