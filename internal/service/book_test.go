package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fablepress/fablepress-server/internal/errors"
)

func TestBookService_Create(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")

	book, err := svc.books.Create(ctx, author.ID, CreateBookRequest{
		Title:       "The Raven",
		Description: "<p>Poems</p><script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.Equal(t, author.ID, book.AuthorID)
	assert.Equal(t, "The Raven", book.Title)
	assert.Equal(t, "the-raven", book.Slug)
	assert.NotContains(t, book.Description, "<script>") // Sanitized

	// Author counter flows through the pipeline
	updated, err := svc.users.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalBooks)
}

func TestBookService_Create_UnknownAuthor(t *testing.T) {
	svc := setupServices(t)

	_, err := svc.books.Create(context.Background(), "user-missing", CreateBookRequest{Title: "X"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestBookService_Update_OwnerOnly(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	other := registerUser(t, svc, "other@example.com", "other")
	book := createBook(t, svc, author.ID, "Original")

	newTitle := "Revised"
	_, err := svc.books.Update(ctx, other.ID, book.ID, UpdateBookRequest{Title: &newTitle})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	updated, err := svc.books.Update(ctx, author.ID, book.ID, UpdateBookRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Revised", updated.Title)
	assert.Equal(t, "revised", updated.Slug)
	assert.Equal(t, "A test book", updated.Description) // Unchanged
}

func TestBookService_Delete_OwnerOnly(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	other := registerUser(t, svc, "other@example.com", "other")
	book := createBook(t, svc, author.ID, "Doomed")

	err := svc.books.Delete(ctx, other.ID, book.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, svc.books.Delete(ctx, author.ID, book.ID))

	_, err = svc.books.Get(ctx, "", book.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Counter decremented back
	updated, err := svc.users.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, updated.TotalBooks)
}

func TestBookService_Get_HydratesAuthorAndViewerState(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	reader := registerUser(t, svc, "reader@example.com", "reader")
	book := createBook(t, svc, author.ID, "The Raven")

	_, err := svc.social.ToggleBookLike(ctx, reader.ID, book.ID)
	require.NoError(t, err)
	require.NoError(t, svc.social.FollowBook(ctx, reader.ID, book.ID))

	view, err := svc.books.Get(ctx, reader.ID, book.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Author)
	assert.Equal(t, "author", view.Author.Username)
	assert.Empty(t, view.Author.Email) // Public profile only
	assert.True(t, view.LikedByMe)
	assert.True(t, view.FollowedBy)
	assert.Equal(t, 1, view.Book.TotalLikes)
	assert.Equal(t, 1, view.Book.TotalFollows)

	// Anonymous view
	anon, err := svc.books.Get(ctx, "", book.ID)
	require.NoError(t, err)
	assert.False(t, anon.LikedByMe)
	assert.False(t, anon.FollowedBy)
}

func TestBookService_ListByAuthor(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	other := registerUser(t, svc, "other@example.com", "other")
	createBook(t, svc, author.ID, "One")
	createBook(t, svc, author.ID, "Two")
	createBook(t, svc, other.ID, "Theirs")

	books, err := svc.books.ListByAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	all, err := svc.books.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
