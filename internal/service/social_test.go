package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fablepress/fablepress-server/internal/errors"
)

func TestSocialService_ToggleBookLike(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	reader := registerUser(t, svc, "reader@example.com", "reader")
	book := createBook(t, svc, author.ID, "The Raven")

	result, err := svc.social.ToggleBookLike(ctx, reader.ID, book.ID)
	require.NoError(t, err)
	assert.True(t, result.Active)

	view, err := svc.books.Get(ctx, reader.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Book.TotalLikes)
	assert.True(t, view.LikedByMe)

	authorUser, err := svc.users.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, authorUser.TotalLikes)

	// Toggle back off
	result, err = svc.social.ToggleBookLike(ctx, reader.ID, book.ID)
	require.NoError(t, err)
	assert.False(t, result.Active)

	view, err = svc.books.Get(ctx, reader.ID, book.ID)
	require.NoError(t, err)
	assert.Zero(t, view.Book.TotalLikes)
	assert.False(t, view.LikedByMe)

	authorUser, err = svc.users.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, authorUser.TotalLikes)
}

func TestSocialService_ToggleChapterLike_RollsUpToBook(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	reader := registerUser(t, svc, "reader@example.com", "reader")
	book := createBook(t, svc, author.ID, "The Raven")
	chapter := createChapter(t, svc, author.ID, book.ID, "I", "text")

	_, err := svc.social.ToggleChapterLike(ctx, reader.ID, chapter.ID)
	require.NoError(t, err)

	chapterView, err := svc.chapters.Get(ctx, reader.ID, chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, chapterView.Chapter.TotalLikes)
	assert.True(t, chapterView.LikedByMe)

	// Chapter likes also count on the book
	bookView, err := svc.books.Get(ctx, "", book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bookView.Book.TotalLikes)
}

func TestSocialService_Toggle_MissingTarget(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	reader := registerUser(t, svc, "reader@example.com", "reader")

	_, err := svc.social.ToggleBookLike(ctx, reader.ID, "book-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.social.ToggleChapterLike(ctx, reader.ID, "chap-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSocialService_FollowAuthor(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	reader := registerUser(t, svc, "reader@example.com", "reader")

	require.NoError(t, svc.social.FollowAuthor(ctx, reader.ID, author.ID))

	authorUser, err := svc.users.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, authorUser.TotalFollowers)

	readerUser, err := svc.users.Get(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, readerUser.TotalFollowing)

	// Double follow is a conflict
	err = svc.social.FollowAuthor(ctx, reader.ID, author.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	// Self follow is rejected
	err = svc.social.FollowAuthor(ctx, reader.ID, reader.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	require.NoError(t, svc.social.UnfollowAuthor(ctx, reader.ID, author.ID))

	authorUser, err = svc.users.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, authorUser.TotalFollowers)

	// Unfollowing again is a no-op
	assert.NoError(t, svc.social.UnfollowAuthor(ctx, reader.ID, author.ID))
}

func TestSocialService_FollowBook(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	reader := registerUser(t, svc, "reader@example.com", "reader")
	book := createBook(t, svc, author.ID, "The Raven")

	require.NoError(t, svc.social.FollowBook(ctx, reader.ID, book.ID))

	view, err := svc.books.Get(ctx, "", book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Book.TotalFollows)

	err = svc.social.FollowBook(ctx, reader.ID, book.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	require.NoError(t, svc.social.UnfollowBook(ctx, reader.ID, book.ID))

	view, err = svc.books.Get(ctx, "", book.ID)
	require.NoError(t, err)
	assert.Zero(t, view.Book.TotalFollows)
}

func TestUserService_DeleteAccount_RemovesRelations(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, svc, "author@example.com", "author")
	reader := registerUser(t, svc, "reader@example.com", "reader")
	book := createBook(t, svc, author.ID, "The Raven")

	_, err := svc.social.ToggleBookLike(ctx, reader.ID, book.ID)
	require.NoError(t, err)
	require.NoError(t, svc.social.FollowAuthor(ctx, reader.ID, author.ID))

	require.NoError(t, svc.users.DeleteAccount(ctx, reader.ID))

	// The reader's like and follow are gone and counters reflect it
	view, err := svc.books.Get(ctx, "", book.ID)
	require.NoError(t, err)
	assert.Zero(t, view.Book.TotalLikes)

	authorUser, err := svc.users.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, authorUser.TotalFollowers)
	assert.Zero(t, authorUser.TotalLikes)
}
