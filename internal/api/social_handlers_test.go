package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleBookLike_OnAndOff(t *testing.T) {
	ts := setupTestServer(t)
	authorToken, _ := ts.registerTestUser(t, "author@example.com", "author")
	readerToken, _ := ts.registerTestUser(t, "reader@example.com", "reader")

	bookID := ts.createTestBook(t, authorToken, "Toggled")

	resp := ts.api.Post("/api/v1/books/"+bookID+"/like", bearer(readerToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var toggle testEnvelope[ToggleResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &toggle))
	assert.True(t, toggle.Data.Active)

	resp = ts.api.Post("/api/v1/books/"+bookID+"/like", bearer(readerToken))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &toggle))
	assert.False(t, toggle.Data.Active)

	// Both toggles flowed through the counter pipeline.
	resp = ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code)

	var book testEnvelope[BookViewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.Zero(t, book.Data.Book.TotalLikes)
}

func TestToggleLike_MissingTarget(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "liker@example.com", "liker")

	resp := ts.api.Post("/api/v1/chapters/chapter_missing/like", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestFollowAuthor_Lifecycle(t *testing.T) {
	ts := setupTestServer(t)
	_, authorID := ts.registerTestUser(t, "famous@example.com", "famous")
	fanToken, _ := ts.registerTestUser(t, "fan@example.com", "fan")

	resp := ts.api.Post("/api/v1/authors/"+authorID+"/follow", bearer(fanToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Following twice is a conflict.
	resp = ts.api.Post("/api/v1/authors/"+authorID+"/follow", bearer(fanToken))
	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/users/famous")
	require.Equal(t, http.StatusOK, resp.Code)

	var profile testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profile))
	assert.Equal(t, 1, profile.Data.Stats.TotalFollowers)

	resp = ts.api.Delete("/api/v1/authors/"+authorID+"/follow", bearer(fanToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Unfollowing again is a no-op.
	resp = ts.api.Delete("/api/v1/authors/"+authorID+"/follow", bearer(fanToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/users/famous")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profile))
	assert.Zero(t, profile.Data.Stats.TotalFollowers)
}

func TestFollowAuthor_SelfFollowRejected(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.registerTestUser(t, "narcissus@example.com", "narcissus")

	resp := ts.api.Post("/api/v1/authors/"+userID+"/follow", bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestFollowBook_CountsFollowers(t *testing.T) {
	ts := setupTestServer(t)
	authorToken, _ := ts.registerTestUser(t, "author@example.com", "author")
	fanToken, _ := ts.registerTestUser(t, "fan@example.com", "fan")

	bookID := ts.createTestBook(t, authorToken, "Followed")

	resp := ts.api.Post("/api/v1/books/"+bookID+"/follow", bearer(fanToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/books/"+bookID, bearer(fanToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var book testEnvelope[BookViewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.Equal(t, 1, book.Data.Book.TotalFollows)
	assert.True(t, book.Data.FollowedByMe)
}

func TestGetFeed_NewestFirstWithCursor(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.registerTestUser(t, "busy@example.com", "busy")

	bookID := ts.createTestBook(t, token, "Feed Source")
	ts.createTestChapter(t, token, bookID, "One", "alpha")
	ts.createTestChapter(t, token, bookID, "Two", "beta")

	resp := ts.api.Get("/api/v1/feed")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var feed testEnvelope[FeedResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	require.Len(t, feed.Data.Entries, 3)
	assert.Equal(t, "publish_chapter", feed.Data.Entries[0].Type)
	assert.Equal(t, "Two", feed.Data.Entries[0].Chapter.Title)
	assert.Equal(t, "publish_book", feed.Data.Entries[2].Type)
	assert.Equal(t, "busy", feed.Data.Entries[0].Author.Username)

	// Page two: strictly before the last entry of page one.
	resp = ts.api.Get("/api/v1/feed?limit=2")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	require.Len(t, feed.Data.Entries, 2)

	cursor := feed.Data.Entries[1].CreatedAt
	resp = ts.api.Get("/api/v1/feed?limit=2&before=" + cursor.UTC().Format("2006-01-02T15:04:05.999999999Z"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	require.Len(t, feed.Data.Entries, 1)
	assert.Equal(t, "publish_book", feed.Data.Entries[0].Type)

	// Per-author filter.
	resp = ts.api.Get("/api/v1/feed?author_id=" + userID)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	assert.Equal(t, 3, feed.Data.Total)

	resp = ts.api.Get("/api/v1/feed?author_id=user_nobody")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	assert.Zero(t, feed.Data.Total)
}

func TestDeleteBook_RemovesFeedEntries(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "cleaner@example.com", "cleaner")

	bookID := ts.createTestBook(t, token, "Ephemeral")
	ts.createTestChapter(t, token, bookID, "One", "gone soon")

	resp := ts.api.Delete("/api/v1/books/"+bookID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/feed")
	require.Equal(t, http.StatusOK, resp.Code)

	var feed testEnvelope[FeedResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	assert.Empty(t, feed.Data.Entries)
}
