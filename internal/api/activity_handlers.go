package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/service"
)

func (s *Server) registerActivityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Get activity feed",
		Description: "Returns publish events newest first, globally or for one author, with cursor pagination",
		Tags:        []string{"Feed"},
	}, s.handleGetFeed)
}

// === DTOs ===

// GetFeedInput contains feed query parameters.
type GetFeedInput struct {
	AuthorID string    `query:"author_id" doc:"Only events by this author"`
	Limit    int       `query:"limit" minimum:"1" maximum:"100" doc:"Max entries (default 20, max 100)"`
	Before   time.Time `query:"before" doc:"Only events strictly before this timestamp (RFC 3339)"`
}

// FeedEntryResponse is one publish event hydrated with its referenced
// documents. Chapter, comment, and review are populated per the event type.
type FeedEntryResponse struct {
	ID        string    `json:"id" doc:"Activity ID"`
	Type      string    `json:"type" doc:"Event type: publish_book, publish_chapter, publish_comment, or publish_review"`
	CreatedAt time.Time `json:"created_at" doc:"Event timestamp"`

	Author  UserResponse     `json:"author" doc:"Publishing author"`
	Book    BookResponse     `json:"book" doc:"Book the event belongs to"`
	Chapter *ChapterResponse `json:"chapter,omitempty" doc:"Published chapter"`
	Comment *CommentResponse `json:"comment,omitempty" doc:"Published comment"`
	Review  *ReviewResponse  `json:"review,omitempty" doc:"Published review"`
}

// FeedResponse contains a page of feed entries.
type FeedResponse struct {
	Entries []FeedEntryResponse `json:"entries" doc:"Events newest first"`
	Total   int                 `json:"total" doc:"Number of entries returned"`
}

// FeedOutput wraps the feed response for Huma.
type FeedOutput struct {
	Body FeedResponse
}

// === Handlers ===

func (s *Server) handleGetFeed(ctx context.Context, input *GetFeedInput) (*FeedOutput, error) {
	req := service.FeedRequest{
		AuthorID: input.AuthorID,
		Limit:    input.Limit,
	}
	if !input.Before.IsZero() {
		before := input.Before
		req.Before = &before
	}

	entries, err := s.services.Activity.Feed(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := FeedResponse{Entries: make([]FeedEntryResponse, 0, len(entries)), Total: len(entries)}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, mapFeedEntry(entry))
	}

	return &FeedOutput{Body: resp}, nil
}

// === Helpers ===

func mapFeedEntry(e *domain.FeedEntry) FeedEntryResponse {
	out := FeedEntryResponse{
		ID:        e.Activity.ID,
		Type:      string(e.Activity.Type),
		CreatedAt: e.Activity.CreatedAt,
		Author:    mapUser(e.Author),
		Book:      mapBook(e.Book),
	}
	if e.Chapter != nil {
		chapter := mapChapter(e.Chapter)
		out.Chapter = &chapter
	}
	if e.Comment != nil {
		comment := mapComment(e.Comment)
		out.Comment = &comment
	}
	if e.Review != nil {
		review := mapReview(e.Review)
		out.Review = &review
	}
	return out
}
