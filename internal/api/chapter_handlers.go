package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/service"
)

func (s *Server) registerChapterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createChapter",
		Method:      http.MethodPost,
		Path:        "/api/v1/chapters",
		Summary:     "Publish a chapter",
		Description: "Adds a chapter to a book. Only the book's author may add chapters.",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChapter",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Get a chapter",
		Description: "Returns a chapter with viewer state",
		Tags:        []string{"Chapters"},
	}, s.handleGetChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChapterPage",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters/{id}/page",
		Summary:     "Get chapter reading page",
		Description: "Returns a chapter with its book, author, position, and neighboring chapter IDs",
		Tags:        []string{"Chapters"},
	}, s.handleGetChapterPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateChapter",
		Method:      http.MethodPatch,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Update a chapter",
		Description: "Updates a chapter. A content change re-counts words and adjusts book and author totals.",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteChapter",
		Method:      http.MethodDelete,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Delete a chapter",
		Description: "Deletes a chapter and its comments, likes, and activities. Only the owning author may delete.",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookChapters",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/chapters",
		Summary:     "List a book's chapters",
		Description: "Returns a book's chapters in reading order",
		Tags:        []string{"Chapters"},
	}, s.handleListBookChapters)
}

// === DTOs ===

// ChapterResponse contains chapter data in API responses.
type ChapterResponse struct {
	ID        string    `json:"id" doc:"Chapter ID"`
	BookID    string    `json:"book_id" doc:"Parent book ID"`
	AuthorID  string    `json:"author_id" doc:"Author's user ID"`
	Title     string    `json:"title" doc:"Chapter title"`
	Content   string    `json:"content" doc:"Chapter content"`
	CreatedAt time.Time `json:"created_at" doc:"Publish timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update timestamp"`

	TotalWords    int `json:"total_words" doc:"Word count of the content"`
	TotalLikes    int `json:"total_likes" doc:"Likes on the chapter"`
	TotalComments int `json:"total_comments" doc:"Comments on the chapter"`
}

// ChapterViewResponse is a chapter hydrated with viewer state.
type ChapterViewResponse struct {
	Chapter   ChapterResponse `json:"chapter" doc:"The chapter"`
	LikedByMe bool            `json:"liked_by_me" doc:"Whether the viewer likes this chapter"`
}

// ChapterPageResponse is everything a reading page needs.
type ChapterPageResponse struct {
	Chapter       ChapterResponse `json:"chapter" doc:"The chapter"`
	Book          BookResponse    `json:"book" doc:"Parent book"`
	Author        *UserResponse   `json:"author,omitempty" doc:"Author public profile, absent if the account was deleted"`
	ChapterNumber int             `json:"chapter_number" doc:"1-based position within the book"`
	PrevChapterID string          `json:"prev_chapter_id,omitempty" doc:"Previous chapter ID, absent on the first chapter"`
	NextChapterID string          `json:"next_chapter_id,omitempty" doc:"Next chapter ID, absent on the last chapter"`
	LikedByMe     bool            `json:"liked_by_me" doc:"Whether the viewer likes this chapter"`
}

// CreateChapterRequest is the request body for publishing a chapter.
type CreateChapterRequest struct {
	BookID  string `json:"book_id" validate:"required" doc:"Parent book ID"`
	Title   string `json:"title" validate:"required,max=200" doc:"Chapter title"`
	Content string `json:"content" validate:"required" doc:"Chapter content"`
}

// CreateChapterInput wraps the create request for Huma.
type CreateChapterInput struct {
	Body CreateChapterRequest
}

// UpdateChapterRequest is the request body for chapter updates. Absent
// fields are left unchanged.
type UpdateChapterRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200" doc:"New title"`
	Content *string `json:"content,omitempty" doc:"New content"`
}

// UpdateChapterInput wraps the update request for Huma.
type UpdateChapterInput struct {
	ID   string `path:"id" maxLength:"100" doc:"Chapter ID"`
	Body UpdateChapterRequest
}

// ChapterIDInput contains the chapter ID path parameter.
type ChapterIDInput struct {
	ID string `path:"id" maxLength:"100" doc:"Chapter ID"`
}

// ChapterOutput wraps a single chapter for Huma.
type ChapterOutput struct {
	Body ChapterResponse
}

// ChapterViewOutput wraps a hydrated chapter for Huma.
type ChapterViewOutput struct {
	Body ChapterViewResponse
}

// ChapterPageOutput wraps a reading page for Huma.
type ChapterPageOutput struct {
	Body ChapterPageResponse
}

// ChapterListResponse contains a book's chapters.
type ChapterListResponse struct {
	Chapters []ChapterResponse `json:"chapters" doc:"Chapters in reading order"`
	Total    int               `json:"total" doc:"Number of chapters returned"`
}

// ChapterListOutput wraps the chapter list for Huma.
type ChapterListOutput struct {
	Body ChapterListResponse
}

// === Handlers ===

func (s *Server) handleCreateChapter(ctx context.Context, input *CreateChapterInput) (*ChapterOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	chapter, err := s.services.Chapter.Create(ctx, userID, service.CreateChapterRequest{
		BookID:  input.Body.BookID,
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &ChapterOutput{Body: mapChapter(chapter)}, nil
}

func (s *Server) handleGetChapter(ctx context.Context, input *ChapterIDInput) (*ChapterViewOutput, error) {
	view, err := s.services.Chapter.Get(ctx, viewerID(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	return &ChapterViewOutput{
		Body: ChapterViewResponse{
			Chapter:   mapChapter(view.Chapter),
			LikedByMe: view.LikedByMe,
		},
	}, nil
}

func (s *Server) handleGetChapterPage(ctx context.Context, input *ChapterIDInput) (*ChapterPageOutput, error) {
	page, err := s.services.Chapter.GetPageData(ctx, viewerID(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	body := ChapterPageResponse{
		Chapter:       mapChapter(page.Chapter),
		Book:          mapBook(page.Book),
		ChapterNumber: page.ChapterNumber,
		PrevChapterID: page.PrevChapterID,
		NextChapterID: page.NextChapterID,
		LikedByMe:     page.LikedByMe,
	}
	if page.Author != nil {
		author := mapUser(page.Author)
		body.Author = &author
	}

	return &ChapterPageOutput{Body: body}, nil
}

func (s *Server) handleUpdateChapter(ctx context.Context, input *UpdateChapterInput) (*ChapterOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	chapter, err := s.services.Chapter.Update(ctx, userID, input.ID, service.UpdateChapterRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &ChapterOutput{Body: mapChapter(chapter)}, nil
}

func (s *Server) handleDeleteChapter(ctx context.Context, input *ChapterIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Chapter.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Chapter deleted"}}, nil
}

func (s *Server) handleListBookChapters(ctx context.Context, input *BookIDInput) (*ChapterListOutput, error) {
	chapters, err := s.services.Chapter.ListByBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := ChapterListResponse{Chapters: make([]ChapterResponse, 0, len(chapters)), Total: len(chapters)}
	for _, chapter := range chapters {
		resp.Chapters = append(resp.Chapters, mapChapter(chapter))
	}

	return &ChapterListOutput{Body: resp}, nil
}

// === Helpers ===

func mapChapter(c *domain.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:            c.ID,
		BookID:        c.BookID,
		AuthorID:      c.AuthorID,
		Title:         c.Title,
		Content:       c.Content,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		TotalWords:    c.TotalWords,
		TotalLikes:    c.TotalLikes,
		TotalComments: c.TotalComments,
	}
}
