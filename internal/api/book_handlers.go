package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Publish a book",
		Description: "Creates a new book owned by the authenticated user",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Lists all books, optionally filtered by author",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get a book",
		Description: "Returns a book with its author's public profile and viewer state",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update a book",
		Description: "Updates book metadata. Only the owning author may update.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete a book",
		Description: "Deletes a book and all its chapters, comments, reviews, likes, follows, and activities. Only the owning author may delete.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID          string    `json:"id" doc:"Book ID"`
	AuthorID    string    `json:"author_id" doc:"Owning author's user ID"`
	Title       string    `json:"title" doc:"Book title"`
	Slug        string    `json:"slug" doc:"URL-friendly display slug derived from the title"`
	Description string    `json:"description,omitempty" doc:"Book description, sanitized HTML"`
	CoverURL    string    `json:"cover_url,omitempty" doc:"Cover image URL"`
	CreatedAt   time.Time `json:"created_at" doc:"Publish timestamp"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`

	TotalChapters int `json:"total_chapters" doc:"Chapters in this book"`
	TotalWords    int `json:"total_words" doc:"Words across all chapters"`
	TotalLikes    int `json:"total_likes" doc:"Likes on the book"`
	TotalComments int `json:"total_comments" doc:"Comments across all chapters"`
	TotalReviews  int `json:"total_reviews" doc:"Reviews on the book"`
	TotalFollows  int `json:"total_follows" doc:"Users following the book"`
}

// BookViewResponse is a book hydrated with author and viewer state.
type BookViewResponse struct {
	Book         BookResponse  `json:"book" doc:"The book"`
	Author       *UserResponse `json:"author,omitempty" doc:"Author public profile, absent if the account was deleted"`
	LikedByMe    bool          `json:"liked_by_me" doc:"Whether the viewer likes this book"`
	FollowedByMe bool          `json:"followed_by_me" doc:"Whether the viewer follows this book"`
}

// CreateBookRequest is the request body for publishing a book.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,max=200" doc:"Book title"`
	Description string `json:"description,omitempty" validate:"omitempty,max=5000" doc:"Book description"`
	CoverURL    string `json:"cover_url,omitempty" validate:"omitempty,url,max=500" doc:"Cover image URL"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// UpdateBookRequest is the request body for book updates. Absent fields are
// left unchanged.
type UpdateBookRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200" doc:"New title"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000" doc:"New description"`
	CoverURL    *string `json:"cover_url,omitempty" validate:"omitempty,url,max=500" doc:"New cover image URL"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" maxLength:"100" doc:"Book ID"`
	Body UpdateBookRequest
}

// BookIDInput contains the book ID path parameter.
type BookIDInput struct {
	ID string `path:"id" maxLength:"100" doc:"Book ID"`
}

// ListBooksInput contains list filter parameters.
type ListBooksInput struct {
	AuthorID string `query:"author_id" doc:"Only books by this author"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookViewOutput wraps a hydrated book for Huma.
type BookViewOutput struct {
	Body BookViewResponse
}

// BookListResponse contains a list of books.
type BookListResponse struct {
	Books []BookResponse `json:"books" doc:"Books"`
	Total int            `json:"total" doc:"Number of books returned"`
}

// BookListOutput wraps the book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Create(ctx, userID, service.CreateBookRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		CoverURL:    input.Body.CoverURL,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	var (
		books []*domain.Book
		err   error
	)
	if input.AuthorID != "" {
		books, err = s.services.Book.ListByAuthor(ctx, input.AuthorID)
	} else {
		books, err = s.services.Book.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	resp := BookListResponse{Books: make([]BookResponse, 0, len(books)), Total: len(books)}
	for _, book := range books {
		resp.Books = append(resp.Books, mapBook(book))
	}

	return &BookListOutput{Body: resp}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookViewOutput, error) {
	view, err := s.services.Book.Get(ctx, viewerID(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	body := BookViewResponse{
		Book:         mapBook(view.Book),
		LikedByMe:    view.LikedByMe,
		FollowedByMe: view.FollowedBy,
	}
	if view.Author != nil {
		author := mapUser(view.Author)
		body.Author = &author
	}

	return &BookViewOutput{Body: body}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Update(ctx, userID, input.ID, service.UpdateBookRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		CoverURL:    input.Body.CoverURL,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Helpers ===

func mapBook(b *domain.Book) BookResponse {
	return BookResponse{
		ID:            b.ID,
		AuthorID:      b.AuthorID,
		Title:         b.Title,
		Slug:          b.Slug,
		Description:   b.Description,
		CoverURL:      b.CoverURL,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		TotalChapters: b.TotalChapters,
		TotalWords:    b.TotalWords,
		TotalLikes:    b.TotalLikes,
		TotalComments: b.TotalComments,
		TotalReviews:  b.TotalReviews,
		TotalFollows:  b.TotalFollows,
	}
}
