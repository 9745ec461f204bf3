package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews",
		Summary:     "Post a review",
		Description: "Posts a review under a book",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Delete a review",
		Description: "Deletes a review with its likes and activities, adjusting counters. Only the review's author may delete.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "List a book's reviews",
		Description: "Returns a book's reviews newest first, hydrated with authors and viewer state",
		Tags:        []string{"Reviews"},
	}, s.handleListBookReviews)
}

// === DTOs ===

// ReviewResponse contains review data in API responses.
type ReviewResponse struct {
	ID        string    `json:"id" doc:"Review ID"`
	AuthorID  string    `json:"author_id" doc:"Reviewer's user ID"`
	BookID    string    `json:"book_id" doc:"Book reviewed"`
	Content   string    `json:"content" doc:"Review content, sanitized HTML"`
	CreatedAt time.Time `json:"created_at" doc:"Post timestamp"`

	TotalLikes int `json:"total_likes" doc:"Likes on the review"`
}

// ReviewViewResponse is a review hydrated with author and viewer state.
type ReviewViewResponse struct {
	Review    ReviewResponse `json:"review" doc:"The review"`
	Author    *UserResponse  `json:"author,omitempty" doc:"Reviewer public profile, absent if the account was deleted"`
	LikedByMe bool           `json:"liked_by_me" doc:"Whether the viewer likes this review"`
}

// CreateReviewRequest is the request body for posting a review.
type CreateReviewRequest struct {
	BookID  string `json:"book_id" validate:"required" doc:"Book to review"`
	Content string `json:"content" validate:"required,max=10000" doc:"Review content"`
}

// CreateReviewInput wraps the create request for Huma.
type CreateReviewInput struct {
	Body CreateReviewRequest
}

// ReviewIDInput contains the review ID path parameter.
type ReviewIDInput struct {
	ID string `path:"id" maxLength:"100" doc:"Review ID"`
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// ReviewListResponse contains a book's reviews.
type ReviewListResponse struct {
	Reviews []ReviewViewResponse `json:"reviews" doc:"Reviews newest first"`
	Total   int                  `json:"total" doc:"Number of reviews returned"`
}

// ReviewListOutput wraps the review list for Huma.
type ReviewListOutput struct {
	Body ReviewListResponse
}

// === Handlers ===

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.Create(ctx, userID, service.CreateReviewRequest{
		BookID:  input.Body.BookID,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: mapReview(review)}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Review deleted"}}, nil
}

func (s *Server) handleListBookReviews(ctx context.Context, input *BookIDInput) (*ReviewListOutput, error) {
	views, err := s.services.Review.ListByBook(ctx, viewerID(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	resp := ReviewListResponse{Reviews: make([]ReviewViewResponse, 0, len(views)), Total: len(views)}
	for _, view := range views {
		item := ReviewViewResponse{
			Review:    mapReview(view.Review),
			LikedByMe: view.LikedByMe,
		}
		if view.Author != nil {
			author := mapUser(view.Author)
			item.Author = &author
		}
		resp.Reviews = append(resp.Reviews, item)
	}

	return &ReviewListOutput{Body: resp}, nil
}

// === Helpers ===

func mapReview(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		AuthorID:   r.AuthorID,
		BookID:     r.BookID,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
		TotalLikes: r.TotalLikes,
	}
}
