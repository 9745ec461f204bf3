package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/fablepress/fablepress-server/internal/domain"
	domainerrors "github.com/fablepress/fablepress-server/internal/errors"
	"github.com/fablepress/fablepress-server/internal/id"
	"github.com/fablepress/fablepress-server/internal/sanitize"
	"github.com/fablepress/fablepress-server/internal/store"
)

// ReviewService manages book reviews.
type ReviewService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(st *store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: st, logger: logger}
}

// CreateReviewRequest contains the data for a new review.
type CreateReviewRequest struct {
	BookID  string `json:"book_id" validate:"required"`
	Content string `json:"content" validate:"required,max=10000"`
}

// Create posts a review under a book.
func (s *ReviewService) Create(ctx context.Context, userID string, req CreateReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		AuthorID: userID,
		BookID:   req.BookID,
		Content:  sanitize.HTML(req.Content),
	}
	review.ID = reviewID
	review.InitTimestamps()

	err = s.store.Mutate(ctx, func(tx *store.Tx) error {
		if _, err := store.Get(tx, store.Users, userID); err != nil {
			return domainerrors.Unauthorized("unknown author")
		}
		if _, err := store.Get(tx, store.Books, req.BookID); err != nil {
			return domainerrors.NotFound("book not found")
		}
		return store.Insert(tx, store.Reviews, reviewID, review)
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Review created", "review_id", reviewID, "book_id", req.BookID)
	}
	return review, nil
}

// Delete removes a review. Only the author may delete. The cascade removes
// the review's likes and activity rows.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		review, err := store.Get(tx, store.Reviews, reviewID)
		if err != nil {
			return err
		}
		if review.AuthorID != userID {
			return domainerrors.Forbidden("only the author can delete a review")
		}
		return store.Delete(tx, store.Reviews, reviewID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("review not found")
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("Review deleted", "review_id", reviewID)
	}
	return nil
}

// ReviewView is a review hydrated with its author's public profile and
// viewer state.
type ReviewView struct {
	Review    *domain.Review `json:"review"`
	Author    *domain.User   `json:"author,omitempty"`
	LikedByMe bool           `json:"liked_by_me"`
}

// ListByBook returns a book's reviews newest first, hydrated with authors
// and viewer like state. viewerID may be empty.
func (s *ReviewService) ListByBook(ctx context.Context, viewerID, bookID string) ([]*ReviewView, error) {
	var views []*ReviewView
	err := s.store.View(ctx, func(tx *store.Tx) error {
		reviews, err := store.ScanIndex(tx, store.Reviews, "book", bookID)
		if err != nil {
			return err
		}
		sort.Slice(reviews, func(i, j int) bool {
			if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
				return reviews[i].ID > reviews[j].ID
			}
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		})

		views = make([]*ReviewView, 0, len(reviews))
		for _, r := range reviews {
			view := &ReviewView{Review: r}

			author, err := store.Get(tx, store.Users, r.AuthorID)
			if err == nil {
				view.Author = author.PublicProfile()
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			if viewerID != "" {
				view.LikedByMe, err = hasRow(tx, store.ReviewLikes, "user_target", viewerID+":"+r.ID)
				if err != nil {
					return err
				}
			}
			views = append(views, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
