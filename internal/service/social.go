package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fablepress/fablepress-server/internal/domain"
	domainerrors "github.com/fablepress/fablepress-server/internal/errors"
	"github.com/fablepress/fablepress-server/internal/id"
	"github.com/fablepress/fablepress-server/internal/store"
)

// SocialService manages like and follow relations. Every toggle is one
// transaction: existence check, insert or delete, and the counter updates
// that follow from it all commit or abort together.
type SocialService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(st *store.Store, logger *slog.Logger) *SocialService {
	return &SocialService{store: st, logger: logger}
}

// ToggleResult reports the relation's state after a toggle.
type ToggleResult struct {
	Active bool `json:"active"` // true if the like/follow now exists
}

// ToggleBookLike likes a book, or removes the like if it already exists.
func (s *SocialService) ToggleBookLike(ctx context.Context, userID, bookID string) (*ToggleResult, error) {
	result := &ToggleResult{}
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		book, err := store.Get(tx, store.Books, bookID)
		if err != nil {
			return domainerrors.NotFound("book not found")
		}

		existing, err := store.GetByIndex(tx, store.BookLikes, "user_target", userID+":"+bookID)
		if err == nil {
			return store.Delete(tx, store.BookLikes, existing.ID)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		likeID, err := id.Generate(id.PrefixLike)
		if err != nil {
			return err
		}
		like := &domain.BookLike{UserID: userID, BookID: bookID, AuthorID: book.AuthorID}
		like.ID = likeID
		like.InitTimestamps()
		result.Active = true
		return store.Insert(tx, store.BookLikes, likeID, like)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ToggleChapterLike likes a chapter, or removes the like if it already
// exists. Chapter likes roll up into the book's like total as well.
func (s *SocialService) ToggleChapterLike(ctx context.Context, userID, chapterID string) (*ToggleResult, error) {
	result := &ToggleResult{}
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		chapter, err := store.Get(tx, store.Chapters, chapterID)
		if err != nil {
			return domainerrors.NotFound("chapter not found")
		}

		existing, err := store.GetByIndex(tx, store.ChapterLikes, "user_target", userID+":"+chapterID)
		if err == nil {
			return store.Delete(tx, store.ChapterLikes, existing.ID)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		likeID, err := id.Generate(id.PrefixLike)
		if err != nil {
			return err
		}
		like := &domain.ChapterLike{
			UserID:    userID,
			ChapterID: chapterID,
			BookID:    chapter.BookID,
			AuthorID:  chapter.AuthorID,
		}
		like.ID = likeID
		like.InitTimestamps()
		result.Active = true
		return store.Insert(tx, store.ChapterLikes, likeID, like)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ToggleCommentLike likes a comment, or removes the like if it already exists.
func (s *SocialService) ToggleCommentLike(ctx context.Context, userID, commentID string) (*ToggleResult, error) {
	result := &ToggleResult{}
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		comment, err := store.Get(tx, store.Comments, commentID)
		if err != nil {
			return domainerrors.NotFound("comment not found")
		}

		existing, err := store.GetByIndex(tx, store.CommentLikes, "user_target", userID+":"+commentID)
		if err == nil {
			return store.Delete(tx, store.CommentLikes, existing.ID)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		likeID, err := id.Generate(id.PrefixLike)
		if err != nil {
			return err
		}
		like := &domain.CommentLike{UserID: userID, CommentID: commentID, AuthorID: comment.AuthorID}
		like.ID = likeID
		like.InitTimestamps()
		result.Active = true
		return store.Insert(tx, store.CommentLikes, likeID, like)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ToggleReviewLike likes a review, or removes the like if it already exists.
func (s *SocialService) ToggleReviewLike(ctx context.Context, userID, reviewID string) (*ToggleResult, error) {
	result := &ToggleResult{}
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		review, err := store.Get(tx, store.Reviews, reviewID)
		if err != nil {
			return domainerrors.NotFound("review not found")
		}

		existing, err := store.GetByIndex(tx, store.ReviewLikes, "user_target", userID+":"+reviewID)
		if err == nil {
			return store.Delete(tx, store.ReviewLikes, existing.ID)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		likeID, err := id.Generate(id.PrefixLike)
		if err != nil {
			return err
		}
		like := &domain.ReviewLike{UserID: userID, ReviewID: reviewID, AuthorID: review.AuthorID}
		like.ID = likeID
		like.InitTimestamps()
		result.Active = true
		return store.Insert(tx, store.ReviewLikes, likeID, like)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FollowAuthor makes followerID follow the author authorID.
// Following yourself or someone you already follow is rejected.
func (s *SocialService) FollowAuthor(ctx context.Context, followerID, authorID string) error {
	if followerID == authorID {
		return domainerrors.Validation("cannot follow yourself")
	}

	return s.store.Mutate(ctx, func(tx *store.Tx) error {
		if _, err := store.Get(tx, store.Users, authorID); err != nil {
			return domainerrors.NotFound("author not found")
		}

		followID, err := id.Generate(id.PrefixFollow)
		if err != nil {
			return err
		}
		follow := &domain.AuthorFollow{FollowerID: followerID, FollowingID: authorID}
		follow.ID = followID
		follow.InitTimestamps()

		if err := store.Insert(tx, store.AuthorFollows, followID, follow); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domainerrors.Conflict("already following this author")
			}
			return err
		}
		return nil
	})
}

// UnfollowAuthor removes an author follow. Not following is not an error.
func (s *SocialService) UnfollowAuthor(ctx context.Context, followerID, authorID string) error {
	return s.store.Mutate(ctx, func(tx *store.Tx) error {
		existing, err := store.GetByIndex(tx, store.AuthorFollows, "pair", followerID+":"+authorID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		return store.Delete(tx, store.AuthorFollows, existing.ID)
	})
}

// FollowBook makes followerID follow the book bookID.
func (s *SocialService) FollowBook(ctx context.Context, followerID, bookID string) error {
	return s.store.Mutate(ctx, func(tx *store.Tx) error {
		if _, err := store.Get(tx, store.Books, bookID); err != nil {
			return domainerrors.NotFound("book not found")
		}

		followID, err := id.Generate(id.PrefixFollow)
		if err != nil {
			return err
		}
		follow := &domain.BookFollow{FollowerID: followerID, FollowingID: bookID}
		follow.ID = followID
		follow.InitTimestamps()

		if err := store.Insert(tx, store.BookFollows, followID, follow); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domainerrors.Conflict("already following this book")
			}
			return err
		}
		return nil
	})
}

// UnfollowBook removes a book follow. Not following is not an error.
func (s *SocialService) UnfollowBook(ctx context.Context, followerID, bookID string) error {
	return s.store.Mutate(ctx, func(tx *store.Tx) error {
		existing, err := store.GetByIndex(tx, store.BookFollows, "pair", followerID+":"+bookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		return store.Delete(tx, store.BookFollows, existing.ID)
	})
}
