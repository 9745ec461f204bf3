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

// CommentService manages threaded comments on chapters.
type CommentService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(st *store.Store, logger *slog.Logger) *CommentService {
	return &CommentService{store: st, logger: logger}
}

// CreateCommentRequest contains the data for a new comment.
type CreateCommentRequest struct {
	ChapterID string `json:"chapter_id" validate:"required"`
	ParentID  string `json:"parent_id,omitempty"` // Empty for top-level comments
	Content   string `json:"content" validate:"required,max=10000"`
}

// Create posts a comment under a chapter. A non-empty ParentID threads the
// comment under another comment on the same chapter.
func (s *CommentService) Create(ctx context.Context, userID string, req CreateCommentRequest) (*domain.Comment, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	commentID, err := id.Generate(id.PrefixComment)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		AuthorID:  userID,
		ChapterID: req.ChapterID,
		ParentID:  req.ParentID,
		Content:   sanitize.HTML(req.Content),
	}
	comment.ID = commentID
	comment.InitTimestamps()

	err = s.store.Mutate(ctx, func(tx *store.Tx) error {
		if _, err := store.Get(tx, store.Users, userID); err != nil {
			return domainerrors.Unauthorized("unknown author")
		}

		chapter, err := store.Get(tx, store.Chapters, req.ChapterID)
		if err != nil {
			return domainerrors.NotFound("chapter not found")
		}
		comment.BookID = chapter.BookID

		if req.ParentID != "" {
			parent, err := store.Get(tx, store.Comments, req.ParentID)
			if err != nil {
				return domainerrors.NotFound("parent comment not found")
			}
			if parent.ChapterID != req.ChapterID {
				return domainerrors.Validation("parent comment belongs to a different chapter")
			}
		}

		return store.Insert(tx, store.Comments, commentID, comment)
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Comment created", "comment_id", commentID, "chapter_id", req.ChapterID)
	}
	return comment, nil
}

// Remove soft-deletes a comment: the row stays so replies keep their thread,
// but the content is blanked. Counters are unaffected.
func (s *CommentService) Remove(ctx context.Context, userID, commentID string) error {
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		comment, err := store.Get(tx, store.Comments, commentID)
		if err != nil {
			return err
		}
		if comment.AuthorID != userID {
			return domainerrors.Forbidden("only the author can remove a comment")
		}

		_, err = store.Update(tx, store.Comments, commentID, func(c *domain.Comment) {
			c.IsDeleted = true
			c.Content = ""
			c.Touch()
		})
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("comment not found")
		}
		return err
	}
	return nil
}

// Delete hard-deletes a comment. Only the author may delete. The cascade
// removes the comment's likes and activity rows; replies stay threaded under
// the now-missing parent.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		comment, err := store.Get(tx, store.Comments, commentID)
		if err != nil {
			return err
		}
		if comment.AuthorID != userID {
			return domainerrors.Forbidden("only the author can delete a comment")
		}
		return store.Delete(tx, store.Comments, commentID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("comment not found")
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("Comment deleted", "comment_id", commentID)
	}
	return nil
}

// CommentView is a comment hydrated with its author's public profile and
// viewer state. Soft-deleted comments surface with empty content.
type CommentView struct {
	Comment   *domain.Comment `json:"comment"`
	Author    *domain.User    `json:"author,omitempty"`
	LikedByMe bool            `json:"liked_by_me"`
}

// ListByChapter returns a chapter's comments oldest first, hydrated with
// authors and viewer like state. viewerID may be empty.
func (s *CommentService) ListByChapter(ctx context.Context, viewerID, chapterID string) ([]*CommentView, error) {
	var views []*CommentView
	err := s.store.View(ctx, func(tx *store.Tx) error {
		comments, err := store.ScanIndex(tx, store.Comments, "chapter", chapterID)
		if err != nil {
			return err
		}
		sort.Slice(comments, func(i, j int) bool {
			if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
				return comments[i].ID < comments[j].ID
			}
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		})

		// Authors repeat across comments; resolve each once.
		authors := make(map[string]*domain.User)

		views = make([]*CommentView, 0, len(comments))
		for _, c := range comments {
			view := &CommentView{Comment: c}

			author, seen := authors[c.AuthorID]
			if !seen {
				author, err = store.Get(tx, store.Users, c.AuthorID)
				if err != nil {
					if !errors.Is(err, store.ErrNotFound) {
						return err
					}
					author = nil
				}
				authors[c.AuthorID] = author
			}
			if author != nil {
				view.Author = author.PublicProfile()
			}

			if viewerID != "" {
				view.LikedByMe, err = hasRow(tx, store.CommentLikes, "user_target", viewerID+":"+c.ID)
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
