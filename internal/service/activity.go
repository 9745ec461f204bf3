package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// ActivityService reads the publish-event feed. Activity rows are written
// exclusively by the aggregate pipeline; this service only reads them.
type ActivityService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(st *store.Store, logger *slog.Logger) *ActivityService {
	return &ActivityService{store: st, logger: logger}
}

// FeedRequest selects a feed page. An empty AuthorID selects the global
// feed. Before is an exclusive cursor: pass the CreatedAt of the last entry
// from the previous page.
type FeedRequest struct {
	AuthorID string
	Limit    int
	Before   *time.Time
}

// Feed returns hydrated feed entries newest first.
//
// Hydration fails the read if a referenced document is missing: activity
// rows are deleted in the same transaction as their referents, so a dangling
// reference means the store is corrupt, not that the entity was deleted.
func (s *ActivityService) Feed(ctx context.Context, req FeedRequest) ([]*domain.FeedEntry, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	index, key := "time", ""
	if req.AuthorID != "" {
		index, key = "author", req.AuthorID
	}

	var entries []*domain.FeedEntry
	err := s.store.View(ctx, func(tx *store.Tx) error {
		activities, err := store.ActivityFeed(tx, index, key, limit, req.Before)
		if err != nil {
			return err
		}

		entries = make([]*domain.FeedEntry, 0, len(activities))
		for _, a := range activities {
			entry, err := hydrateActivity(tx, a)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// hydrateActivity resolves an activity row's references into documents.
func hydrateActivity(tx *store.Tx, a *domain.Activity) (*domain.FeedEntry, error) {
	entry := &domain.FeedEntry{Activity: a}

	author, err := store.Get(tx, store.Users, a.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("hydrate activity %s: author %s: %w", a.ID, a.AuthorID, err)
	}
	entry.Author = author.PublicProfile()

	entry.Book, err = store.Get(tx, store.Books, a.BookID)
	if err != nil {
		return nil, fmt.Errorf("hydrate activity %s: book %s: %w", a.ID, a.BookID, err)
	}

	switch a.Type {
	case domain.ActivityPublishChapter:
		entry.Chapter, err = store.Get(tx, store.Chapters, a.ChapterID)
		if err != nil {
			return nil, fmt.Errorf("hydrate activity %s: chapter %s: %w", a.ID, a.ChapterID, err)
		}
	case domain.ActivityPublishComment:
		entry.Comment, err = store.Get(tx, store.Comments, a.CommentID)
		if err != nil {
			return nil, fmt.Errorf("hydrate activity %s: comment %s: %w", a.ID, a.CommentID, err)
		}
	case domain.ActivityPublishReview:
		entry.Review, err = store.Get(tx, store.Reviews, a.ReviewID)
		if err != nil {
			return nil, fmt.Errorf("hydrate activity %s: review %s: %w", a.ID, a.ReviewID, err)
		}
	case domain.ActivityPublishBook:
		// Book already resolved above.
	}

	return entry, nil
}
