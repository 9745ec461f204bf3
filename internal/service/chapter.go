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

// ChapterService manages chapters. Word counts are computed at write time;
// book and author word totals follow through the aggregate pipeline.
type ChapterService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewChapterService creates a new chapter service.
func NewChapterService(st *store.Store, logger *slog.Logger) *ChapterService {
	return &ChapterService{store: st, logger: logger}
}

// CreateChapterRequest contains the data for a new chapter.
type CreateChapterRequest struct {
	BookID  string `json:"book_id" validate:"required"`
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// Create publishes a new chapter. Only the book's author may add chapters.
func (s *ChapterService) Create(ctx context.Context, userID string, req CreateChapterRequest) (*domain.Chapter, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	chapterID, err := id.Generate(id.PrefixChapter)
	if err != nil {
		return nil, err
	}

	content := sanitize.HTML(req.Content)
	chapter := &domain.Chapter{
		BookID:     req.BookID,
		AuthorID:   userID,
		Title:      req.Title,
		Content:    content,
		TotalWords: domain.CountWords(content),
	}
	chapter.ID = chapterID
	chapter.InitTimestamps()

	err = s.store.Mutate(ctx, func(tx *store.Tx) error {
		book, err := store.Get(tx, store.Books, req.BookID)
		if err != nil {
			return domainerrors.NotFound("book not found")
		}
		if book.AuthorID != userID {
			return domainerrors.Forbidden("only the author can add chapters")
		}
		return store.Insert(tx, store.Chapters, chapterID, chapter)
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Chapter created",
			"chapter_id", chapterID,
			"book_id", req.BookID,
			"words", chapter.TotalWords,
		)
	}
	return chapter, nil
}

// UpdateChapterRequest contains the editable chapter fields. Nil pointers
// leave the current value unchanged.
type UpdateChapterRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Content *string `json:"content,omitempty"`
}

// Update edits a chapter. A content change re-counts words, and the word
// delta propagates to the book and author totals.
func (s *ChapterService) Update(ctx context.Context, userID, chapterID string, req UpdateChapterRequest) (*domain.Chapter, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	var chapter *domain.Chapter
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		existing, err := store.Get(tx, store.Chapters, chapterID)
		if err != nil {
			return err
		}
		if existing.AuthorID != userID {
			return domainerrors.Forbidden("only the author can update a chapter")
		}

		chapter, err = store.Update(tx, store.Chapters, chapterID, func(c *domain.Chapter) {
			if req.Title != nil {
				c.Title = *req.Title
			}
			if req.Content != nil {
				c.Content = sanitize.HTML(*req.Content)
				c.TotalWords = domain.CountWords(c.Content)
			}
			c.Touch()
		})
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("chapter not found")
		}
		return nil, err
	}
	return chapter, nil
}

// Delete removes a chapter. Only the owning author may delete. The cascade
// removes the chapter's comments, likes, and activity rows.
func (s *ChapterService) Delete(ctx context.Context, userID, chapterID string) error {
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		chapter, err := store.Get(tx, store.Chapters, chapterID)
		if err != nil {
			return err
		}
		if chapter.AuthorID != userID {
			return domainerrors.Forbidden("only the author can delete a chapter")
		}
		return store.Delete(tx, store.Chapters, chapterID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("chapter not found")
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("Chapter deleted", "chapter_id", chapterID)
	}
	return nil
}

// ChapterView is a chapter hydrated with viewer state.
type ChapterView struct {
	Chapter   *domain.Chapter `json:"chapter"`
	LikedByMe bool            `json:"liked_by_me"`
}

// Get returns a chapter with viewer state. viewerID may be empty.
func (s *ChapterService) Get(ctx context.Context, viewerID, chapterID string) (*ChapterView, error) {
	var view *ChapterView
	err := s.store.View(ctx, func(tx *store.Tx) error {
		chapter, err := store.Get(tx, store.Chapters, chapterID)
		if err != nil {
			return err
		}
		view = &ChapterView{Chapter: chapter}

		if viewerID != "" {
			view.LikedByMe, err = hasRow(tx, store.ChapterLikes, "user_target", viewerID+":"+chapterID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("chapter not found")
		}
		return nil, err
	}
	return view, nil
}

// ListByBook returns a book's chapters in publication order.
func (s *ChapterService) ListByBook(ctx context.Context, bookID string) ([]*domain.Chapter, error) {
	var chapters []*domain.Chapter
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		chapters, err = store.ScanIndex(tx, store.Chapters, "book", bookID)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortChapters(chapters)
	return chapters, nil
}

// ChapterPageData is everything a reading page needs: the chapter, its book
// and author, its position, and the neighboring chapter IDs for navigation.
type ChapterPageData struct {
	Chapter       *domain.Chapter `json:"chapter"`
	Book          *domain.Book    `json:"book"`
	Author        *domain.User    `json:"author,omitempty"`
	ChapterNumber int             `json:"chapter_number"` // 1-based position
	PrevChapterID string          `json:"prev_chapter_id,omitempty"`
	NextChapterID string          `json:"next_chapter_id,omitempty"`
	LikedByMe     bool            `json:"liked_by_me"`
}

// GetPageData returns a chapter with its reading-page context.
func (s *ChapterService) GetPageData(ctx context.Context, viewerID, chapterID string) (*ChapterPageData, error) {
	var page *ChapterPageData
	err := s.store.View(ctx, func(tx *store.Tx) error {
		chapter, err := store.Get(tx, store.Chapters, chapterID)
		if err != nil {
			return err
		}

		book, err := store.Get(tx, store.Books, chapter.BookID)
		if err != nil {
			return err
		}

		page = &ChapterPageData{Chapter: chapter, Book: book}

		author, err := store.Get(tx, store.Users, book.AuthorID)
		if err == nil {
			page.Author = author.PublicProfile()
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		siblings, err := store.ScanIndex(tx, store.Chapters, "book", chapter.BookID)
		if err != nil {
			return err
		}
		sortChapters(siblings)
		for i, c := range siblings {
			if c.ID != chapterID {
				continue
			}
			page.ChapterNumber = i + 1
			if i > 0 {
				page.PrevChapterID = siblings[i-1].ID
			}
			if i < len(siblings)-1 {
				page.NextChapterID = siblings[i+1].ID
			}
			break
		}

		if viewerID != "" {
			page.LikedByMe, err = hasRow(tx, store.ChapterLikes, "user_target", viewerID+":"+chapterID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("chapter not found")
		}
		return nil, err
	}
	return page, nil
}

// sortChapters orders chapters by creation time, oldest first, with ID as a
// tiebreaker so the order is stable within a single commit timestamp.
func sortChapters(chapters []*domain.Chapter) {
	sort.Slice(chapters, func(i, j int) bool {
		if chapters[i].CreatedAt.Equal(chapters[j].CreatedAt) {
			return chapters[i].ID < chapters[j].ID
		}
		return chapters[i].CreatedAt.Before(chapters[j].CreatedAt)
	})
}
