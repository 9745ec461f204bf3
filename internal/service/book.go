package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fablepress/fablepress-server/internal/domain"
	domainerrors "github.com/fablepress/fablepress-server/internal/errors"
	"github.com/fablepress/fablepress-server/internal/id"
	"github.com/fablepress/fablepress-server/internal/sanitize"
	"github.com/fablepress/fablepress-server/internal/store"
	"github.com/fablepress/fablepress-server/internal/util"
)

// BookService manages books. Counter maintenance, activity recording, and
// cascades are handled by the aggregate pipeline inside the same transaction
// as each write.
type BookService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(st *store.Store, logger *slog.Logger) *BookService {
	return &BookService{store: st, logger: logger}
}

// CreateBookRequest contains the data for a new book.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	CoverURL    string `json:"cover_url" validate:"omitempty,url,max=500"`
}

// Create publishes a new book owned by authorID.
func (s *BookService) Create(ctx context.Context, authorID string, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, err
	}

	book := &domain.Book{
		AuthorID:    authorID,
		Title:       req.Title,
		Slug:        util.Slugify(req.Title),
		Description: sanitize.HTML(req.Description),
		CoverURL:    req.CoverURL,
	}
	book.ID = bookID
	book.InitTimestamps()

	err = s.store.Mutate(ctx, func(tx *store.Tx) error {
		if _, err := store.Get(tx, store.Users, authorID); err != nil {
			return domainerrors.Unauthorized("unknown author")
		}
		return store.Insert(tx, store.Books, bookID, book)
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Book created", "book_id", bookID, "author_id", authorID)
	}
	return book, nil
}

// UpdateBookRequest contains the editable book fields. Nil pointers leave
// the current value unchanged.
type UpdateBookRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	CoverURL    *string `json:"cover_url,omitempty" validate:"omitempty,url,max=500"`
}

// Update edits a book's metadata. Only the owning author may update.
func (s *BookService) Update(ctx context.Context, userID, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	var book *domain.Book
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		existing, err := store.Get(tx, store.Books, bookID)
		if err != nil {
			return err
		}
		if existing.AuthorID != userID {
			return domainerrors.Forbidden("only the author can update a book")
		}

		book, err = store.Update(tx, store.Books, bookID, func(b *domain.Book) {
			if req.Title != nil {
				b.Title = *req.Title
				b.Slug = util.Slugify(*req.Title)
			}
			if req.Description != nil {
				b.Description = sanitize.HTML(*req.Description)
			}
			if req.CoverURL != nil {
				b.CoverURL = *req.CoverURL
			}
			b.Touch()
		})
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, err
	}
	return book, nil
}

// Delete removes a book. Only the owning author may delete. The cascade
// removes every chapter, comment, review, like, follow, and activity that
// hangs off the book, adjusting all counters on the way down.
func (s *BookService) Delete(ctx context.Context, userID, bookID string) error {
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		book, err := store.Get(tx, store.Books, bookID)
		if err != nil {
			return err
		}
		if book.AuthorID != userID {
			return domainerrors.Forbidden("only the author can delete a book")
		}
		return store.Delete(tx, store.Books, bookID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("Book deleted", "book_id", bookID)
	}
	return nil
}

// BookView is a book hydrated with its author's public profile and, when a
// viewer is known, whether the viewer has liked or followed it.
type BookView struct {
	Book       *domain.Book `json:"book"`
	Author     *domain.User `json:"author,omitempty"`
	LikedByMe  bool         `json:"liked_by_me"`
	FollowedBy bool         `json:"followed_by_me"`
}

// Get returns a book with author hydration and viewer state.
// viewerID may be empty for anonymous reads.
func (s *BookService) Get(ctx context.Context, viewerID, bookID string) (*BookView, error) {
	var view *BookView
	err := s.store.View(ctx, func(tx *store.Tx) error {
		book, err := store.Get(tx, store.Books, bookID)
		if err != nil {
			return err
		}
		view = &BookView{Book: book}

		author, err := store.Get(tx, store.Users, book.AuthorID)
		if err == nil {
			view.Author = author.PublicProfile()
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if viewerID != "" {
			view.LikedByMe, err = hasRow(tx, store.BookLikes, "user_target", viewerID+":"+bookID)
			if err != nil {
				return err
			}
			view.FollowedBy, err = hasRow(tx, store.BookFollows, "pair", viewerID+":"+bookID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, err
	}
	return view, nil
}

// ListByAuthor returns all books by an author.
func (s *BookService) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Book, error) {
	var books []*domain.Book
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		books, err = store.ScanIndex(tx, store.Books, "author", authorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// List returns all books.
func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		books, err = store.List(tx, store.Books)
		return err
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}
