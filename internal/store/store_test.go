package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

func setupTestStore(t *testing.T, pipeline store.Pipeline) *store.Store {
	t.Helper()

	s, err := store.New(t.TempDir(), nil, pipeline)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func newUser(id, username string) *domain.User {
	u := &domain.User{
		AuthID:   "auth-" + id,
		Email:    username + "@example.com",
		Username: username,
	}
	u.ID = id
	u.InitTimestamps()
	return u
}

func TestInsertAndGet(t *testing.T) {
	s := setupTestStore(t, nil)
	ctx := context.Background()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Users, "user-1", newUser("user-1", "bookworm"))
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *store.Tx) error {
		u, err := store.Get(tx, store.Users, "user-1")
		require.NoError(t, err)
		require.Equal(t, "bookworm", u.Username)
		return nil
	})
	require.NoError(t, err)
}

func TestGet_NotFound(t *testing.T) {
	s := setupTestStore(t, nil)

	err := s.View(context.Background(), func(tx *store.Tx) error {
		_, err := store.Get(tx, store.Users, "user-missing")
		return err
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestInsert_AlreadyExists(t *testing.T) {
	s := setupTestStore(t, nil)
	ctx := context.Background()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Users, "user-1", newUser("user-1", "bookworm"))
	})
	require.NoError(t, err)

	err = s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Users, "user-1", newUser("user-1", "other"))
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestInsert_UniqueIndexConflict(t *testing.T) {
	s := setupTestStore(t, nil)
	ctx := context.Background()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Users, "user-1", newUser("user-1", "bookworm"))
	})
	require.NoError(t, err)

	// Same username after normalization
	other := newUser("user-2", "BookWorm")
	other.Email = "second@example.com"
	err = s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Users, "user-2", other)
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetByIndex_Transform(t *testing.T) {
	s := setupTestStore(t, nil)
	ctx := context.Background()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Users, "user-1", newUser("user-1", "bookworm"))
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *store.Tx) error {
		// Lookup values are normalized, so mixed case finds the row
		u, err := store.GetByIndex(tx, store.Users, "username", "BookWorm")
		require.NoError(t, err)
		require.Equal(t, "user-1", u.ID)

		u, err = store.GetByIndex(tx, store.Users, "email", "Bookworm@Example.COM")
		require.NoError(t, err)
		require.Equal(t, "user-1", u.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdate_ReconcilesIndexes(t *testing.T) {
	s := setupTestStore(t, nil)
	ctx := context.Background()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Users, "user-1", newUser("user-1", "bookworm"))
	})
	require.NoError(t, err)

	err = s.Mutate(ctx, func(tx *store.Tx) error {
		_, err := store.Update(tx, store.Users, "user-1", func(u *domain.User) {
			u.Username = "nightowl"
		})
		return err
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *store.Tx) error {
		_, err := store.GetByIndex(tx, store.Users, "username", "bookworm")
		require.ErrorIs(t, err, store.ErrNotFound)

		u, err := store.GetByIndex(tx, store.Users, "username", "nightowl")
		require.NoError(t, err)
		require.Equal(t, "user-1", u.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestDelete_RemovesIndexesAndIsIdempotent(t *testing.T) {
	s := setupTestStore(t, nil)
	ctx := context.Background()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Users, "user-1", newUser("user-1", "bookworm"))
	})
	require.NoError(t, err)

	err = s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Delete(tx, store.Users, "user-1")
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *store.Tx) error {
		_, err := store.Get(tx, store.Users, "user-1")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = store.GetByIndex(tx, store.Users, "username", "bookworm")
		require.ErrorIs(t, err, store.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	// Deleting again is a no-op
	err = s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Delete(tx, store.Users, "user-1")
	})
	require.NoError(t, err)
}

func TestScanIndex(t *testing.T) {
	s := setupTestStore(t, nil)
	ctx := context.Background()

	book := &domain.Book{AuthorID: "user-1", Title: "Ashes"}
	book.ID = "book-1"
	book.InitTimestamps()

	chapters := []*domain.Chapter{
		{BookID: "book-1", AuthorID: "user-1", Title: "One"},
		{BookID: "book-1", AuthorID: "user-1", Title: "Two"},
		{BookID: "book-2", AuthorID: "user-1", Title: "Other"},
	}
	for i, c := range chapters {
		c.ID = "chap-" + string(rune('a'+i))
		c.InitTimestamps()
	}

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		if err := store.Insert(tx, store.Books, book.ID, book); err != nil {
			return err
		}
		for _, c := range chapters {
			if err := store.Insert(tx, store.Chapters, c.ID, c); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *store.Tx) error {
		got, err := store.ScanIndex(tx, store.Chapters, "book", "book-1")
		require.NoError(t, err)
		require.Len(t, got, 2)

		ids, err := store.ScanIndexIDs(tx, store.Chapters, "book", "book-2")
		require.NoError(t, err)
		require.Equal(t, []string{"chap-c"}, ids)
		return nil
	})
	require.NoError(t, err)
}

func TestWriteInView_Fails(t *testing.T) {
	s := setupTestStore(t, nil)

	err := s.View(context.Background(), func(tx *store.Tx) error {
		return store.Insert(tx, store.Users, "user-1", newUser("user-1", "bookworm"))
	})
	require.ErrorIs(t, err, store.ErrReadOnly)
}

func TestHandlers_FireInOrderWithChangeRecords(t *testing.T) {
	var seen []store.Change
	var order []string

	pipeline := store.Pipeline{
		store.Books.Name(): {
			func(tx *store.Tx, ch store.Change) error {
				seen = append(seen, ch)
				order = append(order, "first")
				return nil
			},
			func(tx *store.Tx, ch store.Change) error {
				order = append(order, "second")
				return nil
			},
		},
	}

	s := setupTestStore(t, pipeline)
	ctx := context.Background()

	book := &domain.Book{AuthorID: "user-1", Title: "Ashes"}
	book.ID = "book-1"
	book.InitTimestamps()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Books, book.ID, book)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, order)

	require.Len(t, seen, 1)
	require.Equal(t, store.OpInsert, seen[0].Op)
	require.Equal(t, "books", seen[0].Table)
	require.Equal(t, "book-1", seen[0].ID)
	require.Nil(t, seen[0].Old)
	require.Equal(t, "Ashes", seen[0].New.(*domain.Book).Title)

	err = s.Mutate(ctx, func(tx *store.Tx) error {
		_, err := store.Update(tx, store.Books, "book-1", func(b *domain.Book) {
			b.Title = "Embers"
		})
		return err
	})
	require.NoError(t, err)

	last := seen[len(seen)-1]
	require.Equal(t, store.OpUpdate, last.Op)
	require.Equal(t, "Ashes", last.Old.(*domain.Book).Title)
	require.Equal(t, "Embers", last.New.(*domain.Book).Title)

	err = s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Delete(tx, store.Books, "book-1")
	})
	require.NoError(t, err)

	last = seen[len(seen)-1]
	require.Equal(t, store.OpDelete, last.Op)
	require.Equal(t, "Embers", last.Old.(*domain.Book).Title)
	require.Nil(t, last.New)
}

func TestDispatch_DepthFirstCascade(t *testing.T) {
	// Book delete cascades its chapters; each chapter delete cascades its
	// comments. The dispatcher must process a chapter's comments before the
	// next chapter.
	var order []string

	pipeline := store.Pipeline{
		store.Books.Name(): {
			func(tx *store.Tx, ch store.Change) error {
				if ch.Op != store.OpDelete {
					return nil
				}
				order = append(order, "book:"+ch.ID)
				ids, err := store.ScanIndexIDs(tx, store.Chapters, "book", ch.ID)
				if err != nil {
					return err
				}
				for _, id := range ids {
					if err := store.Delete(tx, store.Chapters, id); err != nil {
						return err
					}
				}
				return nil
			},
		},
		store.Chapters.Name(): {
			func(tx *store.Tx, ch store.Change) error {
				if ch.Op != store.OpDelete {
					return nil
				}
				order = append(order, "chapter:"+ch.ID)
				ids, err := store.ScanIndexIDs(tx, store.Comments, "chapter", ch.ID)
				if err != nil {
					return err
				}
				for _, id := range ids {
					if err := store.Delete(tx, store.Comments, id); err != nil {
						return err
					}
				}
				return nil
			},
		},
		store.Comments.Name(): {
			func(tx *store.Tx, ch store.Change) error {
				if ch.Op == store.OpDelete {
					order = append(order, "comment:"+ch.ID)
				}
				return nil
			},
		},
	}

	s := setupTestStore(t, pipeline)
	ctx := context.Background()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		book := &domain.Book{AuthorID: "user-1", Title: "Ashes"}
		book.ID = "book-1"
		book.InitTimestamps()
		if err := store.Insert(tx, store.Books, book.ID, book); err != nil {
			return err
		}

		for _, chapID := range []string{"chap-a", "chap-b"} {
			c := &domain.Chapter{BookID: "book-1", AuthorID: "user-1", Title: chapID}
			c.ID = chapID
			c.InitTimestamps()
			if err := store.Insert(tx, store.Chapters, c.ID, c); err != nil {
				return err
			}

			cm := &domain.Comment{BookID: "book-1", ChapterID: chapID, AuthorID: "user-2", Content: "nice"}
			cm.ID = "cmnt-" + chapID
			cm.InitTimestamps()
			if err := store.Insert(tx, store.Comments, cm.ID, cm); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	order = nil
	err = s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Delete(tx, store.Books, "book-1")
	})
	require.NoError(t, err)

	require.Equal(t, []string{
		"book:book-1",
		"chapter:chap-a",
		"comment:cmnt-chap-a",
		"chapter:chap-b",
		"comment:cmnt-chap-b",
	}, order)
}

func TestHandlerError_RollsBackEverything(t *testing.T) {
	boom := errors.New("boom")

	pipeline := store.Pipeline{
		store.Chapters.Name(): {
			func(tx *store.Tx, ch store.Change) error {
				return boom
			},
		},
	}

	s := setupTestStore(t, pipeline)
	ctx := context.Background()

	chapter := &domain.Chapter{BookID: "book-1", AuthorID: "user-1", Title: "One"}
	chapter.ID = "chap-a"
	chapter.InitTimestamps()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		// This write succeeds, then the chapter handler fails
		if err := store.Insert(tx, store.Users, "user-1", newUser("user-1", "bookworm")); err != nil {
			return err
		}
		return store.Insert(tx, store.Chapters, chapter.ID, chapter)
	})
	require.ErrorIs(t, err, boom)

	// Nothing committed, including the user written before the failure
	err = s.View(ctx, func(tx *store.Tx) error {
		_, err := store.Get(tx, store.Users, "user-1")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = store.Get(tx, store.Chapters, "chap-a")
		require.ErrorIs(t, err, store.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestDispatch_CycleGuard(t *testing.T) {
	// A handler that re-updates its own table forever must trip the change
	// cap instead of spinning.
	pipeline := store.Pipeline{
		store.Books.Name(): {
			func(tx *store.Tx, ch store.Change) error {
				if ch.Op != store.OpUpdate {
					return nil
				}
				_, err := store.Update(tx, store.Books, ch.ID, func(b *domain.Book) {
					b.TotalLikes++
				})
				return err
			},
		},
	}

	s := setupTestStore(t, pipeline)
	ctx := context.Background()

	book := &domain.Book{AuthorID: "user-1", Title: "Ashes"}
	book.ID = "book-1"
	book.InitTimestamps()

	err := s.Mutate(ctx, func(tx *store.Tx) error {
		return store.Insert(tx, store.Books, book.ID, book)
	})
	require.NoError(t, err)

	err = s.Mutate(ctx, func(tx *store.Tx) error {
		_, err := store.Update(tx, store.Books, "book-1", func(b *domain.Book) {
			b.Title = "Embers"
		})
		return err
	})
	require.ErrorIs(t, err, store.ErrTooManyChanges)

	// Aborted: original title survives
	err = s.View(ctx, func(tx *store.Tx) error {
		b, err := store.Get(tx, store.Books, "book-1")
		require.NoError(t, err)
		require.Equal(t, "Ashes", b.Title)
		return nil
	})
	require.NoError(t, err)
}

func TestActivityFeed_NewestFirstWithCursor(t *testing.T) {
	s := setupTestStore(t, nil)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	times := make([]time.Time, 5)
	err := s.Mutate(ctx, func(tx *store.Tx) error {
		for i := range 5 {
			a := &domain.Activity{
				Type:     domain.ActivityPublishChapter,
				AuthorID: "user-1",
				BookID:   "book-1",
			}
			a.ID = "act-" + string(rune('a'+i))
			a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			a.UpdatedAt = a.CreatedAt
			times[i] = a.CreatedAt
			if err := store.Insert(tx, store.Activities, a.ID, a); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *store.Tx) error {
		page, err := store.ActivityFeed(tx, "time", "", 2, nil)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.Equal(t, "act-e", page[0].ID)
		require.Equal(t, "act-d", page[1].ID)

		// Next page via cursor
		next, err := store.ActivityFeed(tx, "time", "", 2, &page[1].CreatedAt)
		require.NoError(t, err)
		require.Len(t, next, 2)
		require.Equal(t, "act-c", next[0].ID)
		require.Equal(t, "act-b", next[1].ID)

		// Author feed uses its own time-ordered index
		byAuthor, err := store.ActivityFeed(tx, "author", "user-1", 0, nil)
		require.NoError(t, err)
		require.Len(t, byAuthor, 5)
		require.Equal(t, "act-e", byAuthor[0].ID)
		return nil
	})
	require.NoError(t, err)
}
