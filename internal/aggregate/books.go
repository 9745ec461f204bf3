package aggregate

import (
	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

// onBookChange maintains the author's book total and drives the largest
// cascade in the system: deleting a book removes its chapters, comments,
// reviews, likes, follows, and feed rows.
func onBookChange(tx *store.Tx, ch store.Change) error {
	switch ch.Op {
	case store.OpInsert:
		book := ch.New.(*domain.Book)

		if err := patchIfExists(tx, store.Users, book.AuthorID, func(u *domain.User) {
			u.TotalBooks++
		}); err != nil {
			return err
		}

		return recordActivity(tx, &domain.Activity{
			Type:     domain.ActivityPublishBook,
			AuthorID: book.AuthorID,
			BookID:   book.ID,
		})

	case store.OpDelete:
		book := ch.Old.(*domain.Book)

		if err := patchIfExists(tx, store.Users, book.AuthorID, func(u *domain.User) {
			u.TotalBooks--
		}); err != nil {
			return err
		}

		// Chapters first: each chapter's delete handler removes its own
		// comments and likes before the next sibling is processed.
		if err := deleteAll(tx, store.Chapters, "book", book.ID); err != nil {
			return err
		}
		if err := deleteAll(tx, store.Comments, "book", book.ID); err != nil {
			return err
		}
		if err := deleteAll(tx, store.Reviews, "book", book.ID); err != nil {
			return err
		}
		if err := deleteAll(tx, store.BookLikes, "book", book.ID); err != nil {
			return err
		}
		if err := deleteAll(tx, store.BookFollows, "following", book.ID); err != nil {
			return err
		}
		return deleteActivitiesBy(tx, "book", book.ID)
	}

	return nil
}
