package aggregate

import (
	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

// onCommentChange maintains comment totals on the book, the chapter, and the
// comment's author. Replies (ParentID set) are deliberately not cascaded when
// their parent is deleted; they keep rendering against the deleted parent.
func onCommentChange(tx *store.Tx, ch store.Change) error {
	switch ch.Op {
	case store.OpInsert:
		comment := ch.New.(*domain.Comment)

		if err := patchIfExists(tx, store.Books, comment.BookID, func(b *domain.Book) {
			b.TotalComments++
		}); err != nil {
			return err
		}
		if err := patchIfExists(tx, store.Chapters, comment.ChapterID, func(c *domain.Chapter) {
			c.TotalComments++
		}); err != nil {
			return err
		}
		if err := patchIfExists(tx, store.Users, comment.AuthorID, func(u *domain.User) {
			u.TotalComments++
		}); err != nil {
			return err
		}

		return recordActivity(tx, &domain.Activity{
			Type:      domain.ActivityPublishComment,
			AuthorID:  comment.AuthorID,
			BookID:    comment.BookID,
			ChapterID: comment.ChapterID,
			CommentID: comment.ID,
		})

	case store.OpDelete:
		comment := ch.Old.(*domain.Comment)

		if err := patchIfExists(tx, store.Books, comment.BookID, func(b *domain.Book) {
			b.TotalComments--
		}); err != nil {
			return err
		}
		if err := patchIfExists(tx, store.Chapters, comment.ChapterID, func(c *domain.Chapter) {
			c.TotalComments--
		}); err != nil {
			return err
		}
		if err := patchIfExists(tx, store.Users, comment.AuthorID, func(u *domain.User) {
			u.TotalComments--
		}); err != nil {
			return err
		}

		// Like rows carry their own author decrements
		if err := deleteAll(tx, store.CommentLikes, "comment", comment.ID); err != nil {
			return err
		}
		return deleteActivitiesBy(tx, "comment", comment.ID)
	}

	return nil
}
