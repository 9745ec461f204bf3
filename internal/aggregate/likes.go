package aggregate

import (
	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

// Like handlers adjust the liked target's counter and the target author's
// rolled-up like total; chapter likes additionally roll into the owning
// book. Each uses the row's denormalized AuthorID so the adjustment still
// lands when the target itself was deleted earlier in a cascade.

func onBookLikeChange(tx *store.Tx, ch store.Change) error {
	var like *domain.BookLike
	var delta int

	switch ch.Op {
	case store.OpInsert:
		like, delta = ch.New.(*domain.BookLike), 1
	case store.OpDelete:
		like, delta = ch.Old.(*domain.BookLike), -1
	default:
		return nil
	}

	if err := patchIfExists(tx, store.Books, like.BookID, func(b *domain.Book) {
		b.TotalLikes += delta
	}); err != nil {
		return err
	}
	return patchIfExists(tx, store.Users, like.AuthorID, func(u *domain.User) {
		u.TotalLikes += delta
	})
}

func onChapterLikeChange(tx *store.Tx, ch store.Change) error {
	var like *domain.ChapterLike
	var delta int

	switch ch.Op {
	case store.OpInsert:
		like, delta = ch.New.(*domain.ChapterLike), 1
	case store.OpDelete:
		like, delta = ch.Old.(*domain.ChapterLike), -1
	default:
		return nil
	}

	if err := patchIfExists(tx, store.Chapters, like.ChapterID, func(c *domain.Chapter) {
		c.TotalLikes += delta
	}); err != nil {
		return err
	}
	if err := patchIfExists(tx, store.Books, like.BookID, func(b *domain.Book) {
		b.TotalLikes += delta
	}); err != nil {
		return err
	}
	return patchIfExists(tx, store.Users, like.AuthorID, func(u *domain.User) {
		u.TotalLikes += delta
	})
}

func onCommentLikeChange(tx *store.Tx, ch store.Change) error {
	var like *domain.CommentLike
	var delta int

	switch ch.Op {
	case store.OpInsert:
		like, delta = ch.New.(*domain.CommentLike), 1
	case store.OpDelete:
		like, delta = ch.Old.(*domain.CommentLike), -1
	default:
		return nil
	}

	if err := patchIfExists(tx, store.Comments, like.CommentID, func(c *domain.Comment) {
		c.TotalLikes += delta
	}); err != nil {
		return err
	}
	return patchIfExists(tx, store.Users, like.AuthorID, func(u *domain.User) {
		u.TotalLikes += delta
	})
}

func onReviewLikeChange(tx *store.Tx, ch store.Change) error {
	var like *domain.ReviewLike
	var delta int

	switch ch.Op {
	case store.OpInsert:
		like, delta = ch.New.(*domain.ReviewLike), 1
	case store.OpDelete:
		like, delta = ch.Old.(*domain.ReviewLike), -1
	default:
		return nil
	}

	if err := patchIfExists(tx, store.Reviews, like.ReviewID, func(r *domain.Review) {
		r.TotalLikes += delta
	}); err != nil {
		return err
	}
	return patchIfExists(tx, store.Users, like.AuthorID, func(u *domain.User) {
		u.TotalLikes += delta
	})
}
