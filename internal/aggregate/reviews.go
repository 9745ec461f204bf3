package aggregate

import (
	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

// onReviewChange maintains review totals on the book and the review's author.
func onReviewChange(tx *store.Tx, ch store.Change) error {
	switch ch.Op {
	case store.OpInsert:
		review := ch.New.(*domain.Review)

		if err := patchIfExists(tx, store.Books, review.BookID, func(b *domain.Book) {
			b.TotalReviews++
		}); err != nil {
			return err
		}
		if err := patchIfExists(tx, store.Users, review.AuthorID, func(u *domain.User) {
			u.TotalReviews++
		}); err != nil {
			return err
		}

		return recordActivity(tx, &domain.Activity{
			Type:     domain.ActivityPublishReview,
			AuthorID: review.AuthorID,
			BookID:   review.BookID,
			ReviewID: review.ID,
		})

	case store.OpDelete:
		review := ch.Old.(*domain.Review)

		if err := patchIfExists(tx, store.Books, review.BookID, func(b *domain.Book) {
			b.TotalReviews--
		}); err != nil {
			return err
		}
		if err := patchIfExists(tx, store.Users, review.AuthorID, func(u *domain.User) {
			u.TotalReviews--
		}); err != nil {
			return err
		}

		if err := deleteAll(tx, store.ReviewLikes, "review", review.ID); err != nil {
			return err
		}
		return deleteActivitiesBy(tx, "review", review.ID)
	}

	return nil
}
