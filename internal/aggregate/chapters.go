package aggregate

import (
	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

// onChapterChange rolls chapter and word totals up into the book and the
// author, records publish activity, and cascades chapter dependents.
func onChapterChange(tx *store.Tx, ch store.Change) error {
	switch ch.Op {
	case store.OpInsert:
		chapter := ch.New.(*domain.Chapter)

		if err := patchIfExists(tx, store.Books, chapter.BookID, func(b *domain.Book) {
			b.TotalChapters++
			b.TotalWords += chapter.TotalWords
		}); err != nil {
			return err
		}
		if err := patchIfExists(tx, store.Users, chapter.AuthorID, func(u *domain.User) {
			u.TotalChapters++
			u.TotalWords += chapter.TotalWords
		}); err != nil {
			return err
		}

		return recordActivity(tx, &domain.Activity{
			Type:      domain.ActivityPublishChapter,
			AuthorID:  chapter.AuthorID,
			BookID:    chapter.BookID,
			ChapterID: chapter.ID,
		})

	case store.OpUpdate:
		oldChapter := ch.Old.(*domain.Chapter)
		newChapter := ch.New.(*domain.Chapter)

		// Word totals track the delta between revisions. Counter patches
		// made by other handlers also surface here as updates; their delta
		// is zero and they must not fan out further.
		delta := newChapter.TotalWords - oldChapter.TotalWords
		if delta == 0 {
			return nil
		}

		if err := patchIfExists(tx, store.Books, newChapter.BookID, func(b *domain.Book) {
			b.TotalWords += delta
		}); err != nil {
			return err
		}
		return patchIfExists(tx, store.Users, newChapter.AuthorID, func(u *domain.User) {
			u.TotalWords += delta
		})

	case store.OpDelete:
		chapter := ch.Old.(*domain.Chapter)

		if err := patchIfExists(tx, store.Books, chapter.BookID, func(b *domain.Book) {
			b.TotalChapters--
			b.TotalWords -= chapter.TotalWords
		}); err != nil {
			return err
		}
		if err := patchIfExists(tx, store.Users, chapter.AuthorID, func(u *domain.User) {
			u.TotalChapters--
			u.TotalWords -= chapter.TotalWords
		}); err != nil {
			return err
		}

		if err := deleteAll(tx, store.Comments, "chapter", chapter.ID); err != nil {
			return err
		}
		if err := deleteAll(tx, store.ChapterLikes, "chapter", chapter.ID); err != nil {
			return err
		}
		return deleteActivitiesBy(tx, "chapter", chapter.ID)
	}

	return nil
}
