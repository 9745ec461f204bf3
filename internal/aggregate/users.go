package aggregate

import (
	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

// onUserChange reacts to account deletion. Authored content survives a
// deleted account, but the account's own relations do not: its likes and
// follows are removed (keeping every other party's counters honest), its
// sessions are revoked, and its publish activities leave the feed so no row
// references a missing author. Counter fields need no insert handling; new
// accounts start zeroed.
func onUserChange(tx *store.Tx, ch store.Change) error {
	if ch.Op != store.OpDelete {
		return nil
	}
	user := ch.Old.(*domain.User)

	// Likes given by this user
	if err := deleteAll(tx, store.BookLikes, "user", user.ID); err != nil {
		return err
	}
	if err := deleteAll(tx, store.ChapterLikes, "user", user.ID); err != nil {
		return err
	}
	if err := deleteAll(tx, store.CommentLikes, "user", user.ID); err != nil {
		return err
	}
	if err := deleteAll(tx, store.ReviewLikes, "user", user.ID); err != nil {
		return err
	}

	// Follow relations in both directions
	if err := deleteAll(tx, store.AuthorFollows, "follower", user.ID); err != nil {
		return err
	}
	if err := deleteAll(tx, store.AuthorFollows, "following", user.ID); err != nil {
		return err
	}
	if err := deleteAll(tx, store.BookFollows, "follower", user.ID); err != nil {
		return err
	}

	if err := deleteAll(tx, store.Sessions, "user", user.ID); err != nil {
		return err
	}

	return deleteActivitiesBy(tx, "author", user.ID)
}
