package aggregate

import (
	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/store"
)

func onAuthorFollowChange(tx *store.Tx, ch store.Change) error {
	var follow *domain.AuthorFollow
	var delta int

	switch ch.Op {
	case store.OpInsert:
		follow, delta = ch.New.(*domain.AuthorFollow), 1
	case store.OpDelete:
		follow, delta = ch.Old.(*domain.AuthorFollow), -1
	default:
		return nil
	}

	if err := patchIfExists(tx, store.Users, follow.FollowingID, func(u *domain.User) {
		u.TotalFollowers += delta
	}); err != nil {
		return err
	}
	return patchIfExists(tx, store.Users, follow.FollowerID, func(u *domain.User) {
		u.TotalFollowing += delta
	})
}

func onBookFollowChange(tx *store.Tx, ch store.Change) error {
	var follow *domain.BookFollow
	var delta int

	switch ch.Op {
	case store.OpInsert:
		follow, delta = ch.New.(*domain.BookFollow), 1
	case store.OpDelete:
		follow, delta = ch.Old.(*domain.BookFollow), -1
	default:
		return nil
	}

	return patchIfExists(tx, store.Books, follow.FollowingID, func(b *domain.Book) {
		b.TotalFollows += delta
	})
}
