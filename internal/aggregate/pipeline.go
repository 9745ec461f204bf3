// Package aggregate keeps denormalized counters and the activity feed
// consistent with primary entity mutations. Every table's handler reacts to
// insert/update/delete changes dispatched by the store's transaction-scoped
// Tx, issuing counter patches, activity rows, and cascading deletes that
// themselves re-enter the dispatcher. All of it runs inside the one
// transaction of the originating write.
package aggregate

import (
	"github.com/fablepress/fablepress-server/internal/store"
)

// NewPipeline composes the full handler pipeline. It is built once at
// startup and handed to store.New; handlers for a table run in the order
// listed here.
func NewPipeline() store.Pipeline {
	return store.Pipeline{
		store.Users.Name():         {onUserChange},
		store.Books.Name():         {onBookChange},
		store.Chapters.Name():      {onChapterChange},
		store.Comments.Name():      {onCommentChange},
		store.Reviews.Name():       {onReviewChange},
		store.BookLikes.Name():     {onBookLikeChange},
		store.ChapterLikes.Name():  {onChapterLikeChange},
		store.CommentLikes.Name():  {onCommentLikeChange},
		store.ReviewLikes.Name():   {onReviewLikeChange},
		store.AuthorFollows.Name(): {onAuthorFollowChange},
		store.BookFollows.Name():   {onBookFollowChange},
	}
}
