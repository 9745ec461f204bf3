package store

import (
	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/normalize"
)

// Table descriptors for the whole schema. Handler dispatch is keyed by these
// names, so they are the single source of truth for what a "table" is.
var (
	Users = NewTable[domain.User]("users").
		WithUniqueIndex("auth_id", func(u *domain.User) string { return u.AuthID }).
		WithUniqueIndexTransform("email",
			func(u *domain.User) string { return normalize.Email(u.Email) },
			normalize.Email,
		).
		WithUniqueIndexTransform("username",
			func(u *domain.User) string { return normalize.Username(u.Username) },
			normalize.Username,
		)

	Books = NewTable[domain.Book]("books").
		WithIndex("author", func(b *domain.Book) []string { return []string{b.AuthorID} })

	Chapters = NewTable[domain.Chapter]("chapters").
			WithIndex("book", func(c *domain.Chapter) []string { return []string{c.BookID} }).
			WithIndex("author", func(c *domain.Chapter) []string { return []string{c.AuthorID} })

	Comments = NewTable[domain.Comment]("comments").
			WithIndex("book", func(c *domain.Comment) []string { return []string{c.BookID} }).
			WithIndex("chapter", func(c *domain.Comment) []string { return []string{c.ChapterID} }).
			WithIndex("author", func(c *domain.Comment) []string { return []string{c.AuthorID} }).
			WithIndex("parent", func(c *domain.Comment) []string { return []string{c.ParentID} })

	Reviews = NewTable[domain.Review]("reviews").
		WithIndex("book", func(r *domain.Review) []string { return []string{r.BookID} }).
		WithIndex("author", func(r *domain.Review) []string { return []string{r.AuthorID} })

	// Like join tables: the unique (user, target) index enforces at most one
	// row per pair; the target and user indexes serve counter recomputation
	// and cascade scans.

	BookLikes = NewTable[domain.BookLike]("bookLikes").
			WithUniqueIndex("user_target", func(l *domain.BookLike) string { return l.UserID + ":" + l.BookID }).
			WithIndex("book", func(l *domain.BookLike) []string { return []string{l.BookID} }).
			WithIndex("user", func(l *domain.BookLike) []string { return []string{l.UserID} })

	ChapterLikes = NewTable[domain.ChapterLike]("chapterLikes").
			WithUniqueIndex("user_target", func(l *domain.ChapterLike) string { return l.UserID + ":" + l.ChapterID }).
			WithIndex("chapter", func(l *domain.ChapterLike) []string { return []string{l.ChapterID} }).
			WithIndex("user", func(l *domain.ChapterLike) []string { return []string{l.UserID} })

	CommentLikes = NewTable[domain.CommentLike]("commentLikes").
			WithUniqueIndex("user_target", func(l *domain.CommentLike) string { return l.UserID + ":" + l.CommentID }).
			WithIndex("comment", func(l *domain.CommentLike) []string { return []string{l.CommentID} }).
			WithIndex("user", func(l *domain.CommentLike) []string { return []string{l.UserID} })

	ReviewLikes = NewTable[domain.ReviewLike]("reviewLikes").
			WithUniqueIndex("user_target", func(l *domain.ReviewLike) string { return l.UserID + ":" + l.ReviewID }).
			WithIndex("review", func(l *domain.ReviewLike) []string { return []string{l.ReviewID} }).
			WithIndex("user", func(l *domain.ReviewLike) []string { return []string{l.UserID} })

	AuthorFollows = NewTable[domain.AuthorFollow]("authorFollows").
			WithUniqueIndex("pair", func(f *domain.AuthorFollow) string { return f.FollowerID + ":" + f.FollowingID }).
			WithIndex("follower", func(f *domain.AuthorFollow) []string { return []string{f.FollowerID} }).
			WithIndex("following", func(f *domain.AuthorFollow) []string { return []string{f.FollowingID} })

	BookFollows = NewTable[domain.BookFollow]("bookFollows").
			WithUniqueIndex("pair", func(f *domain.BookFollow) string { return f.FollowerID + ":" + f.FollowingID }).
			WithIndex("follower", func(f *domain.BookFollow) []string { return []string{f.FollowerID} }).
			WithIndex("following", func(f *domain.BookFollow) []string { return []string{f.FollowingID} })

	// Activities carry time-ordered indexes (inverted timestamps, newest
	// first on forward iteration) for feeds, plus one reference index per
	// entity kind for cascade deletion.
	Activities = NewTable[domain.Activity]("activities").
			WithIndex("time", func(a *domain.Activity) []string {
			return []string{InvertedTimestamp(a.CreatedAt)}
		}).
		WithIndex("author", func(a *domain.Activity) []string {
			return []string{a.AuthorID + ":" + InvertedTimestamp(a.CreatedAt)}
		}).
		WithIndex("book", func(a *domain.Activity) []string { return []string{a.BookID} }).
		WithIndex("chapter", func(a *domain.Activity) []string { return []string{a.ChapterID} }).
		WithIndex("comment", func(a *domain.Activity) []string { return []string{a.CommentID} }).
		WithIndex("review", func(a *domain.Activity) []string { return []string{a.ReviewID} })

	// Sessions have no registered handlers; they are plain storage.
	Sessions = NewTable[domain.Session]("sessions").
			WithUniqueIndex("token", func(s *domain.Session) string { return s.RefreshTokenHash }).
			WithIndex("user", func(s *domain.Session) []string { return []string{s.UserID} })
)
