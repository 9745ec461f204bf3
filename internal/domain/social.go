package domain

// Like and follow relations are stored as join rows: existence means
// "liked" / "following". Each table enforces at most one row per pair via
// a unique index on (user, target).
//
// AuthorID denormalizes the liked target's author. Like deletions happen
// during cascades after the target itself is gone, and the author's like
// total must still be decremented exactly once per row.

// BookLike marks that a user liked a book.
type BookLike struct {
	Meta
	UserID   string `json:"user_id"`
	BookID   string `json:"book_id"`
	AuthorID string `json:"author_id"`
}

// ChapterLike marks that a user liked a chapter. BookID duplicates the
// chapter's book because chapter likes also roll up into the book's total.
type ChapterLike struct {
	Meta
	UserID    string `json:"user_id"`
	ChapterID string `json:"chapter_id"`
	BookID    string `json:"book_id"`
	AuthorID  string `json:"author_id"`
}

// CommentLike marks that a user liked a comment.
type CommentLike struct {
	Meta
	UserID    string `json:"user_id"`
	CommentID string `json:"comment_id"`
	AuthorID  string `json:"author_id"`
}

// ReviewLike marks that a user liked a review.
type ReviewLike struct {
	Meta
	UserID   string `json:"user_id"`
	ReviewID string `json:"review_id"`
	AuthorID string `json:"author_id"`
}

// AuthorFollow marks that FollowerID follows the author FollowingID.
type AuthorFollow struct {
	Meta
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}

// BookFollow marks that FollowerID follows the book FollowingID.
type BookFollow struct {
	Meta
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}
