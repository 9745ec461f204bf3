package domain

// Comment is a threaded reader comment on a chapter. BookID duplicates the
// chapter's book so book-level totals and cascades avoid an extra lookup.
type Comment struct {
	Meta
	AuthorID  string `json:"author_id"`
	BookID    string `json:"book_id"`
	ChapterID string `json:"chapter_id"`
	ParentID  string `json:"parent_id,omitempty"` // Empty for top-level comments

	Content string `json:"content"`

	// IsDeleted marks moderation removal. Aggregate counters ignore it;
	// only a hard delete adjusts totals.
	IsDeleted bool `json:"is_deleted"`

	TotalLikes int `json:"total_likes"`
}

// IsReply reports whether this comment is threaded under another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != ""
}
