package domain

// Review is a reader review of a whole book.
type Review struct {
	Meta
	AuthorID string `json:"author_id"`
	BookID   string `json:"book_id"`
	Content  string `json:"content"`

	TotalLikes int `json:"total_likes"`
}
