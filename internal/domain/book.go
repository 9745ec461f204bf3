package domain

// Book is a serialized work owned by a single author. Its counters cache
// totals over its chapters, comments, reviews, likes, and follows.
type Book struct {
	Meta
	AuthorID    string `json:"author_id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url,omitempty"`

	TotalChapters int `json:"total_chapters"`
	TotalWords    int `json:"total_words"`
	TotalLikes    int `json:"total_likes"`
	TotalComments int `json:"total_comments"`
	TotalReviews  int `json:"total_reviews"`
	TotalFollows  int `json:"total_follows"`
}
