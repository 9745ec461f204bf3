package domain

import "strings"

// Chapter is one installment of a book. AuthorID duplicates the book's
// author so per-author totals can be maintained without an extra lookup.
type Chapter struct {
	Meta
	BookID   string `json:"book_id"`
	AuthorID string `json:"author_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`

	TotalWords    int `json:"total_words"`
	TotalLikes    int `json:"total_likes"`
	TotalComments int `json:"total_comments"`
}

// CountWords returns the number of whitespace-delimited tokens in content.
// This is the counter fed into book and author word totals, not a linguistic
// word count: HTML markup counts, consecutive spaces produce empty tokens,
// and the empty string counts as one token. Kept exactly for compatibility
// with historical totals.
func CountWords(content string) int {
	return len(strings.Split(content, " "))
}
