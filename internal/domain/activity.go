package domain

// ActivityType discriminates the publish event an activity row records.
type ActivityType string

const (
	ActivityPublishBook    ActivityType = "publish_book"
	ActivityPublishChapter ActivityType = "publish_chapter"
	ActivityPublishComment ActivityType = "publish_comment"
	ActivityPublishReview  ActivityType = "publish_review"
)

// Valid checks if the activity type is a known variant.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityPublishBook, ActivityPublishChapter, ActivityPublishComment, ActivityPublishReview:
		return true
	default:
		return false
	}
}

// Activity is a denormalized feed row recording one publish event. It carries
// only references; feed reads resolve them back into full documents. Rows are
// deleted synchronously when any referenced entity is deleted, so a stored row
// never outlives its references.
type Activity struct {
	Meta
	Type     ActivityType `json:"type"`
	AuthorID string       `json:"author_id"`
	BookID   string       `json:"book_id"`

	// Set according to Type.
	ChapterID string `json:"chapter_id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
	ReviewID  string `json:"review_id,omitempty"`
}

// FeedEntry is an activity row hydrated with the documents it references.
// Chapter, Comment, and Review are populated according to the activity type.
type FeedEntry struct {
	Activity *Activity `json:"activity"`
	Author   *User     `json:"author"`
	Book     *Book     `json:"book"`
	Chapter  *Chapter  `json:"chapter,omitempty"`
	Comment  *Comment  `json:"comment,omitempty"`
	Review   *Review   `json:"review,omitempty"`
}
