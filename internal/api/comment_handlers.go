package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/comments",
		Summary:     "Post a comment",
		Description: "Posts a comment under a chapter, optionally threaded under a parent comment",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/comments/{id}/remove",
		Summary:     "Remove a comment",
		Description: "Soft-deletes a comment: the content is blanked and the row stays so threaded replies keep their anchor. Counters are unchanged.",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete a comment",
		Description: "Hard-deletes a comment with its likes and activities, adjusting counters. Replies are not deleted.",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listChapterComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters/{id}/comments",
		Summary:     "List a chapter's comments",
		Description: "Returns a chapter's comments oldest first, hydrated with authors and viewer state",
		Tags:        []string{"Comments"},
	}, s.handleListChapterComments)
}

// === DTOs ===

// CommentResponse contains comment data in API responses.
type CommentResponse struct {
	ID        string    `json:"id" doc:"Comment ID"`
	AuthorID  string    `json:"author_id" doc:"Commenter's user ID"`
	BookID    string    `json:"book_id" doc:"Book the chapter belongs to"`
	ChapterID string    `json:"chapter_id" doc:"Chapter commented on"`
	ParentID  string    `json:"parent_id,omitempty" doc:"Parent comment ID for threaded replies"`
	Content   string    `json:"content" doc:"Comment content, sanitized HTML. Empty when removed."`
	IsDeleted bool      `json:"is_deleted" doc:"Whether the comment was removed by moderation"`
	CreatedAt time.Time `json:"created_at" doc:"Post timestamp"`

	TotalLikes int `json:"total_likes" doc:"Likes on the comment"`
}

// CommentViewResponse is a comment hydrated with author and viewer state.
type CommentViewResponse struct {
	Comment   CommentResponse `json:"comment" doc:"The comment"`
	Author    *UserResponse   `json:"author,omitempty" doc:"Commenter public profile, absent if the account was deleted"`
	LikedByMe bool            `json:"liked_by_me" doc:"Whether the viewer likes this comment"`
}

// CreateCommentRequest is the request body for posting a comment.
type CreateCommentRequest struct {
	ChapterID string `json:"chapter_id" validate:"required" doc:"Chapter to comment on"`
	ParentID  string `json:"parent_id,omitempty" doc:"Parent comment for threaded replies"`
	Content   string `json:"content" validate:"required,max=10000" doc:"Comment content"`
}

// CreateCommentInput wraps the create request for Huma.
type CreateCommentInput struct {
	Body CreateCommentRequest
}

// CommentIDInput contains the comment ID path parameter.
type CommentIDInput struct {
	ID string `path:"id" maxLength:"100" doc:"Comment ID"`
}

// CommentOutput wraps a single comment for Huma.
type CommentOutput struct {
	Body CommentResponse
}

// CommentListResponse contains a chapter's comments.
type CommentListResponse struct {
	Comments []CommentViewResponse `json:"comments" doc:"Comments oldest first"`
	Total    int                   `json:"total" doc:"Number of comments returned"`
}

// CommentListOutput wraps the comment list for Huma.
type CommentListOutput struct {
	Body CommentListResponse
}

// === Handlers ===

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comment.Create(ctx, userID, service.CreateCommentRequest{
		ChapterID: input.Body.ChapterID,
		ParentID:  input.Body.ParentID,
		Content:   input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: mapComment(comment)}, nil
}

func (s *Server) handleRemoveComment(ctx context.Context, input *CommentIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Comment.Remove(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Comment removed"}}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Comment.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Comment deleted"}}, nil
}

func (s *Server) handleListChapterComments(ctx context.Context, input *ChapterIDInput) (*CommentListOutput, error) {
	views, err := s.services.Comment.ListByChapter(ctx, viewerID(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	resp := CommentListResponse{Comments: make([]CommentViewResponse, 0, len(views)), Total: len(views)}
	for _, view := range views {
		item := CommentViewResponse{
			Comment:   mapComment(view.Comment),
			LikedByMe: view.LikedByMe,
		}
		if view.Author != nil {
			author := mapUser(view.Author)
			item.Author = &author
		}
		resp.Comments = append(resp.Comments, item)
	}

	return &CommentListOutput{Body: resp}, nil
}

// === Helpers ===

func mapComment(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		AuthorID:   c.AuthorID,
		BookID:     c.BookID,
		ChapterID:  c.ChapterID,
		ParentID:   c.ParentID,
		Content:    c.Content,
		IsDeleted:  c.IsDeleted,
		CreatedAt:  c.CreatedAt,
		TotalLikes: c.TotalLikes,
	}
}
