package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "toggleBookLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/like",
		Summary:     "Toggle book like",
		Description: "Likes the book, or removes the like if already present",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleBookLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleChapterLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/chapters/{id}/like",
		Summary:     "Toggle chapter like",
		Description: "Likes the chapter, or removes the like if already present",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleChapterLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleCommentLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/comments/{id}/like",
		Summary:     "Toggle comment like",
		Description: "Likes the comment, or removes the like if already present",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleCommentLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleReviewLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{id}/like",
		Summary:     "Toggle review like",
		Description: "Likes the review, or removes the like if already present",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleReviewLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "followAuthor",
		Method:      http.MethodPost,
		Path:        "/api/v1/authors/{id}/follow",
		Summary:     "Follow an author",
		Description: "Follows the author. Following yourself or following twice is rejected.",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFollowAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfollowAuthor",
		Method:      http.MethodDelete,
		Path:        "/api/v1/authors/{id}/follow",
		Summary:     "Unfollow an author",
		Description: "Removes the follow. Unfollowing an author you don't follow is a no-op.",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnfollowAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "followBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/follow",
		Summary:     "Follow a book",
		Description: "Follows the book for update notifications",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFollowBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfollowBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/follow",
		Summary:     "Unfollow a book",
		Description: "Removes the follow. Unfollowing a book you don't follow is a no-op.",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnfollowBook)
}

// === DTOs ===

// ToggleResponse reports the like state after a toggle.
type ToggleResponse struct {
	Active bool `json:"active" doc:"Whether the like exists after the toggle"`
}

// ToggleOutput wraps the toggle response for Huma.
type ToggleOutput struct {
	Body ToggleResponse
}

// AuthorIDInput contains the author ID path parameter.
type AuthorIDInput struct {
	ID string `path:"id" maxLength:"100" doc:"Author's user ID"`
}

// === Handlers ===

func (s *Server) handleToggleBookLike(ctx context.Context, input *BookIDInput) (*ToggleOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Social.ToggleBookLike(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ToggleOutput{Body: ToggleResponse{Active: result.Active}}, nil
}

func (s *Server) handleToggleChapterLike(ctx context.Context, input *ChapterIDInput) (*ToggleOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Social.ToggleChapterLike(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ToggleOutput{Body: ToggleResponse{Active: result.Active}}, nil
}

func (s *Server) handleToggleCommentLike(ctx context.Context, input *CommentIDInput) (*ToggleOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Social.ToggleCommentLike(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ToggleOutput{Body: ToggleResponse{Active: result.Active}}, nil
}

func (s *Server) handleToggleReviewLike(ctx context.Context, input *ReviewIDInput) (*ToggleOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Social.ToggleReviewLike(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ToggleOutput{Body: ToggleResponse{Active: result.Active}}, nil
}

func (s *Server) handleFollowAuthor(ctx context.Context, input *AuthorIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.FollowAuthor(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Following author"}}, nil
}

func (s *Server) handleUnfollowAuthor(ctx context.Context, input *AuthorIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.UnfollowAuthor(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Unfollowed author"}}, nil
}

func (s *Server) handleFollowBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.FollowBook(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Following book"}}, nil
}

func (s *Server) handleUnfollowBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.UnfollowBook(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Unfollowed book"}}, nil
}
