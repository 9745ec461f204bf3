package api

import (
	"github.com/fablepress/fablepress-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	Session  *service.SessionService
	User     *service.UserService
	Book     *service.BookService
	Chapter  *service.ChapterService
	Comment  *service.CommentService
	Review   *service.ReviewService
	Social   *service.SocialService
	Activity *service.ActivityService
}
