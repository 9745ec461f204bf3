package providers

import (
	"github.com/samber/do/v2"

	"github.com/fablepress/fablepress-server/internal/auth"
	"github.com/fablepress/fablepress-server/internal/logger"
	"github.com/fablepress/fablepress-server/internal/service"
)

// ProvideSessionService creates the session management service.
func ProvideSessionService(injector do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	tokenService := do.MustInvoke[*auth.TokenService](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideUserService creates the user profile service.
func ProvideUserService(injector do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideAuthService creates the authentication service.
func ProvideAuthService(injector do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	tokenService := do.MustInvoke[*auth.TokenService](injector)
	sessionService := do.MustInvoke[*service.SessionService](injector)
	userService := do.MustInvoke[*service.UserService](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, userService, log.Logger), nil
}

// ProvideBookService creates the book service.
func ProvideBookService(injector do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	return service.NewBookService(storeHandle.Store, log.Logger), nil
}

// ProvideChapterService creates the chapter service.
func ProvideChapterService(injector do.Injector) (*service.ChapterService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	return service.NewChapterService(storeHandle.Store, log.Logger), nil
}

// ProvideCommentService creates the comment service.
func ProvideCommentService(injector do.Injector) (*service.CommentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	return service.NewCommentService(storeHandle.Store, log.Logger), nil
}

// ProvideReviewService creates the review service.
func ProvideReviewService(injector do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	return service.NewReviewService(storeHandle.Store, log.Logger), nil
}

// ProvideSocialService creates the likes and follows service.
func ProvideSocialService(injector do.Injector) (*service.SocialService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	return service.NewSocialService(storeHandle.Store, log.Logger), nil
}

// ProvideActivityService creates the activity feed service.
func ProvideActivityService(injector do.Injector) (*service.ActivityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	return service.NewActivityService(storeHandle.Store, log.Logger), nil
}
