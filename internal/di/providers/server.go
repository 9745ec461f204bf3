package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/fablepress/fablepress-server/internal/api"
	"github.com/fablepress/fablepress-server/internal/config"
	"github.com/fablepress/fablepress-server/internal/logger"
	"github.com/fablepress/fablepress-server/internal/service"
)

// HTTPServerHandle wraps the HTTP server for lifecycle management.
type HTTPServerHandle struct {
	Server *http.Server
	logger *logger.Logger
}

// Shutdown gracefully stops the HTTP server, draining in-flight requests.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	h.logger.Info("shutting down HTTP server")
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer assembles the API server and starts listening in the background.
func ProvideHTTPServer(injector do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)
	storeHandle := do.MustInvoke[*StoreHandle](injector)

	services := &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](injector),
		Session:  do.MustInvoke[*service.SessionService](injector),
		User:     do.MustInvoke[*service.UserService](injector),
		Book:     do.MustInvoke[*service.BookService](injector),
		Chapter:  do.MustInvoke[*service.ChapterService](injector),
		Comment:  do.MustInvoke[*service.CommentService](injector),
		Review:   do.MustInvoke[*service.ReviewService](injector),
		Social:   do.MustInvoke[*service.SocialService](injector),
		Activity: do.MustInvoke[*service.ActivityService](injector),
	}

	apiServer := api.NewServer(storeHandle.Store, services, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening",
			"name", cfg.Server.Name,
			"addr", srv.Addr,
			"environment", cfg.App.Environment,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, logger: log}, nil
}
