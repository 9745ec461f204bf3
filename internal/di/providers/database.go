package providers

import (
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/fablepress/fablepress-server/internal/aggregate"
	"github.com/fablepress/fablepress-server/internal/config"
	"github.com/fablepress/fablepress-server/internal/logger"
	"github.com/fablepress/fablepress-server/internal/store"
)

// StoreHandle wraps the document store for lifecycle management.
type StoreHandle struct {
	Store *store.Store
}

// Shutdown closes the store, flushing pending writes.
func (h *StoreHandle) Shutdown() error {
	return h.Store.Close()
}

// ProvideStore opens the document database under the configured data path.
func ProvideStore(injector do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")

	st, err := store.New(dbPath, log.Logger, aggregate.NewPipeline())
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", dbPath, err)
	}

	log.Info("store opened", "path", dbPath)

	return &StoreHandle{Store: st}, nil
}
