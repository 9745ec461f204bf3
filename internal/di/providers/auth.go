package providers

import (
	"encoding/hex"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/fablepress/fablepress-server/internal/auth"
	"github.com/fablepress/fablepress-server/internal/config"
	"github.com/fablepress/fablepress-server/internal/logger"
)

// AuthKey is the PASETO v4 symmetric key used to sign access tokens.
type AuthKey []byte

// ProvideAuthKey loads or generates the access token key and stores it in config.
func ProvideAuthKey(injector do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load auth key: %w", err)
	}
	cfg.Auth.AccessTokenKey = key

	log.Debug("auth key loaded", "path", cfg.Data.BasePath)

	return AuthKey(key), nil
}

// ProvideTokenService creates the PASETO token service.
func ProvideTokenService(injector do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	key := do.MustInvoke[AuthKey](injector)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(key),
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	return tokenService, nil
}
