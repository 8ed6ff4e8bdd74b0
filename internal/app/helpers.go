package app

import (
	"time"

	"github.com/tsystem/portal/internal/config"
	jwtpkg "github.com/tsystem/portal/internal/pkg/jwt"
	"github.com/tsystem/portal/internal/pkg/ratelimit"
	pkgredis "github.com/tsystem/portal/internal/pkg/redis"
	"go.uber.org/zap"
)

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) {
	jwtpkg.SetSecret(cfg.JWTSecret)
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("jwt_secret is not set, using the development secret")
	}
}

// newStore returns a Redis-backed store when rc is set, otherwise a process-local one.
func newStore(rc *pkgredis.Client, prefix string, window time.Duration) ratelimit.Store {
	if rc != nil {
		return ratelimit.NewRedis(rc.Raw(), prefix, window)
	}
	return ratelimit.NewMemory(window)
}

func retryAfterSeconds(window time.Duration) int {
	s := int(window / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
