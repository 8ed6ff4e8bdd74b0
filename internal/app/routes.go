package app

import (
	"github.com/tsystem/portal/internal/middleware"
	"github.com/tsystem/portal/internal/modules/auth/auth"
	"github.com/tsystem/portal/internal/modules/auth/loginlog"
	"github.com/tsystem/portal/internal/modules/auth/user"
	"github.com/tsystem/portal/internal/modules/dashboard/protected"
	"github.com/tsystem/portal/internal/modules/system/health"
)

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(spaFallback(a.cfg.StaticDir()))

	api := r.Group("/api")
	if rl := a.cfg.APIRateLimit; rl.Enable {
		store := newStore(a.redis, a.cfg.Redis.Prefix, rl.Window)
		api.Use(middleware.RateLimit(store, rl.Max, retryAfterSeconds(rl.Window), a.logger.Named("RateLimit")))
	}

	health.RegisterRoutes(api, health.Deps{
		DB:          db,
		Redis:       a.redis,
		Audit:       a.audit,
		Sched:       a.sched,
		Environment: a.cfg.Env,
	}, authMW)

	authSvc := auth.NewService(db,
		newStore(a.redis, a.cfg.Redis.Prefix, a.cfg.Auth.LockoutWindow),
		a.audit,
		a.logger,
		auth.Options{TokenTTL: a.cfg.Auth.TokenTTL, MaxAttempts: a.cfg.Auth.MaxLoginAttempts},
	)
	auth.NewHandler(authSvc, a.logger).RegisterRoutes(api)
	user.NewHandler(user.NewService(db), a.logger).RegisterRoutes(api, authMW)
	loginlog.RegisterRoutes(api, db, authMW)
	protected.RegisterRoutes(api, authMW)
}
