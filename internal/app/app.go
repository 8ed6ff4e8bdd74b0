package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/config"
	"github.com/tsystem/portal/internal/database"
	"github.com/tsystem/portal/internal/middleware"
	"github.com/tsystem/portal/internal/pkg/audit"
	pkgcron "github.com/tsystem/portal/internal/pkg/cron"
	pkgredis "github.com/tsystem/portal/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	redis  *pkgredis.Client
	logger *zap.Logger
	audit  *audit.Recorder
	sched  *pkgcron.Scheduler
	cancel context.CancelFunc
}

// New initializes the application: config → DB → Redis → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.Redis.Enable {
		rc, err = pkgredis.Connect(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	a, err := NewWithDeps(logger, cfg, db, rc)
	if err != nil {
		return nil, err
	}
	a.StartJobs()
	return a, nil
}

// NewWithDeps builds the router on an already opened database and optional Redis
// client. Background jobs are registered but not started.
func NewWithDeps(logger *zap.Logger, cfg *config.AppConfig, db *gorm.DB, rc *pkgredis.Client) (*App, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and database are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	applyRuntimeSettings(cfg, logger)

	switch {
	case cfg.IsDev():
		gin.SetMode(gin.DebugMode)
	case cfg.Env == "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins, cfg.IsDev())))

	sched := pkgcron.New(logger)
	registerCronJobs(sched, db, logger)

	a := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		redis:  rc,
		logger: logger,
		audit:  audit.NewRecorder(db, logger, cfg.Auth.FallbackCompanyID),
		sched:  sched,
		cancel: func() {},
	}
	a.registerRoutes()
	return a, nil
}

// StartJobs runs the scheduled jobs until Shutdown.
func (a *App) StartJobs() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.sched.Start(ctx)
}

// Addr returns the listen address.
func (a *App) Addr() string { return a.cfg.Addr() }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Scheduler exposes the job scheduler.
func (a *App) Scheduler() *pkgcron.Scheduler { return a.sched }

// DB exposes the database handle.
func (a *App) DB() *gorm.DB { return a.db }

// Shutdown stops background jobs and releases Redis and the connection pool.
func (a *App) Shutdown() {
	a.cancel()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
