// Package app assembles the site: storage, services, handlers and the gin
// engine that routes to them.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/embracingthegirlchild/site/internal/config"
	"github.com/embracingthegirlchild/site/internal/database"
	"github.com/embracingthegirlchild/site/internal/middleware"
	"github.com/embracingthegirlchild/site/internal/modules/storage/media"
	pkgcron "github.com/embracingthegirlchild/site/internal/pkg/cron"
	"github.com/embracingthegirlchild/site/internal/pkg/events"
	jwtpkg "github.com/embracingthegirlchild/site/internal/pkg/jwt"
	"github.com/embracingthegirlchild/site/internal/pkg/metrics"
	pkgredis "github.com/embracingthegirlchild/site/internal/pkg/redis"
	sessionpkg "github.com/embracingthegirlchild/site/internal/pkg/session"
	"github.com/embracingthegirlchild/site/internal/pkg/telemetry"
	"github.com/embracingthegirlchild/site/internal/pkg/validation"
	"github.com/embracingthegirlchild/site/internal/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external resources the app runs on. Zero values fall back to
// the disabled variant where one exists: no redis, no events, no metrics.
type Deps struct {
	DB      *gorm.DB
	Redis   *pkgredis.Client
	Store   media.Storage
	Events  events.Publisher
	Metrics *metrics.Registry
}

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	deps     Deps
	router   *gin.Engine
	views    *view.Renderer
	sessions *sessionpkg.Manager
	sched    *pkgcron.Scheduler
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// New initializes the application: config → DB → Redis → storage → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyTimezone(cfg.Timezone); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, cfg.Database.AutoMigrate || cfg.IsDev())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.RedisURL != "" {
		if rc, err = pkgredis.Connect(cfg.RedisURL); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	} else {
		logger.Info("redis not configured, rate limiting disabled")
	}

	store, err := media.New(cfg, "")
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}

	var reg *metrics.Registry
	if cfg.Telemetry.Metrics {
		reg = metrics.New()
	}

	a, err := Build(logger, cfg, Deps{
		DB:      db,
		Redis:   rc,
		Store:   store,
		Events:  events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic),
		Metrics: reg,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.sched.Start(ctx)
	return a, nil
}

// Build wires the router over already opened resources. Background jobs are
// registered but not started.
func Build(logger *zap.Logger, cfg *config.AppConfig, deps Deps) (*App, error) {
	if deps.DB == nil {
		return nil, errors.New("database is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if deps.Store == nil {
		deps.Store = media.NewLocal(cfg.MediaDir())
	}

	views, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	validation.Setup()

	switch {
	case gin.Mode() == gin.TestMode:
	case cfg.IsDev():
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HTMLRender = views
	router.RedirectTrailingSlash = true
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(deps.Metrics))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(corsMiddleware(cfg.AllowedOrigins))
	}

	sessions := sessionpkg.NewManager(deps.DB, jwtpkg.NewSigner(cfg.SecretKey), sessionpkg.DefaultTTL)
	router.Use(middleware.OptionalAuth(sessions))

	a := &App{
		cfg:      cfg,
		deps:     deps,
		router:   router,
		views:    views,
		sessions: sessions,
		sched:    pkgcron.New(logger),
		logger:   logger,
		cancel:   func() {},
	}
	registerJobs(a.sched, sessions, logger)
	a.registerRoutes()
	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return a.cfg.Addr() }

// Router returns the HTTP handler, traced when an OTLP endpoint is set.
func (a *App) Router() http.Handler {
	if a.cfg.Telemetry.OTLPEndpoint != "" {
		return telemetry.WrapHandler(a.router, a.cfg.Telemetry.ServiceName)
	}
	return a.router
}

// Engine exposes the gin engine, mainly for tests.
func (a *App) Engine() *gin.Engine { return a.router }

// Scheduler returns the housekeeping job scheduler.
func (a *App) Scheduler() *pkgcron.Scheduler { return a.sched }

// Shutdown stops background jobs and releases connections.
func (a *App) Shutdown() {
	a.cancel()
	if err := a.deps.Events.Close(); err != nil {
		a.logger.Warn("close event publisher", zap.Error(err))
	}
	if a.deps.Redis != nil {
		if err := a.deps.Redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.deps.DB); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
}
