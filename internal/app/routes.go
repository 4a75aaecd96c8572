package app

import (
	"net/http"
	"time"

	"github.com/embracingthegirlchild/site/internal/config"
	"github.com/embracingthegirlchild/site/internal/middleware"
	"github.com/embracingthegirlchild/site/internal/modules/auth"
	"github.com/embracingthegirlchild/site/internal/modules/content/comment"
	"github.com/embracingthegirlchild/site/internal/modules/content/post"
	"github.com/embracingthegirlchild/site/internal/modules/dashboard"
	"github.com/embracingthegirlchild/site/internal/modules/pages"
	"github.com/embracingthegirlchild/site/internal/modules/syndication/sitemap"
	"github.com/embracingthegirlchild/site/internal/modules/user"
	"github.com/embracingthegirlchild/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	commentLimit = 10
	loginLimit   = 20
	limitWindow  = 10 * time.Minute
)

func (a *App) registerRoutes() {
	r := a.router
	db := a.deps.DB

	r.NoRoute(response.NotFound)
	r.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0, "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1, "jobs": a.sched.List()})
	})
	if a.deps.Metrics != nil {
		path := a.cfg.Telemetry.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(a.deps.Metrics.Handler()))
	}

	r.Static("/static", a.cfg.StaticDir())
	if a.deps.Store.Name() == config.BackendLocal {
		r.Static("/media", a.cfg.MediaDir())
	}

	posts := post.NewService(db, a.deps.Store, a.deps.Events, a.deps.Metrics, a.logger)
	comments := comment.NewService(db)
	users := user.NewService(db)

	post.NewHandler(posts, comments).RegisterRoutes(r,
		middleware.RateLimit(a.deps.Redis, "comment", commentLimit, limitWindow, a.logger))
	pages.NewHandler(posts).RegisterRoutes(r)
	auth.NewHandler(users, a.sessions, a.cfg.IsProduction()).RegisterRoutes(r,
		middleware.RateLimit(a.deps.Redis, "login", loginLimit, limitWindow, a.logger))
	dashboard.NewHandler(dashboard.NewService(db, posts), posts, a.views).
		RegisterRoutes(r, middleware.RequireLogin())
	sitemap.NewHandler(db, a.cfg.SiteURL).RegisterRoutes(r)
}
