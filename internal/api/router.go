package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/middleware"
	"github.com/tallyhq/tally/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log            *logrus.Logger
	DB             HealthChecker
	Hub            *ws.Hub
	Items          domain.ItemService
	Roles          domain.RoleService
	Users          domain.UserService
	Audit          domain.AuditService
	CORSOrigins    []string
	Version        string
	RateLimit      float64
	RateBurst      int
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	Production     bool
}

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.ResponseTime())
	r.Use(ginLogger(deps.Log))
	r.Use(middleware.Recovery(deps.Log, !deps.Production))
	r.Use(middleware.SecurityHeaders(deps.Production))
	r.Use(middleware.MaxBodySize(deps.MaxBodyBytes))
	r.Use(cors.New(cors.Config{
		AllowOrigins: deps.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type", middleware.RequestIDHeader, middleware.ActorIDHeader, middleware.ActorEmailHeader,
		},
		ExposeHeaders:    []string{middleware.RequestIDHeader, middleware.ResponseTimeHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/events", "/metrics"})))
	r.Use(middleware.NewRateLimiter(ctx, deps.RateLimit, deps.RateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.Actor())

	if !deps.Production {
		r.Use(func(c *gin.Context) {
			c.Set(exposeErrorsKey, true)
			c.Next()
		})
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers.
func registerRoutes(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	log := deps.Log

	var feed ClientCounter
	if deps.Hub != nil {
		feed = deps.Hub
	}

	health := NewHealthHandler(deps.DB, feed, log, deps.Version)
	r.GET("/", Index)
	r.GET("/health", health.Liveness)
	r.GET("/ready", health.Readiness)

	if deps.Hub != nil {
		r.GET("/events", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
	}

	// Data routes carry the request deadline; the feed and health checks do not.
	data := r.Group("", middleware.Timeout(deps.RequestTimeout))

	NewItemHandler(deps.Items, log).Register(data.Group("/items"))
	NewRoleHandler(deps.Roles, log).Register(data.Group("/roles"))
	NewUserHandler(deps.Users, log).Register(data.Group("/users"))
	data.GET("/audit-logs", NewAuditHandler(deps.Audit, log).List)

	r.NoRoute(NotFound)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	useJSONFieldNames()

	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r, deps)

	return r
}
