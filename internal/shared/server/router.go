// Package server assembles the Gin engine: middleware chain, health and
// metrics endpoints, and the per-feature route groups.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "resumind/internal/auth"
	"resumind/internal/backend"
	"resumind/internal/maintenance"
	"resumind/internal/records"
	"resumind/internal/shared/config"
	"resumind/internal/shared/metrics"
	"resumind/internal/shared/server/middleware"
	"resumind/internal/shared/server/respond"
)

// RouterDeps carries the handlers and services the router mounts.
type RouterDeps struct {
	Config             config.Config
	Backend            *backend.Facade
	RecordsHandler     *records.Handler
	MaintenanceHandler *maintenance.Handler
	GoogleAuth         *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.Backend))
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)

	if deps.RecordsHandler != nil {
		limited := api.Group("")
		limited.Use(middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: "READS",
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/records" {
					return "SUBMIT"
				}
				return "READS"
			},
			Rules: map[string]middleware.RateLimitRule{
				// Pipeline submissions fan out to storage and the model,
				// so they get a much tighter budget than reads.
				"SUBMIT": {Rate: 0.2, Burst: 3},
				"READS":  {Rate: 10, Burst: 30},
			},
		}))
		deps.RecordsHandler.RegisterRoutes(limited)
	}

	if deps.Config.Env == "dev" && deps.MaintenanceHandler != nil {
		dev := api.Group("/dev")
		deps.MaintenanceHandler.RegisterRoutes(dev)
	}

	return r
}

// healthHandler reports facade readiness and the last recorded error.
func healthHandler(facade *backend.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		if facade == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		body := gin.H{"ok": facade.Ready()}
		if lastErr := facade.LastError(); lastErr != "" {
			body["lastError"] = lastErr
		}
		status := http.StatusOK
		if !facade.Ready() {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, body)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
