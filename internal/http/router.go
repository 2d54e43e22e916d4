// Package httpapi wires the HTTP transport (Gin) to the tracker handlers and
// the shared middleware: tracing, correlation ids, the access log, recovery,
// metrics, rate limiting, CORS, security headers, compression and the serving
// deadline of the feed endpoints.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/ai-tracker/internal/config"
	"github.com/tbourn/ai-tracker/internal/http/handlers"
	"github.com/tbourn/ai-tracker/internal/http/middleware"
)

// RegisterRoutes attaches all middleware and endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry
//  2. RequestID
//  3. AccessLog (redacted)
//  4. Recovery
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per IP; probes and scrapes exempt)
//  8. CORS and security headers
//  9. gzip
//
// The feed group additionally runs under the serving deadline.
func RegisterRoutes(r *gin.Engine, h *handlers.Handlers, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.LogOptions{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	r.Use(middleware.Recovery())

	// Only POST /tools/refresh accepts a body and it ignores it.
	r.Use(limitBody(64 << 10))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP(), "/health", "/metrics")
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		CacheControl: "no-cache",
		EnablePolicy: true,
	}))

	// Feed payloads run to hundreds of KiB of repetitive JSON.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", h.Health)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := groupWithPrefix(r, cfg.APIBasePath)
	if cfg.APIBasePath != "/" {
		api.GET("/health", h.Health)
	}
	api.GET("/stats", h.Stats)

	tools := api.Group("/tools")
	{
		// Catalog
		tools.GET("", h.ListTools)
		tools.GET("/categories", h.Categories)
		tools.GET("/search/:query", h.SearchTools)

		// Archive
		tools.GET("/archive", h.Archive)
		tools.GET("/archive/stats", h.ArchiveStats)
		tools.GET("/archive/:toolId", h.ToolArchive)

		tools.GET("/:id", h.GetTool)
	}

	feed := tools.Group("", middleware.Deadline(cfg.Acquire.RequestDeadline))
	{
		feed.GET("/with-posts", h.ToolsWithPosts)
		feed.GET("/timeline", h.Timeline)
		feed.GET("/status/api", h.Status)
		feed.POST("/refresh", h.Refresh)
	}
}

// corsMiddleware allows every origin when none are configured; otherwise it
// echoes allow-listed origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// ACAO even without an Origin header, for probes and curl.
		star := func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		}
		return []gin.HandlerFunc{star, cors.New(base)}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	echo := func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{echo, cors.New(base)}
}

// limitBody caps request bodies at maxBytes.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
