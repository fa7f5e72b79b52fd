// Package httpapi wires the HTTP transport (Gin) to the feed services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, identity, logging/redaction, panic recovery,
// metrics, rate limiting, CORS, security headers and compression.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/categories"
	"github.com/tbourn/go-card-feed/internal/config"
	"github.com/tbourn/go-card-feed/internal/docs"
	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/http/handlers"
	"github.com/tbourn/go-card-feed/internal/http/middleware"
	"github.com/tbourn/go-card-feed/internal/repo"
)

// contentRepoShim adapts the repository free functions to the
// services.ContentRepo interface. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type contentRepoShim struct{}

func (contentRepoShim) ListCards(ctx context.Context, db *gorm.DB, q repo.CardQuery) ([]domain.Card, error) {
	return repo.ListCards(ctx, db, q)
}

func (contentRepoShim) ListCategoryLinkedCards(ctx context.Context, db *gorm.DB, categoryID uint, q repo.CardQuery) ([]domain.Card, error) {
	return repo.ListCategoryLinkedCards(ctx, db, categoryID, q)
}

func (contentRepoShim) ListMoodLinkedCards(ctx context.Context, db *gorm.DB, moodID uint, q repo.CardQuery) ([]domain.Card, error) {
	return repo.ListMoodLinkedCards(ctx, db, moodID, q)
}

func (contentRepoShim) GetCard(ctx context.Context, db *gorm.DB, id uint) (*domain.Card, error) {
	return repo.GetCard(ctx, db, id)
}

func (contentRepoShim) ListGameMetadata(ctx context.Context, db *gorm.DB, cardIDs []uint) ([]domain.GameMetadata, error) {
	return repo.ListGameMetadata(ctx, db, cardIDs)
}

func (contentRepoShim) GetCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Category, error) {
	return repo.GetCategoryBySlug(ctx, db, slug)
}

func (contentRepoShim) GetMood(ctx context.Context, db *gorm.DB, id uint) (*domain.Mood, error) {
	return repo.GetMood(ctx, db, id)
}

func (contentRepoShim) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.MembershipProfile, error) {
	return repo.GetProfile(ctx, db, userID)
}

// feedCacheRepoShim adapts the feed cache table functions to services.FeedCacheRepo.
type feedCacheRepoShim struct{}

func (feedCacheRepoShim) GetFeedCache(ctx context.Context, db *gorm.DB, userID string, date domain.Date, scope string) (*domain.FeedCacheEntry, error) {
	return repo.GetFeedCache(ctx, db, userID, date, scope)
}

func (feedCacheRepoShim) PutFeedCache(ctx context.Context, db *gorm.DB, userID string, date domain.Date, scope string, payload []byte) error {
	return repo.PutFeedCache(ctx, db, userID, date, scope, payload)
}

func (feedCacheRepoShim) DeleteFeedCacheForUser(ctx context.Context, db *gorm.DB, userID string, date domain.Date) (int64, error) {
	return repo.DeleteFeedCacheForUser(ctx, db, userID, date)
}

func (feedCacheRepoShim) DeleteFeedCacheForDate(ctx context.Context, db *gorm.DB, date domain.Date) (int64, error) {
	return repo.DeleteFeedCacheForDate(ctx, db, date)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability (tracing, metrics), identity, rate limiting, CORS and
// security headers, health and metrics endpoints, optional Swagger UI, and
// the versioned feed API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: resolve X-User-ID before anything logs
//  4. Logger: structured access logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics
//  8. Rate limiter (per user/IP; health and metrics exempt)
//  9. CORS, security headers and gzip
func RegisterRoutes(r *gin.Engine, db *gorm.DB, mapping *categories.Mapping, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Caller identity from the gateway header
	r.Use(middleware.Identity())

	// 4) Structured logging with redaction
	r.Use(middleware.Logger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB); the API takes no bodies, this caps abuse
	r.Use(limitBody(1 << 20))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).
		Exempt("/health", "/metrics")
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", middleware.HeaderFeedCache}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Card payloads are JSON-heavy; promhttp compresses on its own.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/mapping
	h := handlers.New(newServices(db, mapping, cfg.Feed))

	// Public API; every response depends on the caller's tier, so none is
	// shareable by intermediaries.
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.PrivateFeed())
	{
		// Feed
		api.GET("/feed", h.GetFeed)
		api.GET("/feed/category/:slug", h.GetCategoryFeed)

		// Feed cache
		api.POST("/feed/cache/clear", h.ClearOwnFeedCache)
		api.DELETE("/feed/cache/clear", h.ClearAllFeedCaches)

		// Games
		api.GET("/games", h.GetGames)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
