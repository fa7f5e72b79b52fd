package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/categories"
	"github.com/tbourn/go-card-feed/internal/domain"
	httpapi "github.com/tbourn/go-card-feed/internal/http"
	"github.com/tbourn/go-card-feed/internal/observability"
	"github.com/tbourn/go-card-feed/internal/repo"
)

var (
	serveMigrate        bool
	serveCacheRetention int
	serveShutdownGrace  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply schema migrations at startup")
	serveCmd.Flags().IntVar(&serveCacheRetention, "cache-retention-days", 1, "purge feed cache entries older than this many days at startup (0 keeps only today)")
	serveCmd.Flags().DurationVar(&serveShutdownGrace, "shutdown-grace", 10*time.Second, "time allowed for in-flight requests on shutdown")
}

func serve(ctx context.Context) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	mapping, err := categories.Load(cfg.Feed.CategoryMapPath)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if serveMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.Feed.CacheBackend == "db" {
		purgeStaleFeeds(ctx, db, cfg.Feed.Location(), serveCacheRetention)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, mapping, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("api_base", cfg.APIBasePath).
			Str("cache_backend", cfg.Feed.CacheBackend).
			Str("timezone", cfg.Feed.Timezone).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), serveShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// purgeStaleFeeds removes cache rows that can no longer be hit. Lookups key on
// today's date, so older rows only take space. Failure is not fatal.
func purgeStaleFeeds(ctx context.Context, db *gorm.DB, loc *time.Location, retentionDays int) {
	if retentionDays < 0 {
		retentionDays = 0
	}
	cutoff := domain.DateOf(time.Now().In(loc)).AddDays(-retentionDays)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	n, err := repo.PurgeFeedCacheBefore(ctx, db, cutoff)
	if err != nil {
		log.Warn().Err(err).Str("before", cutoff.String()).Msg("feed cache purge failed")
		return
	}
	log.Info().Int64("deleted", n).Str("before", cutoff.String()).Msg("stale feed cache purged")
}
