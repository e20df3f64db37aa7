// Package main is the entry point for the Brewlog server.
// Brewlog is a multi-user beer diary with session-based authentication.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	memorycache "github.com/tapline/brewlog/internal/cache/memory"
	rediscache "github.com/tapline/brewlog/internal/cache/redis"
	"github.com/tapline/brewlog/internal/config"
	"github.com/tapline/brewlog/internal/handler"
	"github.com/tapline/brewlog/internal/metrics"
	"github.com/tapline/brewlog/internal/repository"
	"github.com/tapline/brewlog/internal/repository/postgres"
	"github.com/tapline/brewlog/internal/repository/sqlite"
	"github.com/tapline/brewlog/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting brewlog server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	var (
		repos  *repository.Repositories
		health repository.DatabaseHealth
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		repos = postgres.NewRepositories(db)
		health = db
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqliteConfig(cfg.Database), logger)
		if err != nil {
			return fmt.Errorf("opening sqlite database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		repos = sqlite.NewRepositories(db)
		health = db
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	// Session cache: Redis when configured, in-process otherwise.
	var cache repository.Cache
	if cfg.Redis.Enabled {
		redisCache, err := rediscache.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer redisCache.Close()
		cache = redisCache
	} else {
		memCache := memorycache.NewCache()
		defer memCache.Stop()
		cache = memCache
	}

	// Services
	users := service.NewUserService(repos.User, logger)
	sessions := service.NewSessionService(repos.Session, cache, cfg.Session.TTL, logger)
	beers := service.NewBeerService(repos.Beer, repos.Comment, logger)

	m := metrics.New()

	router, err := handler.NewRouter(handler.RouterConfig{
		Users:        users,
		Sessions:     sessions,
		Beers:        beers,
		Metrics:      m,
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		SessionTTL:   cfg.Session.TTL,
		Logger:       logger,
		Health: func(r *http.Request) error {
			return health.Ping(r.Context())
		},
	})
	if err != nil {
		return fmt.Errorf("building router: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: metricsHandler(cfg.Metrics.Path, m),
		}
		go func() {
			logger.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// Periodically purge expired sessions so the store does not grow
	// unbounded; lookups already ignore expired rows.
	go purgeExpiredSessions(ctx, sessions, logger)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}

	logger.Info().Msg("server stopped")
	return nil
}

// purgeExpiredSessions deletes expired sessions hourly until ctx is done.
func purgeExpiredSessions(ctx context.Context, sessions *service.SessionService, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("failed to purge expired sessions")
				continue
			}
			if deleted > 0 {
				logger.Info().Int64("deleted", deleted).Msg("purged expired sessions")
			}
		}
	}
}

func metricsHandler(path string, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	return mux
}

func sqliteConfig(cfg config.DatabaseConfig) sqlite.Config {
	sc := sqlite.DefaultConfig(cfg.Path)
	if cfg.JournalMode != "" {
		sc.JournalMode = cfg.JournalMode
	}
	if cfg.BusyTimeout > 0 {
		sc.BusyTimeout = cfg.BusyTimeout
	}
	if cfg.CacheSize != 0 {
		sc.CacheSize = cfg.CacheSize
	}
	if cfg.SynchronousMode != "" {
		sc.SynchronousMode = cfg.SynchronousMode
	}
	return sc
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
