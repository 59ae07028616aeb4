// Package main is the entrypoint for the Rust Atlanta API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dsgallups/rust-atlanta/internal/auth"
	"github.com/dsgallups/rust-atlanta/internal/cache"
	"github.com/dsgallups/rust-atlanta/internal/config"
	"github.com/dsgallups/rust-atlanta/internal/handler"
	"github.com/dsgallups/rust-atlanta/internal/metrics"
	"github.com/dsgallups/rust-atlanta/internal/middleware"
	"github.com/dsgallups/rust-atlanta/internal/migrate"
	"github.com/dsgallups/rust-atlanta/internal/presave"
	"github.com/dsgallups/rust-atlanta/internal/repository"
	"github.com/dsgallups/rust-atlanta/internal/server"
	"github.com/dsgallups/rust-atlanta/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.AutoMigrate {
		if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
			logger.Error("failed to run migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
	}

	tokens, err := auth.NewTokenGenerator(cfg.APIKeyPrefix)
	if err != nil {
		logger.Error("invalid api key prefix", "error", err)
		os.Exit(1)
	}
	sessions, err := auth.NewSessionIssuer(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		logger.Error("invalid session settings", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()

	repo, err := repository.New(ctx, cfg.DatabaseURL, presave.New(tokens), repository.WithMetrics(recorder))
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	authService := service.NewAuthService(service.AuthServiceConfig{
		Users:    repo,
		Hasher:   auth.NewPasswordHasher(auth.DefaultPasswordParams),
		Sessions: sessions,
		Tokens:   tokens,
		Cache:    cacheClient,
		Metrics:  recorder,
		Logger:   logger,
	})
	contentService := service.NewContentService(repo, logger)

	router := server.NewRouter(server.RouterConfig{
		Logger:  logger,
		Handler: handler.New(),
		Health:  handler.NewHealthHandler(repo, cacheClient),
		Metrics: handler.NewMetricsHandler(recorder),
		Auth:    handler.NewAuthHandler(authService, logger),
		Content: handler.NewContentHandler(contentService, logger),
		Authentication: middleware.AuthConfig{
			Logger:        logger,
			Authenticator: authService,
			IsUnauthenticated: func(err error) bool {
				return errors.Is(err, service.ErrUnauthenticated)
			},
		},
		LoginRateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cacheClient,
			Metrics: recorder,
			Enabled: cfg.RateLimitLoginEnabled,
			RPS:     cfg.RateLimitLoginRPS,
			Burst:   cfg.RateLimitLoginBurst,
		},
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	runner, err := migrate.Open(databaseURL, logger)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.Up()
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
