// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/emoji-explainer/internal/admin"
	"github.com/carterperez-dev/emoji-explainer/internal/audit"
	"github.com/carterperez-dev/emoji-explainer/internal/auth"
	"github.com/carterperez-dev/emoji-explainer/internal/config"
	"github.com/carterperez-dev/emoji-explainer/internal/core"
	"github.com/carterperez-dev/emoji-explainer/internal/emoji"
	"github.com/carterperez-dev/emoji-explainer/internal/health"
	"github.com/carterperez-dev/emoji-explainer/internal/middleware"
	"github.com/carterperez-dev/emoji-explainer/internal/server"
	"github.com/carterperez-dev/emoji-explainer/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("genkeys", false, "write a new ES256 key pair and exit")
	privateKey := flag.String("private-key", "keys/private.pem", "private key path for -genkeys")
	publicKey := flag.String("public-key", "keys/public.pem", "public key path for -genkeys")
	flag.Parse()

	if *genKeys {
		if err := auth.GenerateKeyPair(*privateKey, *publicKey); err != nil {
			slog.Error("key generation failed", "error", err)
			os.Exit(1)
		}
		slog.Info("key pair written", "private", *privateKey, "public", *publicKey)
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("tracer initialized", "endpoint", cfg.Otel.Endpoint)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", jwtManager.Algorithm(),
		"key_id", jwtManager.KeyID(),
	)

	explainer, err := emoji.NewExplainer(cfg.Explainer)
	if err != nil {
		return err
	}
	logger.Info("explainer initialized", "provider", cfg.Explainer.Provider)

	userSvc := user.NewService(user.NewRepository(db.DB))

	authSvc := auth.NewService(
		jwtManager,
		userSvc,
		auth.NewRedisDenylist(redis.Client),
		logger,
	)
	authHandler := auth.NewHandler(authSvc)
	userHandler := user.NewHandler(userSvc, authSvc)

	auditSvc := audit.NewService(audit.NewRepository(db.ORM), logger)
	auditHandler := audit.NewHandler(auditSvc)

	emojiSvc := emoji.NewService(emoji.NewRepository(db.ORM), explainer, logger)
	emojiHandler := emoji.NewHandler(emojiSvc, auditSvc)

	if cfg.Seed.UsersPath != "" {
		seeded, seedErr := authSvc.SeedUsers(ctx, cfg.Seed.UsersPath)
		if seedErr != nil {
			return seedErr
		}
		logger.Info("seed users loaded", "created", seeded)
	}

	healthHandler := health.NewHandler(map[string]health.Checker{
		"database": db,
		"redis":    redis,
	})

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		DBPing:     db.Ping,
		RedisStats: redis.PoolStats,
		RedisPing:  redis.Ping,
		Users:      userSvc.CountUsers,
		Emoji:      emojiSvc.Count,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)

	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.AuthRequests,
			cfg.RateLimit.AuthBurst,
		),
		Prefix:   "ratelimit:auth",
		FailOpen: true,
	})

	healthHandler.RegisterRoutes(router)
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)

	router.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Handler)
			authHandler.RegisterRoutes(r, authenticator)
		})
		userHandler.RegisterRoutes(r, authenticator)
	})

	apiLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
		),
		Prefix:   "ratelimit:api",
		KeyFunc:  middleware.KeyByUser,
		FailOpen: true,
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(authSvc))
		r.Use(apiLimiter.Handler)
		emojiHandler.RegisterRoutes(r)
		auditHandler.RegisterRoutes(r)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireAdmin)

		adminHandler.RegisterRoutes(r)
		userHandler.RegisterAdminRoutes(r)
		auditHandler.RegisterAdminRoutes(r)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
