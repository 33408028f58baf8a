// AngelaMos | 2026
// serve.go

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/callboard/internal/ad"
	"github.com/carterperez-dev/templates/callboard/internal/admin"
	"github.com/carterperez-dev/templates/callboard/internal/auth"
	"github.com/carterperez-dev/templates/callboard/internal/config"
	"github.com/carterperez-dev/templates/callboard/internal/core"
	"github.com/carterperez-dev/templates/callboard/internal/feedback"
	"github.com/carterperez-dev/templates/callboard/internal/health"
	"github.com/carterperez-dev/templates/callboard/internal/middleware"
	"github.com/carterperez-dev/templates/callboard/internal/server"
	"github.com/carterperez-dev/templates/callboard/internal/user"
)

const (
	drainDelay    = 5 * time.Second
	pruneInterval = time.Hour
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
				"exporting", tel.Exporting(),
			)
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

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close() //nolint:errcheck // startup failure
		return err
	}
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		_ = rdb.Close() //nolint:errcheck // startup failure
		_ = db.Close()  //nolint:errcheck // startup failure
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	paginator := core.Paginator{
		DefaultPageSize: cfg.Pagination.PageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
	}

	userSvc := user.NewService(user.NewRepository(db.DB), logger)
	blacklist := auth.NewRedisBlacklist(rdb)
	verifier := auth.NewVerifier(jwtManager, blacklist, userSvc)

	authSvc := auth.NewService(
		auth.NewRepository(db.DB),
		jwtManager,
		userSvc,
		blacklist,
		logger,
	)

	adSvc := ad.NewService(ad.NewRepository(db.DB), logger)
	feedbackSvc := feedback.NewService(feedback.NewRepository(db.DB), adSvc, logger)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: rdb},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB.DB, "callboard"),
	)
	metrics := middleware.NewHTTPMetrics(cfg.App.Name, registry)

	router := srv.Router()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		router.Use(metrics.Middleware)
	}
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	var authLimiter func(next http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(rdb.Client, middleware.RateLimitConfig{
			Limit:    middleware.PerMinute(cfg.RateLimit.Requests, cfg.RateLimit.Burst),
			Prefix:   rdb.Key("api") + ":",
			FailOpen: true,
			BypassFunc: middleware.SkipPaths("/healthz", "/livez", "/readyz"),
		}).Handler)

		authLimiter = middleware.NewRateLimiter(rdb.Client, middleware.RateLimitConfig{
			Limit:    middleware.PerMinute(10, 5),
			Prefix:   rdb.Key("auth") + ":",
			KeyFunc:  middleware.KeyByIPAndEndpoint,
			FailOpen: true,
		}).Handler
	}

	routes := server.Routes{
		Health:   healthHandler,
		Auth:     auth.NewHandler(authSvc),
		Users:    user.NewHandler(userSvc, paginator),
		Ads:      ad.NewHandler(adSvc, paginator),
		Feedback: feedback.NewHandler(feedbackSvc, paginator),
		Admin: admin.NewHandler(admin.HandlerConfig{
			DBStats:    db.Stats,
			RedisStats: rdb.PoolStats,
			DBPing:     db.Ping,
			RedisPing:  rdb.Ping,
			Content:    admin.NewRepository(db.DB),
		}),
		Verifier:    verifier,
		AuthLimiter: authLimiter,
		JWKS:        jwtManager.GetJWKSHandler(),
	}
	if cfg.Metrics.Enabled {
		routes.Metrics = metrics.Handler()
		routes.MetricsPath = cfg.Metrics.Path
	}
	server.Mount(router, routes)

	go pruneSessions(ctx, authSvc, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	var serveErr error
	select {
	case serveErr = <-errChan:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if serveErr == nil {
		if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return serveErr
}

type sessionPruner interface {
	PruneExpiredSessions(ctx context.Context) (int64, error)
}

func pruneSessions(ctx context.Context, p sessionPruner, logger *slog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PruneExpiredSessions(ctx)
			if err != nil {
				logger.Warn("session prune failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions pruned", "count", n)
			}
		}
	}
}
