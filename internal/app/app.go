package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eventra/eventra/internal/config"
	"github.com/eventra/eventra/internal/postgres"
	redisx "github.com/eventra/eventra/internal/redis"
	postgresrepo "github.com/eventra/eventra/internal/repository/postgres"
	redisrepo "github.com/eventra/eventra/internal/repository/redis"
	"github.com/eventra/eventra/internal/service"
	httpgin "github.com/eventra/eventra/internal/transport/http/gin"
	"github.com/eventra/eventra/migrations"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	services   *service.Services
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if err := migrations.Apply(context.Background(), pgxPool); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisx.NewEventsPubSub(rdb)
	sessions := redisrepo.NewSessionStore(rdb, cfg.Auth.SessionTTL)
	loginLimiter := redisrepo.NewSlidingWindowLimiter(rdb, redisx.KeyRateLimit("login"), 10, 1*time.Minute)

	// Initialize services
	services := service.NewServices(store, cache, pubsub, sessions, logger, service.Config{})

	// Initialize Gin router
	router := httpgin.NewRouter(services, logger, httpgin.Options{
		UploadDir:    cfg.Uploads.Dir,
		CORSOrigin:   cfg.Server.CORSOrigin,
		LoginLimiter: loginLimiter,
	})

	return &App{
		cfg:      cfg,
		logger:   logger,
		services: services,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Retention sweeper: one run at startup, then on a fixed period until
	// shutdown cancels it.
	g.Go(func() error {
		a.logger.Info("retention sweeper started", "interval", a.cfg.Cleanup.Interval)
		return a.services.Cleanup.Run(gCtx, a.cfg.Cleanup.Interval)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
