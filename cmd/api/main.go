package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stayfinder/internal/api"
	"stayfinder/internal/config"
	"stayfinder/internal/database"
	"stayfinder/internal/domain"
	"stayfinder/internal/events"
	"stayfinder/internal/logging"
	"stayfinder/internal/metrics"
	"stayfinder/internal/repository"
	"stayfinder/internal/seed"
	"stayfinder/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, base, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.Component(base, "api-main")

	db, err := database.NewDB(cfg.Database.Path, logging.Component(base, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if err := seedDatabase(cfg, db, logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventBus := events.NewEventBus()
	eventBus.SubscribeAll(events.LogHandler(logging.Component(base, "events")))

	services := api.Services{
		Auth:     service.NewAuthService(db, attemptStore(redisClient, logging.Component(base, "attempts")), eventBus, cfg.Auth, logging.Component(base, "auth")),
		Listings: service.NewListingService(db, eventBus, cfg.Catalog, logging.Component(base, "listings")),
		Bookings: service.NewBookingService(db, eventBus, cfg.Booking, logging.Component(base, "bookings")),
	}

	checks := []api.ReadinessCheck{{Name: "database", Check: db.Ready}}
	if redisClient != nil {
		checks = append(checks, api.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return repository.Ping(ctx, redisClient) },
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, logger)
	startBackups(ctx, cfg, db, base)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.API, services, base)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}
	httpServer := api.NewHTTPServer(cfg.API, services, base, checks...)

	return startServers(ctx, grpcServer, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, baseLogger, closer, nil
}

func seedDatabase(cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	if cfg.Seed.Path == "" {
		return nil
	}

	file, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("seed_path", cfg.Seed.Path).Msg("seed file not found, skipping")
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := seed.Apply(ctx, db, file, cfg.Auth.BcryptCost, logger); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repository.PingWithRetry(ctx, redisClient, repository.DefaultRetryPolicy); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// attemptStore prefers Redis for login throttling and falls back to process memory.
func attemptStore(client *redis.Client, logger *zerolog.Logger) domain.AttemptStore {
	memory := repository.NewMemoryAttemptStore()
	if client == nil {
		return memory
	}
	return repository.NewFailoverAttemptStore(repository.NewRedisAttemptStore(client), memory, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startBackups(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled {
		return
	}
	backups := database.NewBackupService(db, cfg.Database.Path, cfg.Backup, logging.Component(logger, "backup"))
	go func() {
		if err := backups.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("backup scheduler stopped")
		}
	}()
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	event := logger.Info().Int("http_port", cfg.API.HTTP.Port)
	if grpcServer != nil {
		event = event.Str("grpc_addr", grpcServer.Addr())
	}
	event.Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
