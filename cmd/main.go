package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/chess-pairings/config"
	"github.com/Dosada05/chess-pairings/db"
	"github.com/Dosada05/chess-pairings/handlers"
	"github.com/Dosada05/chess-pairings/live"
	"github.com/Dosada05/chess-pairings/metrics"
	"github.com/Dosada05/chess-pairings/pairing"
	"github.com/Dosada05/chess-pairings/repositories"
	"github.com/Dosada05/chess-pairings/routes"
	"github.com/Dosada05/chess-pairings/services"
	"github.com/Dosada05/chess-pairings/storage"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()

	if err := db.Migrate(ctx, dbConn); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("database ready")

	// Выгрузка таблиц в R2 необязательна
	var uploader storage.FileUploader
	if cfg.R2.Complete() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, cfg.R2)
		if err != nil {
			return fmt.Errorf("init Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Warn("R2 is not configured, standings export disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run(ctx)

	registry := prometheus.NewRegistry()
	metricsService := metrics.NewService(registry)

	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	transactor := repositories.NewTransactor(dbConn, logger)

	pairer := pairing.NewPairer(pairing.NewScorer(pairing.DefaultWeights()), logger)

	schedulerService := services.NewSchedulerService(
		roundRepo,
		standingRepo,
		pairer,
		hub,
		metricsService,
		logger,
		cfg.MaxRounds,
	)
	resultService := services.NewResultService(
		transactor,
		roundRepo,
		standingRepo,
		uploader,
		hub,
		metricsService,
		logger,
	)

	router := routes.SetupRoutes(routes.Deps{
		Matchups:       handlers.NewMatchupHandler(schedulerService, logger, cfg.IsDevelopment()),
		Results:        handlers.NewResultHandler(resultService, logger, cfg.IsDevelopment()),
		WebSocket:      handlers.NewWebSocketHandler(hub, logger),
		MetricsHandler: metrics.NewMetricsHandler(registry),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}
