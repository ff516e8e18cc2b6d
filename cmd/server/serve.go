package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesdash/server/internal/api"
	"salesdash/server/internal/auth"
	"salesdash/server/internal/copywriter"
	"salesdash/server/internal/dashboard"
	"salesdash/server/internal/database"
	"salesdash/server/internal/geocoding"
	"salesdash/server/internal/processor"
	"salesdash/server/internal/queue"
	"salesdash/server/internal/scheduler"
	"salesdash/server/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	store, err := database.NewDatabase(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	metrics := telemetry.NewProvider()
	geocoder := geocoding.NewTable(logger)
	svc := dashboard.NewService(cfg, store, geocoder, logger, dashboard.WithMetrics(metrics))

	historyQueue := queue.NewHistoryQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(store, historyQueue, cfg, logger,
		processor.WithRecorder(metrics),
		processor.WithInvalidator(svc),
	)
	batchProcessor.Start()
	historyQueue.Start()

	var warmer *scheduler.Scheduler
	if cfg.Cache.WarmSchedule != "" {
		warmer, err = scheduler.NewScheduler(svc, cfg.Cache.WarmSchedule, logger)
		if err != nil {
			return err
		}
		if err := warmer.Start(); err != nil {
			return err
		}
	}

	// Copy generation is optional, the dashboard works without it
	var generator copywriter.Generator
	if cfg.AI.GeminiAPIKey != "" {
		g, err := copywriter.NewGeminiGenerator(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize copy generator: %w", err)
		}
		generator = g
	} else {
		logger.Warn("GEMINI_API_KEY is not set, copy generation is disabled")
	}

	jwt := auth.NewJWTManager(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	handler := api.NewHandler(svc, generator, historyQueue, metrics, logger)
	router := api.NewRouter(cfg, handler, jwt, logger, api.Options{
		Observer:       metrics,
		MetricsHandler: metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-sigCtx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	if warmer != nil {
		warmer.Stop()
	}
	// Close drains accepted history before the processor goes away
	if err := historyQueue.Close(); err != nil {
		logger.WithError(err).Error("Failed to close history queue")
	}
	batchProcessor.Stop()

	logger.Info("Server stopped")
	return nil
}
