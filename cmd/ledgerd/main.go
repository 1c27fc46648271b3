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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rewardledger/internal/config"
	"rewardledger/internal/deadletter"
	"rewardledger/internal/ingest"
	"rewardledger/internal/metrics"
	"rewardledger/internal/server"
	"rewardledger/internal/storage"
	"rewardledger/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "ledgerd",
		Short:        "Reward-event ledger pipeline",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook receiver and query API",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN (empty uses an in-memory store)")
	serveCmd.Flags().String("webhook-secret", "", "shared secret for the webhook source")
	serveCmd.Flags().Int("workers", 8, "transactions processed in parallel per batch")
	serveCmd.Flags().Int("rate-limit", 300, "webhook requests per IP per minute (0 disables)")
	serveCmd.Flags().Int("max-retries", 3, "maximum store write retry attempts")
	serveCmd.Flags().Duration("retry-backoff", 200*time.Millisecond, "initial store retry backoff")
	serveCmd.Flags().String("dead-letter", "", "JSONL path for undecodable events (empty disables)")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the ledger schema",
		RunE:  runMigrate,
	}

	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.WebhookSecret == "" {
		return fmt.Errorf("webhook secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.Store
	if cfg.DatabaseDSN != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("connect store: %w", err)
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		logger.Warn("no pg-dsn configured, using in-memory store")
		store = storage.NewMemoryStore()
	}

	var dead ingest.DeadLetterSink
	if cfg.DeadLetterPath != "" {
		dead = deadletter.NewWriter(cfg.DeadLetterPath)
	}

	registry := prometheus.NewRegistry()
	ingestMetrics := metrics.NewIngest(registry)

	controller := ingest.NewController(ingest.ControllerConfig{
		Workers:      cfg.Workers,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, store, dead, ingestMetrics, logger)

	srv := server.New(server.Config{
		WebhookSecret: cfg.WebhookSecret,
		RateLimit:     cfg.RateLimit,
	}, controller, store, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), logger)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server start",
		zap.String("listen", cfg.ListenAddr),
		zap.Int("workers", cfg.Workers),
		zap.Int("rate_limit", cfg.RateLimit),
		zap.Bool("dead_letter_enabled", cfg.DeadLetterPath != ""),
		zap.Bool("postgres", cfg.DatabaseDSN != ""),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("pg-dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("schema applied")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
