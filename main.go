package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"salarypredict/config"
	"salarypredict/db"
	shttp "salarypredict/http"
	"salarypredict/logging"
	"salarypredict/ml"
	"salarypredict/monitoring"
)

func main() {
	defaultConfig := os.Getenv("SALARY_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	configPath := flag.String("config", defaultConfig, "path to config.yaml")
	flag.Parse()

	// 1. Load config
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("exiting")
}

// loadConfig falls back to defaults when the file does not exist.
func loadConfig(path string) (config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize database
	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()
	logger.Info("database initialized", zap.String("path", cfg.Database.Path))

	// 3. Load the model
	var cache *ml.PredictionCache
	if cfg.Model.CacheSize > 0 {
		if cache, err = ml.NewPredictionCache(cfg.Model.CacheSize); err != nil {
			return fmt.Errorf("create prediction cache: %w", err)
		}
	}
	holder := ml.NewHolder(cfg.Model.ArtifactPath, cache, logger.Named("model"))

	metrics := monitoring.NewMetrics()
	metrics.TrackModel(holder.Ready)

	hub := monitoring.NewHub(logger.Named("ws"), cfg.HTTP.AllowedOrigins)
	metrics.TrackHub(hub)
	go hub.Run(ctx)

	holder.OnReload(func(info ml.ArtifactInfo, err error) {
		metrics.ObserveReload(err)
		if err == nil {
			hub.Publish(monitoring.MessageModelReloaded, info)
		}
	})

	if cfg.Model.Watch {
		go func() {
			if err := ml.WatchArtifact(ctx, holder, logger.Named("watcher")); err != nil {
				logger.Error("artifact watcher stopped", zap.Error(err))
			}
		}()
	}

	// 4. Start HTTP server
	handlers := shttp.NewHandlers(holder, store, hub, metrics, logger.Named("http"))
	server := shttp.NewServer(cfg.HTTP, shttp.Deps{
		Handlers: handlers,
		Hub:      hub,
		Metrics:  metrics,
		Logger:   logger.Named("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 5. Handle graceful shutdown
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	return server.Stop(context.Background())
}
