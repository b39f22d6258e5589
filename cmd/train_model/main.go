package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"salarypredict/config"
	"salarypredict/db"
	"salarypredict/logging"
	"salarypredict/ml"
	"salarypredict/pipeline"
)

func main() {
	configPath := flag.String("config", "", "optional config.yaml supplying defaults")
	dataPath := flag.String("data", "", "training CSV path")
	artifactPath := flag.String("artifact", "", "model artifact output path")
	testRatio := flag.Float64("test_ratio", 0, "held-out fraction (default 0.2)")
	seed := flag.Int64("seed", 0, "split seed (default 42)")
	encoding := flag.String("encoding", "", "CSV character encoding, e.g. gbk or windows-1252 (default utf-8)")
	dbPath := flag.String("db", "", "optional SQLite database to append a training_log row to")
	logLevel := flag.String("log_level", "", "debug, info, warn or error")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["data"] {
		cfg.Training.DataPath = *dataPath
	}
	if set["artifact"] {
		cfg.Model.ArtifactPath = *artifactPath
	}
	if set["encoding"] {
		cfg.Training.Encoding = *encoding
	}
	if set["test_ratio"] {
		cfg.Training.TestRatio = *testRatio
	}
	if set["seed"] {
		cfg.Training.Seed = *seed
	}
	if set["log_level"] {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid options: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, *dbPath, logger); err != nil {
		logger.Fatal("training failed", zap.Error(err))
	}
}

func run(cfg config.Config, dbPath string, logger *zap.Logger) error {
	rows, err := pipeline.LoadSalaryCSV(cfg.Training.DataPath, cfg.Training.Encoding)
	if err != nil {
		return fmt.Errorf("load training data: %w", err)
	}

	cleaner := pipeline.NewDataCleaner(logger.Named("cleaning"))
	examples, issues := cleaner.Clean(rows)
	stats := cleaner.Stats()
	logger.Info("training data cleaned",
		zap.String("path", cfg.Training.DataPath),
		zap.Int("rows", stats.TotalProcessed),
		zap.Int("kept", stats.Passed),
		zap.Int("dropped", stats.Rejected),
		zap.Any("issues", stats.Issues),
	)

	artifact, err := ml.Train(examples, ml.TrainConfig{
		TestRatio: cfg.Training.TestRatio,
		Seed:      cfg.Training.Seed,
	})
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("version", artifact.Version),
		zap.Int("train_rows", artifact.TrainRows),
		zap.Int("test_rows", artifact.TestRows),
	}
	if m := artifact.Metrics; m != nil {
		fields = append(fields,
			zap.Float64("mae", m.MAE),
			zap.Float64("mse", m.MSE),
			zap.Float64("r2", m.R2),
		)
	}
	logger.Info("model trained", fields...)

	if err := ml.SaveArtifact(cfg.Model.ArtifactPath, artifact); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	logger.Info("model artifact saved", zap.String("path", cfg.Model.ArtifactPath))

	if dbPath == "" {
		return nil
	}
	store, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	return store.SaveTrainingLog(context.Background(), db.TrainingLog{
		ModelVersion: artifact.Version,
		Metrics:      artifact.Metrics,
		TrainRows:    artifact.TrainRows,
		TestRows:     artifact.TestRows,
		DroppedRows:  len(issues),
		TrainedAt:    artifact.CreatedAt,
	})
}
