package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"marketsearch/internal/client/openai"
	"marketsearch/internal/config"
	"marketsearch/internal/db"
	"marketsearch/internal/logger"
	gormrepository "marketsearch/internal/repository/gorm"
	"marketsearch/internal/service"
)

// One-shot embedding backfill. Runs until every event has an embedding,
// then exits.
func main() {
	cfgPath := os.Getenv("MS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("MS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	openaiHTTP := &http.Client{Timeout: cfg.OpenAI.Timeout}
	embedClient := openai.NewClient(openaiHTTP, cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	store := gormrepository.New(dbConn.Gorm)

	svc := &service.EmbeddingBackfillService{
		Repo:     store,
		Embedder: embedClient,
		Logger:   logger,
		Config:   cfg.Backfill,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := svc.RunOnce(ctx)
	if err != nil {
		logger.Fatal("embedding backfill failed", zap.Error(err))
	}
	logger.Info("embedding backfill complete",
		zap.Int("events", result.Events),
		zap.Int("batches", result.Batches),
	)
}
