package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"marketsearch/internal/client/kalshi"
	"marketsearch/internal/config"
	"marketsearch/internal/db"
	"marketsearch/internal/logger"
	gormrepository "marketsearch/internal/repository/gorm"
	"marketsearch/internal/service"
)

// One-shot price refresh. Snapshots every active market and appends a
// price-history row per outcome, then exits.
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

	kalshiHTTP := &http.Client{Timeout: cfg.Kalshi.Timeout}
	kalshiClient := kalshi.NewClient(kalshiHTTP)
	store := gormrepository.New(dbConn.Gorm)

	svc := &service.PriceRefreshService{
		Repo:   store,
		Kalshi: kalshiClient,
		Logger: logger,
		Config: cfg.PriceRefresh,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := svc.RunOnce(ctx)
	if err != nil {
		logger.Fatal("price refresh failed", zap.Error(err))
	}
	logger.Info("price refresh complete",
		zap.Int("markets_updated", result.MarketsUpdated),
		zap.Int("rows_inserted", result.RowsInserted),
		zap.Int("markets_skipped", result.MarketsSkipped),
	)
}
