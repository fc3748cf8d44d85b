package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketsearch/internal/client/kalshi"
	"marketsearch/internal/client/openai"
	"marketsearch/internal/config"
	cronrunner "marketsearch/internal/cron"
	"marketsearch/internal/db"
	"marketsearch/internal/handler"
	"marketsearch/internal/logger"
	gormrepository "marketsearch/internal/repository/gorm"
	"marketsearch/internal/search"
	"marketsearch/internal/service"
)

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

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	openaiHTTP := &http.Client{Timeout: cfg.OpenAI.Timeout}
	embedClient := openai.NewClient(openaiHTTP, cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	kalshiHTTP := &http.Client{Timeout: cfg.Kalshi.Timeout}
	kalshiClient := kalshi.NewClient(kalshiHTTP)

	var provider search.Provider
	switch strings.ToLower(strings.TrimSpace(cfg.Search.Provider)) {
	case "markets":
		provider = &search.MarketSearch{Repo: store}
	default:
		provider = &search.EventSearch{Repo: store}
	}
	logger.Info("search provider selected", zap.String("provider", cfg.Search.Provider))

	backfillSvc := &service.EmbeddingBackfillService{
		Repo:     store,
		Embedder: embedClient,
		Logger:   logger,
		Config:   cfg.Backfill,
	}
	refreshSvc := &service.PriceRefreshService{
		Repo:   store,
		Kalshi: kalshiClient,
		Logger: logger,
		Config: cfg.PriceRefresh,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(requestIDMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	searchHandler := &handler.SearchHandler{
		Embedder: embedClient,
		Provider: provider,
		Logger:   logger,
	}
	searchHandler.Register(engine)
	catalogHandler := &handler.CatalogHandler{Repo: store}
	catalogHandler.Register(engine)
	jobHandler := &handler.JobHandler{
		Backfill: backfillSvc,
		Refresh:  refreshSvc,
		Logger:   logger,
	}
	jobHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		_, err = cronRunner.Add("embedding-backfill", cfg.Cron.Backfill, func(ctx context.Context) error {
			result, err := backfillSvc.RunOnce(ctx)
			if err != nil {
				return err
			}
			logger.Info("cron embedding backfill ok",
				zap.Int("events", result.Events),
				zap.Int("batches", result.Batches),
			)
			return nil
		})
		if err != nil {
			logger.Warn("cron register embedding backfill failed", zap.Error(err))
		}
		_, err = cronRunner.Add("price-refresh", cfg.Cron.PriceRefresh, func(ctx context.Context) error {
			result, err := refreshSvc.RunOnce(ctx)
			if err != nil {
				return err
			}
			logger.Info("cron price refresh ok",
				zap.Int("markets_updated", result.MarketsUpdated),
				zap.Int("rows_inserted", result.RowsInserted),
				zap.Int("markets_skipped", result.MarketsSkipped),
			)
			return nil
		})
		if err != nil {
			logger.Warn("cron register price refresh failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}
