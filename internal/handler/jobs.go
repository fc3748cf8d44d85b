package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketsearch/internal/service"
)

// JobHandler exposes the batch jobs for manual runs. Both execute
// synchronously in the request and return their counters.
type JobHandler struct {
	Backfill *service.EmbeddingBackfillService
	Refresh  *service.PriceRefreshService
	Logger   *zap.Logger
}

func (h *JobHandler) Register(r *gin.Engine) {
	group := r.Group("/api/jobs")
	group.POST("/backfill-embeddings", h.runBackfill)
	group.POST("/refresh-prices", h.runRefresh)
}

func (h *JobHandler) runBackfill(c *gin.Context) {
	if h.Backfill == nil {
		Error(c, http.StatusInternalServerError, "backfill service unavailable", nil)
		return
	}
	result, err := h.Backfill.RunOnce(c.Request.Context())
	if err != nil {
		h.logWarn("backfill run failed", err)
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{
		"events":  result.Events,
		"batches": result.Batches,
	}, nil)
}

func (h *JobHandler) runRefresh(c *gin.Context) {
	if h.Refresh == nil {
		Error(c, http.StatusInternalServerError, "price refresh service unavailable", nil)
		return
	}
	result, err := h.Refresh.RunOnce(c.Request.Context())
	if err != nil {
		h.logWarn("price refresh run failed", err)
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{
		"markets_updated": result.MarketsUpdated,
		"rows_inserted":   result.RowsInserted,
		"markets_skipped": result.MarketsSkipped,
	}, nil)
}

func (h *JobHandler) logWarn(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(msg, zap.Error(err))
	}
}
