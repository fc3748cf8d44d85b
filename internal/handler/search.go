package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketsearch/internal/search"
)

type SearchHandler struct {
	Embedder search.Embedder
	Provider search.Provider
	Logger   *zap.Logger
}

type searchRequest struct {
	Query           string   `json:"query"`
	Limit           *int     `json:"limit"`
	MinSimilarity   *float64 `json:"min_similarity"`
	MarketsPerEvent *int     `json:"markets_per_event"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Results []any  `json:"results"`
}

func (h *SearchHandler) Register(r *gin.Engine) {
	r.POST("/search", h.search)
}

func (h *SearchHandler) search(c *gin.Context) {
	if h.Embedder == nil || h.Provider == nil {
		Detail(c, http.StatusInternalServerError, "search service unavailable")
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		Detail(c, http.StatusBadRequest, search.ErrEmptyQuery.Error())
		return
	}

	embedding, err := h.Embedder.Embed(c.Request.Context(), req.Query)
	if err != nil {
		h.logWarn("query embedding failed", err)
		Detail(c, http.StatusInternalServerError, "failed to embed query: "+err.Error())
		return
	}

	defaults := h.Provider.Defaults()
	params := search.Request{
		Embedding:       embedding,
		Limit:           defaults.Limit,
		MinSimilarity:   defaults.MinSimilarity,
		MarketsPerEvent: defaults.MarketsPerEvent,
	}
	if req.Limit != nil && *req.Limit > 0 {
		params.Limit = *req.Limit
	}
	if req.MinSimilarity != nil {
		params.MinSimilarity = *req.MinSimilarity
	}
	if req.MarketsPerEvent != nil && *req.MarketsPerEvent > 0 {
		params.MarketsPerEvent = *req.MarketsPerEvent
	}

	results, err := h.Provider.Search(c.Request.Context(), params)
	if err != nil {
		h.logWarn("similarity search failed", err)
		if search.IsBackendMissing(err) {
			Detail(c, http.StatusInternalServerError, "search backend unavailable: similarity search function is not installed")
			return
		}
		Detail(c, http.StatusInternalServerError, "database query failed: "+err.Error())
		return
	}
	if results == nil {
		results = []any{}
	}

	c.JSON(http.StatusOK, searchResponse{
		Query:   req.Query,
		Results: results,
	})
}

func (h *SearchHandler) logWarn(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(msg, zap.Error(err))
	}
}
