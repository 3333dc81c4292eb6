package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/fundamentals-ai-go/internal/cache"
	"github.com/irfndi/fundamentals-ai-go/internal/logging"
)

// AnalysisCacheAdmin is implemented by cache.AnalysisCache.
type AnalysisCacheAdmin interface {
	GetStats() cache.AnalysisCacheStats
	Invalidate(ctx context.Context, symbol string) (int, error)
	Clear(ctx context.Context) (int, error)
}

// CacheHandler handles analysis cache monitoring and invalidation
type CacheHandler struct {
	cache  AnalysisCacheAdmin
	logger *logging.StandardLogger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(analysisCache AnalysisCacheAdmin, logger *logging.StandardLogger) *CacheHandler {
	return &CacheHandler{cache: analysisCache, logger: logger}
}

// GetCacheStats returns hit/miss statistics of the analysis cache
// @Router /api/v1/admin/cache/stats [get]
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	stats := h.cache.GetStats()
	respondOK(c, gin.H{
		"stats":    stats,
		"hit_rate": stats.HitRate(),
	})
}

// ClearCache drops every cached analysis result
// @Router /api/v1/admin/cache [delete]
func (h *CacheHandler) ClearCache(c *gin.Context) {
	removed, err := h.cache.Clear(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, gin.H{"removed": removed})
}

// InvalidateSymbol drops the cached results of one company
// @Router /api/v1/admin/cache/{symbol} [delete]
func (h *CacheHandler) InvalidateSymbol(c *gin.Context) {
	symbol, ok := symbolParam(c)
	if !ok {
		return
	}
	removed, err := h.cache.Invalidate(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, gin.H{"symbol": symbol, "removed": removed})
}
