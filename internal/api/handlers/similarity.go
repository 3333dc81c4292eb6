package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

// SimilarityProvider is the read side of services.SimilarityService.
type SimilarityProvider interface {
	Reference() string
	Nearest(ctx context.Context, reference string, limit int) ([]models.SeriesDistance, error)
}

// SimilarityHandler serves DTW distances to a reference company.
type SimilarityHandler struct {
	similarity SimilarityProvider
	logger     *logging.StandardLogger
}

// NewSimilarityHandler creates a new similarity handler
func NewSimilarityHandler(similarity SimilarityProvider, logger *logging.StandardLogger) *SimilarityHandler {
	return &SimilarityHandler{similarity: similarity, logger: logger}
}

// GetNearest returns the companies closest to ?reference=, closest first
// @Router /api/v1/similarity [get]
func (h *SimilarityHandler) GetNearest(c *gin.Context) {
	reference := c.DefaultQuery("reference", h.similarity.Reference())
	if err := validateSymbol(reference); err != nil {
		respondError(c, h.logger, err)
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	rows, err := h.similarity.Nearest(c.Request.Context(), reference, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, gin.H{
		"reference": reference,
		"companies": rows,
		"count":     len(rows),
	})
}
