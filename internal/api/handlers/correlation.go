package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/fundamentals-ai-go/internal/database"
	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

// CorrelationReader is the read side of database.CorrelationRepository.
type CorrelationReader interface {
	Get(ctx context.Context, symbol string) (*models.CompanyCorrelation, error)
	List(ctx context.Context, limit int, order database.CorrelationOrder) ([]models.CompanyCorrelation, error)
}

// CorrelationHandler serves stored correlation results.
type CorrelationHandler struct {
	store  CorrelationReader
	logger *logging.StandardLogger
}

// NewCorrelationHandler creates a new correlation handler
func NewCorrelationHandler(store CorrelationReader, logger *logging.StandardLogger) *CorrelationHandler {
	return &CorrelationHandler{store: store, logger: logger}
}

// ListCorrelations returns stored rows ordered by ?order=
// @Param limit query int false "max rows" default(50)
// @Param order query string false "correlation_all, consecutive_ones or symbol"
// @Router /api/v1/correlations [get]
func (h *CorrelationHandler) ListCorrelations(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	order, err := database.ParseCorrelationOrder(c.Query("order"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	rows, err := h.store.List(c.Request.Context(), limit, order)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, gin.H{
		"correlations": rows,
		"count":        len(rows),
		"order":        order,
	})
}

// GetCorrelation returns the stored row of one company
// @Router /api/v1/correlations/{symbol} [get]
func (h *CorrelationHandler) GetCorrelation(c *gin.Context) {
	symbol, ok := symbolParam(c)
	if !ok {
		return
	}
	row, err := h.store.Get(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, row)
}
