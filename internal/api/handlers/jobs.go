package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

const triggerAPI = "api"

// CorrelationRunner is implemented by services.CorrelationJob.
type CorrelationRunner interface {
	Run(ctx context.Context, trigger string) (*models.JobReport, error)
	LastReport() *models.JobReport
}

// SimilarityRunner is implemented by services.SimilarityService.
type SimilarityRunner interface {
	Run(ctx context.Context, reference, trigger string) (*models.JobReport, error)
}

// JobHandler lets operators trigger the batch jobs on demand.
type JobHandler struct {
	correlation CorrelationRunner
	similarity  SimilarityRunner
	logger      *logging.StandardLogger
}

// NewJobHandler creates a new job handler
func NewJobHandler(correlation CorrelationRunner, similarity SimilarityRunner, logger *logging.StandardLogger) *JobHandler {
	return &JobHandler{correlation: correlation, similarity: similarity, logger: logger}
}

// RunCorrelation recomputes correlations for every company and waits for
// the run to finish. A concurrent run yields 409.
// @Router /api/v1/admin/jobs/correlation [post]
func (h *JobHandler) RunCorrelation(c *gin.Context) {
	report, err := h.correlation.Run(c.Request.Context(), triggerAPI)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, report)
}

// GetCorrelationStatus returns the report of the last correlation run
// @Router /api/v1/admin/jobs/correlation [get]
func (h *JobHandler) GetCorrelationStatus(c *gin.Context) {
	report := h.correlation.LastReport()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Correlation job has not run yet",
		})
		return
	}
	respondOK(c, report)
}

// RunSimilarity recomputes DTW distances against ?reference=
// @Router /api/v1/admin/jobs/similarity [post]
func (h *JobHandler) RunSimilarity(c *gin.Context) {
	reference := c.Query("reference")
	if reference != "" {
		if err := validateSymbol(reference); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	report, err := h.similarity.Run(c.Request.Context(), reference, triggerAPI)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, report)
}
