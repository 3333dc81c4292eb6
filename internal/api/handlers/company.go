package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
	"github.com/irfndi/fundamentals-ai-go/internal/utils"
)

// AnalysisProvider is the read side of services.AnalysisService.
type AnalysisProvider interface {
	ListSymbols(ctx context.Context) ([]string, error)
	Company(ctx context.Context, symbol string) (*models.Company, error)
	Codes(ctx context.Context, symbol string, metric models.Metric) (*models.MetricCodes, error)
	Colors(ctx context.Context, symbol string, metric models.Metric) (*models.ColorSeries, error)
	Summary(ctx context.Context, symbol string) (*models.CompanySummary, error)
	Screen(ctx context.Context) ([]models.ScreenResult, error)
	Overview(ctx context.Context) ([]models.CompanyOverview, error)
}

// CompanyHandler serves per-company analysis.
type CompanyHandler struct {
	analysis AnalysisProvider
	logger   *logging.StandardLogger
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(analysis AnalysisProvider, logger *logging.StandardLogger) *CompanyHandler {
	return &CompanyHandler{analysis: analysis, logger: logger}
}

// ListCompanies returns every known symbol, or with ?with=categories every
// company with its sector and per-metric trend category
// @Param with query string false "categories"
// @Router /api/v1/companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	switch c.Query("with") {
	case "":
	case "categories":
		overview, err := h.analysis.Overview(c.Request.Context())
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		respondOK(c, gin.H{
			"companies": overview,
			"count":     len(overview),
		})
		return
	default:
		respondError(c, h.logger, utils.NewFieldError("with", "must be categories"))
		return
	}

	symbols, err := h.analysis.ListSymbols(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, gin.H{
		"symbols": symbols,
		"count":   len(symbols),
	})
}

// GetCompany returns the raw quarterly series; missing quarters are null
// @Router /api/v1/companies/{symbol} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	symbol, ok := symbolParam(c)
	if !ok {
		return
	}
	company, err := h.analysis.Company(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, company)
}

// GetCodes returns the change codes of one metric
// @Param metric query string false "revenue, market_cap or roic" default(market_cap)
// @Router /api/v1/companies/{symbol}/codes [get]
func (h *CompanyHandler) GetCodes(c *gin.Context) {
	symbol, ok := symbolParam(c)
	if !ok {
		return
	}
	metric, err := models.ParseMetric(c.DefaultQuery("metric", string(models.MetricMarketCap)))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	codes, err := h.analysis.Codes(c.Request.Context(), symbol, metric)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, codes)
}

// GetColors returns the display colors of one metric
// @Router /api/v1/companies/{symbol}/colors [get]
func (h *CompanyHandler) GetColors(c *gin.Context) {
	symbol, ok := symbolParam(c)
	if !ok {
		return
	}
	metric, err := models.ParseMetric(c.DefaultQuery("metric", string(models.MetricMarketCap)))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	colors, err := h.analysis.Colors(c.Request.Context(), symbol, metric)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, colors)
}

// GetSummary returns codes, trends and correlation scores for all metrics
// @Router /api/v1/companies/{symbol}/summary [get]
func (h *CompanyHandler) GetSummary(c *gin.Context) {
	symbol, ok := symbolParam(c)
	if !ok {
		return
	}
	summary, err := h.analysis.Summary(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, summary)
}

// Screen returns the companies passing the market cap and ROIC screen
// @Router /api/v1/companies/screen [get]
func (h *CompanyHandler) Screen(c *gin.Context) {
	results, err := h.analysis.Screen(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, gin.H{
		"companies": results,
		"count":     len(results),
	})
}
