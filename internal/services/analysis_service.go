package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/irfndi/fundamentals-ai-go/internal/cache"
	"github.com/irfndi/fundamentals-ai-go/internal/config"
	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
	"github.com/irfndi/fundamentals-ai-go/pkg/changecode"
)

// smoothingQuarters is the SMA period behind MetricSummary.SmoothedValue.
const smoothingQuarters = 4

// CompanyReader defines the company lookups the analysis needs.
type CompanyReader interface {
	ListSymbols(ctx context.Context) ([]string, error)
	GetCompany(ctx context.Context, symbol string) (*models.Company, error)
	GetMetric(ctx context.Context, symbol string, metric models.Metric) (models.QuarterlySeries, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
}

// AnalysisService derives change codes, colors and summaries for companies.
type AnalysisService struct {
	companies  CompanyReader
	cache      *cache.AnalysisCache
	classifier changecode.Classifier
	cfg        config.AnalysisConfig
	logger     *logging.StandardLogger
}

// NewAnalysisService creates a new analysis service. analysisCache may be nil.
func NewAnalysisService(companies CompanyReader, analysisCache *cache.AnalysisCache, cfg config.AnalysisConfig, logger *logging.StandardLogger) *AnalysisService {
	return &AnalysisService{
		companies:  companies,
		cache:      analysisCache,
		classifier: changecode.NewClassifier(cfg.SellThreshold),
		cfg:        cfg,
		logger:     logger,
	}
}

// ListSymbols returns every known company symbol.
func (s *AnalysisService) ListSymbols(ctx context.Context) ([]string, error) {
	return s.companies.ListSymbols(ctx)
}

// Company returns the raw quarterly series of a company.
func (s *AnalysisService) Company(ctx context.Context, symbol string) (*models.Company, error) {
	return s.companies.GetCompany(ctx, symbol)
}

// Codes classifies one metric of a company.
func (s *AnalysisService) Codes(ctx context.Context, symbol string, metric models.Metric) (*models.MetricCodes, error) {
	kind := cache.CodesKind(metric)
	var cached models.MetricCodes
	if s.cache.Get(ctx, kind, symbol, &cached) {
		return &cached, nil
	}

	series, err := s.companies.GetMetric(ctx, symbol, metric)
	if err != nil {
		return nil, err
	}

	values := series.Values()
	result := &models.MetricCodes{
		Symbol: symbol,
		Metric: metric,
		Values: values,
		Codes:  s.classifier.Classify(values),
	}
	s.store(ctx, kind, symbol, result)
	return result, nil
}

// Colors derives the display colors of one metric of a company.
func (s *AnalysisService) Colors(ctx context.Context, symbol string, metric models.Metric) (*models.ColorSeries, error) {
	kind := cache.ColorsKind(metric)
	var cached models.ColorSeries
	if s.cache.Get(ctx, kind, symbol, &cached) {
		return &cached, nil
	}

	series, err := s.companies.GetMetric(ctx, symbol, metric)
	if err != nil {
		return nil, err
	}

	values := series.Values()
	result := &models.ColorSeries{
		Symbol: symbol,
		Metric: metric,
		Title:  metric.Title(),
		Values: values,
		Colors: s.classifier.Colors(values),
	}
	s.store(ctx, kind, symbol, result)
	return result, nil
}

// Summary returns codes, trends and correlation scores for every metric.
func (s *AnalysisService) Summary(ctx context.Context, symbol string) (*models.CompanySummary, error) {
	var cached models.CompanySummary
	if s.cache.Get(ctx, cache.KindSummary, symbol, &cached) {
		return &cached, nil
	}

	company, err := s.companies.GetCompany(ctx, symbol)
	if err != nil {
		return nil, err
	}

	correlation, err := s.CorrelationFor(company)
	if err != nil {
		return nil, err
	}

	summary := &models.CompanySummary{
		Symbol:          company.Symbol,
		Sector:          company.Sector,
		Correlations:    correlation.Correlations,
		ConsecutiveOnes: correlation.ConsecutiveOnes,
	}
	for _, metric := range models.Metrics {
		series := company.Series(metric)
		values := series.Values()
		codes := s.classifier.Classify(values)
		trend := categorizeTrend(values)

		var last float64
		if len(values) > 0 {
			last = values[len(values)-1]
		}

		summary.Metrics = append(summary.Metrics, models.MetricSummary{
			Metric:        metric,
			Title:         metric.Title(),
			Quarters:      len(values),
			Missing:       series.Missing(),
			Codes:         codes,
			Trend:         trend,
			TrendLabel:    trend.Label(),
			LastValue:     last,
			SmoothedValue: smoothedLast(values, smoothingQuarters),
			LongestRun:    changecode.LongestStreak(codes),
		})
	}

	s.store(ctx, cache.KindSummary, symbol, summary)
	return summary, nil
}

// CorrelationFor classifies the three metrics of company and scores their
// co-movement. Series of different lengths yield an error wrapping
// changecode.ErrInvalidArgument.
func (s *AnalysisService) CorrelationFor(company *models.Company) (*models.CompanyCorrelation, error) {
	revenue := s.classifier.Classify(company.Revenue.Values())
	marketCap := s.classifier.Classify(company.MarketCap.Values())
	roic := s.classifier.Classify(company.ROIC.Values())

	correlations, err := changecode.CorrelateMetrics(revenue, marketCap, roic)
	if err != nil {
		return nil, fmt.Errorf("company %s: %w", company.Symbol, err)
	}

	return &models.CompanyCorrelation{
		Symbol:          company.Symbol,
		Revenue:         revenue,
		MarketCap:       marketCap,
		ROIC:            roic,
		Correlations:    correlations,
		ConsecutiveOnes: changecode.CountStreaksLongerThan(marketCap, s.cfg.StreakMinRun),
	}, nil
}

// Screen returns the companies whose average market cap and ROIC over the
// last ScreenWindow quarters exceed the configured minimums, largest first.
func (s *AnalysisService) Screen(ctx context.Context) ([]models.ScreenResult, error) {
	var cached []models.ScreenResult
	if s.cache.Get(ctx, "screen", "all", &cached) {
		return cached, nil
	}

	companies, err := s.companies.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.ScreenResult, 0)
	for i := range companies {
		c := &companies[i]
		if c.DecodeErr != nil || len(c.MarketCap) == 0 || len(c.ROIC) == 0 {
			continue
		}
		avgCap := meanOfLast(c.MarketCap.Values(), s.cfg.ScreenWindow)
		avgROIC := meanOfLast(c.ROIC.Values(), s.cfg.ScreenWindow)
		if avgCap > s.cfg.MinMarketCap && avgROIC > s.cfg.MinROIC {
			results = append(results, models.ScreenResult{
				Symbol:       c.Symbol,
				Sector:       c.Sector,
				AvgMarketCap: avgCap,
				AvgROIC:      avgROIC,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].AvgMarketCap != results[j].AvgMarketCap {
			return results[i].AvgMarketCap > results[j].AvgMarketCap
		}
		return results[i].Symbol < results[j].Symbol
	})

	s.store(ctx, "screen", "all", results)
	return results, nil
}

// Overview lists every company with its sector and the trend category of
// each metric. Companies whose series cannot be decoded are listed without
// trends.
func (s *AnalysisService) Overview(ctx context.Context) ([]models.CompanyOverview, error) {
	var cached []models.CompanyOverview
	if s.cache.Get(ctx, "overview", "all", &cached) {
		return cached, nil
	}

	companies, err := s.companies.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	overview := make([]models.CompanyOverview, 0, len(companies))
	for i := range companies {
		c := &companies[i]
		row := models.CompanyOverview{Symbol: c.Symbol, Sector: c.Sector}
		if c.DecodeErr == nil {
			row.Trends = make(map[models.Metric]models.TrendCategory, len(models.Metrics))
			for _, metric := range models.Metrics {
				row.Trends[metric] = categorizeTrend(c.Series(metric).Values())
			}
		}
		overview = append(overview, row)
	}

	s.store(ctx, "overview", "all", overview)
	return overview, nil
}

func (s *AnalysisService) store(ctx context.Context, kind, symbol string, value interface{}) {
	if err := s.cache.Set(ctx, kind, symbol, value); err != nil && s.logger != nil {
		s.logger.WithComponent("analysis_service").Warn("Failed to cache analysis result",
			"kind", kind,
			"symbol", symbol,
			"error", err.Error(),
		)
	}
}
