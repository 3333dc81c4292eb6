package models

import (
	"time"

	"github.com/irfndi/fundamentals-ai-go/pkg/changecode"
)

// CompanyCorrelation is one row of the company_correlation table.
type CompanyCorrelation struct {
	Symbol    string                  `json:"symbol" db:"symbol"`
	Revenue   []changecode.ChangeCode `json:"revenue" db:"revenue"`
	MarketCap []changecode.ChangeCode `json:"market_cap" db:"market_cap"`
	ROIC      []changecode.ChangeCode `json:"roic" db:"roic"`
	changecode.Correlations
	ConsecutiveOnes int       `json:"consecutive_ones" db:"consecutive_ones"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// SeriesDistance is one row of the series_distance table.
type SeriesDistance struct {
	Reference string    `json:"reference" db:"reference"`
	Symbol    string    `json:"symbol" db:"symbol"`
	Distance  float64   `json:"distance" db:"distance"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MetricCodes is the change-code series of one metric.
type MetricCodes struct {
	Symbol string                  `json:"symbol"`
	Metric Metric                  `json:"metric"`
	Values []float64               `json:"values"`
	Codes  []changecode.ChangeCode `json:"codes"`
}

// ColorSeries pairs each quarter with its display color.
type ColorSeries struct {
	Symbol string             `json:"symbol"`
	Metric Metric             `json:"metric"`
	Title  string             `json:"title"`
	Values []float64          `json:"values"`
	Colors []changecode.Color `json:"colors"`
}

// TrendCategory groups a series by the sign of its mean quarterly change.
type TrendCategory string

const (
	TrendSteadyGrowth TrendCategory = "steady_growth"
	TrendCyclical     TrendCategory = "cyclical"
	TrendDeclining    TrendCategory = "declining"
)

// Label returns the cluster label shown in reports.
func (t TrendCategory) Label() string {
	switch t {
	case TrendSteadyGrowth:
		return "Cluster 1: Steady growth"
	case TrendDeclining:
		return "Cluster 3: Declining"
	default:
		return "Cluster 2: Cyclical patterns"
	}
}

// MetricSummary describes a single metric of a company.
type MetricSummary struct {
	Metric        Metric                  `json:"metric"`
	Title         string                  `json:"title"`
	Quarters      int                     `json:"quarters"`
	Missing       int                     `json:"missing"`
	Codes         []changecode.ChangeCode `json:"codes"`
	Trend         TrendCategory           `json:"trend"`
	TrendLabel    string                  `json:"trend_label"`
	LastValue     float64                 `json:"last_value"`
	SmoothedValue float64                 `json:"smoothed_value"`
	LongestRun    int                     `json:"longest_up_run"`
}

// CompanySummary is the full per-company analysis.
type CompanySummary struct {
	Symbol  string          `json:"symbol"`
	Sector  string          `json:"sector,omitempty"`
	Metrics []MetricSummary `json:"metrics"`
	changecode.Correlations
	ConsecutiveOnes int `json:"consecutive_ones"`
}

// ScreenResult is a company that passed the size and profitability screen.
type ScreenResult struct {
	Symbol       string  `json:"symbol"`
	Sector       string  `json:"sector,omitempty"`
	AvgMarketCap float64 `json:"avg_market_cap"`
	AvgROIC      float64 `json:"avg_roic"`
}

// CompanyOverview is one row of the bulk company listing.
type CompanyOverview struct {
	Symbol string                   `json:"symbol"`
	Sector string                   `json:"sector,omitempty"`
	Trends map[Metric]TrendCategory `json:"trends,omitempty"`
}

// JobReport summarizes one batch run.
type JobReport struct {
	Job        string    `json:"job"`
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Processed  int       `json:"processed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Alerts     int       `json:"alerts"`
	Errors     []string  `json:"errors,omitempty"`
}

// MaxReportErrors caps how many per-company errors a JobReport keeps.
const MaxReportErrors = 20

// AddError records a per-company failure.
func (r *JobReport) AddError(symbol string, err error) {
	r.Failed++
	if len(r.Errors) < MaxReportErrors {
		r.Errors = append(r.Errors, symbol+": "+err.Error())
	}
}

// Duration returns how long the run took.
func (r *JobReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// StreakAlert flags a company whose market-cap streak count reached the
// alert threshold.
type StreakAlert struct {
	Symbol          string  `json:"symbol"`
	ConsecutiveOnes int     `json:"consecutive_ones"`
	CorrelationAll  float64 `json:"correlation_all"`
}
