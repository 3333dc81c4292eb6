package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/irfndi/fundamentals-ai-go/internal/utils"
)

// Metric names a quarterly financial series stored per company.
type Metric string

const (
	MetricRevenue   Metric = "revenue"
	MetricMarketCap Metric = "market_cap"
	MetricROIC      Metric = "roic"
)

// Metrics lists every supported metric in the order used for correlations.
var Metrics = []Metric{MetricRevenue, MetricMarketCap, MetricROIC}

var titleCaser = cases.Title(language.English)

// ParseMetric validates a metric name coming from a request.
func ParseMetric(s string) (Metric, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, m := range Metrics {
		if string(m) == normalized {
			return m, nil
		}
	}
	return "", utils.NewFieldError("metric", fmt.Sprintf("unknown metric %q, want one of revenue, market_cap, roic", s))
}

// Title returns a display label such as "Market Cap".
func (m Metric) Title() string {
	if m == MetricROIC {
		return "ROIC"
	}
	return titleCaser.String(strings.ReplaceAll(string(m), "_", " "))
}

// QuarterlySeries is a metric history as stored in the company document.
// Quarters the source did not report are JSON nulls.
type QuarterlySeries []*float64

// NewQuarterlySeries builds a fully populated series.
func NewQuarterlySeries(values ...float64) QuarterlySeries {
	series := make(QuarterlySeries, len(values))
	for i := range values {
		v := values[i]
		series[i] = &v
	}
	return series
}

// Values returns the series with missing quarters imputed as zero.
func (s QuarterlySeries) Values() []float64 {
	values := make([]float64, len(s))
	for i, v := range s {
		if v != nil {
			values[i] = *v
		}
	}
	return values
}

// Missing counts quarters with no reported value.
func (s QuarterlySeries) Missing() int {
	n := 0
	for _, v := range s {
		if v == nil {
			n++
		}
	}
	return n
}

// Company is one row of the company document table, reduced to the fields
// the analysis needs.
type Company struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Sector    string          `json:"sector,omitempty" db:"sector"`
	Revenue   QuarterlySeries `json:"revenue" db:"revenue"`
	MarketCap QuarterlySeries `json:"market_cap" db:"market_cap"`
	ROIC      QuarterlySeries `json:"roic" db:"roic"`

	// DecodeErr is set when a stored series could not be parsed.
	DecodeErr error `json:"-" db:"-"`
}

// Series returns the series for m.
func (c *Company) Series(m Metric) QuarterlySeries {
	switch m {
	case MetricRevenue:
		return c.Revenue
	case MetricMarketCap:
		return c.MarketCap
	case MetricROIC:
		return c.ROIC
	default:
		return nil
	}
}
