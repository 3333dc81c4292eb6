package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/fundamentals-ai-go/internal/utils"
	"github.com/irfndi/fundamentals-ai-go/pkg/changecode"
)

func TestParseMetric(t *testing.T) {
	tests := []struct {
		input   string
		want    Metric
		wantErr bool
	}{
		{"revenue", MetricRevenue, false},
		{" Market-Cap ", MetricMarketCap, false},
		{"ROIC", MetricROIC, false},
		{"ebitda", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMetric(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, utils.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetric_Title(t *testing.T) {
	assert.Equal(t, "Revenue", MetricRevenue.Title())
	assert.Equal(t, "Market Cap", MetricMarketCap.Title())
	assert.Equal(t, "ROIC", MetricROIC.Title())
}

func TestQuarterlySeries_JSONWithNulls(t *testing.T) {
	var series QuarterlySeries
	require.NoError(t, json.Unmarshal([]byte(`[100, null, 93.5]`), &series))

	assert.Equal(t, []float64{100, 0, 93.5}, series.Values())
	assert.Equal(t, 1, series.Missing())
	assert.Empty(t, QuarterlySeries(nil).Values())
}

func TestCompany_Series(t *testing.T) {
	c := Company{
		Symbol:    "NYSE:IBM",
		Revenue:   NewQuarterlySeries(1, 2),
		MarketCap: NewQuarterlySeries(3),
		ROIC:      NewQuarterlySeries(4, 5, 6),
	}

	assert.Equal(t, []float64{1, 2}, c.Series(MetricRevenue).Values())
	assert.Equal(t, []float64{3}, c.Series(MetricMarketCap).Values())
	assert.Len(t, c.Series(MetricROIC), 3)
	assert.Nil(t, c.Series(Metric("other")))
}

func TestCompanyCorrelation_JSON(t *testing.T) {
	row := CompanyCorrelation{
		Symbol:    "NYSE:IBM",
		Revenue:   []changecode.ChangeCode{changecode.LargeDown, changecode.Up},
		MarketCap: []changecode.ChangeCode{changecode.LargeDown, changecode.Up},
		ROIC:      []changecode.ChangeCode{changecode.LargeDown, changecode.FlatOrSmallDown},
		Correlations: changecode.Correlations{
			All:         0.5,
			RevenueROIC: 0.5,
			RevenueCap:  1,
			ROICCap:     0.5,
		},
		ConsecutiveOnes: 0,
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0.5, decoded["correlation_all"])
	assert.Equal(t, 1.0, decoded["correlation_rev_cap"])
	assert.Equal(t, []interface{}{"large_down", "up"}, decoded["revenue"])
}

func TestTrendCategory_Label(t *testing.T) {
	assert.Equal(t, "Cluster 1: Steady growth", TrendSteadyGrowth.Label())
	assert.Equal(t, "Cluster 2: Cyclical patterns", TrendCyclical.Label())
	assert.Equal(t, "Cluster 3: Declining", TrendDeclining.Label())
}

func TestJobReport_AddError(t *testing.T) {
	start := time.Now()
	report := JobReport{Job: "correlation", StartedAt: start}

	for i := 0; i < MaxReportErrors+5; i++ {
		report.AddError("SYM", errors.New("boom"))
	}
	report.FinishedAt = start.Add(3 * time.Second)

	assert.Equal(t, MaxReportErrors+5, report.Failed)
	assert.Len(t, report.Errors, MaxReportErrors)
	assert.Equal(t, "SYM: boom", report.Errors[0])
	assert.Equal(t, 3*time.Second, report.Duration())
}
