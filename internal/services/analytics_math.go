package services

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev divides by n, not n-1.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := calculateMean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// standardize returns z-scores. A constant series is returned unchanged.
func standardize(values []float64) []float64 {
	out := make([]float64, len(values))
	std := populationStdDev(values)
	if std == 0 {
		copy(out, values)
		return out
	}
	mean := calculateMean(values)
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// dtwDistance is the dynamic time warping distance without a window: the
// square root of the smallest sum of squared differences along any warping
// path.
func dtwDistance(a, b []float64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}

	inf := math.Inf(1)
	prev := make([]float64, len(b)+1)
	curr := make([]float64, len(b)+1)
	for j := 1; j <= len(b); j++ {
		prev[j] = inf
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = inf
		for j := 1; j <= len(b); j++ {
			d := a[i-1] - b[j-1]
			curr[j] = d*d + math.Min(prev[j-1], math.Min(prev[j], curr[j-1]))
		}
		prev, curr = curr, prev
	}

	return math.Sqrt(prev[len(b)])
}

// categorizeTrend classifies a series by the mean of its first differences.
func categorizeTrend(values []float64) models.TrendCategory {
	if len(values) < 2 {
		return models.TrendCyclical
	}
	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = values[i] - values[i-1]
	}
	mean := calculateMean(diffs)
	switch {
	case mean > 0:
		return models.TrendSteadyGrowth
	case mean < 0:
		return models.TrendDeclining
	default:
		return models.TrendCyclical
	}
}

// meanOfLast averages the last n values, or all of them when fewer exist.
func meanOfLast(values []float64, n int) float64 {
	if n <= 0 || len(values) == 0 {
		return 0
	}
	if len(values) > n {
		values = values[len(values)-n:]
	}
	return calculateMean(values)
}

// lastN returns the trailing n values, or nil when fewer exist.
func lastN(values []float64, n int) []float64 {
	if n <= 0 || len(values) < n {
		return nil
	}
	return values[len(values)-n:]
}

// smoothedLast returns the final simple moving average over period quarters.
func smoothedLast(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 || period > len(values) {
		period = len(values)
	}
	if period == 1 {
		return values[len(values)-1]
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	result := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	if len(result) == 0 {
		return 0
	}
	return result[len(result)-1]
}
