package changecode

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultSellThreshold is the percentage drop below which a quarter counts as
// a large decline. A drop of exactly this size is still FlatOrSmallDown.
const DefaultSellThreshold = -7.0

var (
	hundred         = decimal.NewFromInt(100)
	negativeHundred = decimal.NewFromInt(-100)

	defaultClassifier = NewClassifier(DefaultSellThreshold)
)

// Classifier maps a numeric series to change codes using a sell threshold
// expressed in percent (for example -7).
type Classifier struct {
	threshold decimal.Decimal
}

// NewClassifier returns a Classifier for the given threshold in percent.
func NewClassifier(thresholdPct float64) Classifier {
	return Classifier{threshold: decimal.NewFromFloat(thresholdPct)}
}

// Threshold returns the configured sell threshold in percent.
func (c Classifier) Threshold() float64 {
	return c.threshold.InexactFloat64()
}

// Classify classifies series with the default -7% threshold.
func Classify(series []float64) []ChangeCode {
	return defaultClassifier.Classify(series)
}

// Classify returns one code per input value. Index 0 has no predecessor and
// is always LargeDown. Non-finite values are treated as zero.
func (c Classifier) Classify(series []float64) []ChangeCode {
	codes := make([]ChangeCode, len(series))
	for i := range series {
		if i == 0 {
			codes[i] = LargeDown
			continue
		}
		codes[i] = c.code(series[i-1], series[i])
	}
	return codes
}

// code decides Up on the float values so that rises smaller than the
// decimal conversion can represent still count. The threshold comparison
// uses PercentChange.
func (c Classifier) code(previous, current float64) ChangeCode {
	if rising(finiteOrZero(previous), finiteOrZero(current)) {
		return Up
	}
	return c.codeFor(PercentChange(previous, current))
}

func rising(previous, current float64) bool {
	if previous == 0 || current < 0 {
		return false
	}
	return (current-previous)/previous > 0
}

// PercentChange returns the quarter-over-quarter change of current against
// previous in percent, computed in decimal arithmetic. A zero predecessor
// yields 0 and a negative current value yields -100.
func PercentChange(previous, current float64) decimal.Decimal {
	previous = finiteOrZero(previous)
	current = finiteOrZero(current)

	if current < 0 {
		return negativeHundred
	}
	if previous == 0 {
		return decimal.Zero
	}

	prev := decimal.NewFromFloat(previous)
	cur := decimal.NewFromFloat(current)
	// multiply before dividing so that exact ratios such as 100 -> 93 stay exact
	return cur.Sub(prev).Mul(hundred).Div(prev)
}

func (c Classifier) codeFor(change decimal.Decimal) ChangeCode {
	switch {
	case change.IsPositive():
		return Up
	case change.GreaterThanOrEqual(c.threshold):
		return FlatOrSmallDown
	default:
		return LargeDown
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
