package changecode

import "fmt"

// Correlate returns the fraction of positions at which every sequence holds
// the same code. Position 0 is included. Two or three sequences are the
// expected use, but any count of at least two is accepted.
//
// Empty sequences score 0. Sequences of different lengths are rejected with
// an error wrapping ErrInvalidArgument rather than silently truncated.
func Correlate(seqs ...[]ChangeCode) (float64, error) {
	if len(seqs) < 2 {
		return 0, fmt.Errorf("%w: correlate needs at least two sequences, got %d", ErrInvalidArgument, len(seqs))
	}

	n := len(seqs[0])
	for i, seq := range seqs[1:] {
		if len(seq) != n {
			return 0, fmt.Errorf("%w: sequence %d has length %d, want %d", ErrInvalidArgument, i+1, len(seq), n)
		}
	}
	if n == 0 {
		return 0, nil
	}

	agree := 0
	for pos := 0; pos < n; pos++ {
		if allEqualAt(seqs, pos) {
			agree++
		}
	}
	return float64(agree) / float64(n), nil
}

func allEqualAt(seqs [][]ChangeCode, pos int) bool {
	first := seqs[0][pos]
	for _, seq := range seqs[1:] {
		if seq[pos] != first {
			return false
		}
	}
	return true
}

// Correlations holds the four co-movement variants computed for a company.
type Correlations struct {
	All         float64 `json:"correlation_all"`
	RevenueROIC float64 `json:"correlation_rev_roic"`
	RevenueCap  float64 `json:"correlation_rev_cap"`
	ROICCap     float64 `json:"correlation_roic_cap"`
}

// CorrelateMetrics computes the three-way score and the three pairwise scores
// for revenue, market cap and ROIC code sequences.
func CorrelateMetrics(revenue, marketCap, roic []ChangeCode) (Correlations, error) {
	var out Correlations
	var err error

	if out.All, err = Correlate(revenue, marketCap, roic); err != nil {
		return Correlations{}, err
	}
	if out.RevenueROIC, err = Correlate(revenue, roic); err != nil {
		return Correlations{}, err
	}
	if out.RevenueCap, err = Correlate(revenue, marketCap); err != nil {
		return Correlations{}, err
	}
	if out.ROICCap, err = Correlate(roic, marketCap); err != nil {
		return Correlations{}, err
	}
	return out, nil
}
