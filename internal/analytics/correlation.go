package analytics

import (
	"math"

	"github.com/quantfold/marketguard/internal/domain"
)

// confidenceDenominator scales sample size into the [0,1] confidence proxy.
// This is a crude heuristic, not a p-value; callers must not treat it as one.
const confidenceDenominator = 100.0

// Pearson computes the Pearson correlation between two price series.
//
// Series of unequal length are aligned positionally by taking the tail of the
// longer one; this assumes both symbols sample in lockstep. Fewer than two
// points on either side yields an insufficient-data result, and a constant
// series yields a zero-variance result. Both are tagged so a genuine zero
// correlation stays distinguishable.
func Pearson(a, b []float64) domain.Correlation {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return domain.Correlation{Status: domain.CorrelationInsufficientData}
	}

	// Most recent n points of each.
	a = a[len(a)-n:]
	b = b[len(b)-n:]

	var sumA, sumB float64
	for i := 0; i < n; i++ {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return domain.Correlation{Status: domain.CorrelationZeroVariance}
	}

	coef := cov / math.Sqrt(varA*varB)
	// Guard against float drift pushing the coefficient out of [-1, 1].
	coef = math.Max(-1, math.Min(1, coef))

	confidence := math.Min(1.0, float64(n)/confidenceDenominator)
	return domain.Correlation{
		Status:      domain.CorrelationComputed,
		Coefficient: coef,
		Confidence:  confidence,
	}
}

// DirectionFor buckets a coefficient into its strength classification.
// Thresholds are fixed at ±0.3 and ±0.7.
func DirectionFor(coefficient float64) domain.Direction {
	switch {
	case coefficient > 0.7:
		return domain.DirectionStrongPositive
	case coefficient > 0.3:
		return domain.DirectionPositive
	case coefficient < -0.7:
		return domain.DirectionStrongNegative
	case coefficient < -0.3:
		return domain.DirectionNegative
	default:
		return domain.DirectionNeutral
	}
}
