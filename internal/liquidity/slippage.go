package liquidity

import (
	"math"

	"github.com/quantfold/marketguard/internal/book"
	"github.com/quantfold/marketguard/internal/domain"
)

// Maximal-slippage sentinel returned when the book cannot fill the requested
// size. This deliberately conflates "can't fill" with "very expensive to
// fill" so risk callers get an unambiguous do-not-execute signal; the
// Fillable flag keeps the two distinguishable where it matters.
const (
	sentinelSlippagePips = 999.0
	sentinelSlippagePct  = 100.0
)

// Estimator projects the VWAP-based slippage of a hypothetical order.
type Estimator struct{}

// NewEstimator creates an Estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate prices an order of the given size and side against the book and
// reports the deviation from mid in pips and percent. A book with no mid or
// insufficient depth yields the maximal-slippage sentinel.
func (e *Estimator) Estimate(snap domain.BookSnapshot, size float64, side domain.Side) domain.SlippageEstimate {
	unfillable := domain.SlippageEstimate{
		Symbol:       snap.Symbol,
		SlippagePips: sentinelSlippagePips,
		SlippagePct:  sentinelSlippagePct,
	}

	if snap.Mid == nil {
		return unfillable
	}
	vwap, ok := book.VWAPForSize(snap, size, side)
	if !ok {
		return unfillable
	}

	mid := *snap.Mid
	deviation := math.Abs(vwap - mid)
	return domain.SlippageEstimate{
		Symbol:        snap.Symbol,
		EstimatedVWAP: vwap,
		SlippagePips:  deviation / PipSize(snap.Symbol),
		SlippagePct:   deviation / mid * 100,
		Fillable:      true,
	}
}
