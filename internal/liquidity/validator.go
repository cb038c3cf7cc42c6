package liquidity

import (
	"fmt"
	"strings"

	"github.com/quantfold/marketguard/internal/book"
	"github.com/quantfold/marketguard/internal/domain"
)

// sentinelSpreadPips stands in for the spread of a one-sided or empty book:
// maximally unsafe, never an error.
const sentinelSpreadPips = 999.0

// Validator decides whether a book is safe to execute against, per the
// symbol's asset-class thresholds.
type Validator struct {
	standards *Standards
}

// NewValidator creates a Validator over the given threshold table.
func NewValidator(standards *Standards) *Validator {
	return &Validator{standards: standards}
}

// Check runs the execution-safety checks against a snapshot. orderSize <= 0
// means "no specific order"; when positive, the book must additionally hold
// at least that much volume on each side.
//
// All checks must pass for Safe to be true. Reason joins every failing
// check's description with " | " and is empty on success.
func (v *Validator) Check(snap domain.BookSnapshot, orderSize float64) domain.LiquidityReport {
	standard, class := v.standards.For(snap.Symbol)
	pip := PipSize(snap.Symbol)

	spreadPips := sentinelSpreadPips
	if snap.Spread != nil {
		spreadPips = *snap.Spread / pip
	}

	profile := book.VolumeAtDepth(snap, depthWindowPips*pip)
	totalDepth := profile.BidVolume + profile.AskVolume

	var failures []string
	if spreadPips > standard.MaxSpreadPips {
		failures = append(failures, fmt.Sprintf(
			"High Spread: %.1f pips > %.1f", spreadPips, standard.MaxSpreadPips))
	}
	if totalDepth < standard.MinDepth {
		failures = append(failures, fmt.Sprintf(
			"Low Depth: %.0f < %.0f within %.0f pips", totalDepth, standard.MinDepth, depthWindowPips))
	}
	if orderSize > 0 {
		if profile.BidVolume < orderSize || profile.AskVolume < orderSize {
			failures = append(failures, fmt.Sprintf(
				"Insufficient Side Depth for order size %.0f (bid %.0f, ask %.0f)",
				orderSize, profile.BidVolume, profile.AskVolume))
		}
	}

	return domain.LiquidityReport{
		Symbol: snap.Symbol,
		Safe:   len(failures) == 0,
		Reason: strings.Join(failures, " | "),
		Metrics: domain.LiquidityMetrics{
			SpreadPips:  spreadPips,
			BidDepth:    profile.BidVolume,
			AskDepth:    profile.AskVolume,
			TotalDepth:  totalDepth,
			AssetClass:  class,
			DepthLevels: snap.DepthLevels,
		},
	}
}
