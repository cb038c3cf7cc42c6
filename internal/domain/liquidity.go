package domain

import "time"

// AssetClass groups symbols with comparable liquidity characteristics.
type AssetClass string

const (
	AssetClassMajorFX  AssetClass = "major_fx"
	AssetClassMinorFX  AssetClass = "minor_fx"
	AssetClassExoticFX AssetClass = "exotic_fx"
	AssetClassCrypto   AssetClass = "crypto"
)

// LiquidityStandard holds the per-asset-class execution-safety thresholds.
// The table is built once at process start and never mutated.
type LiquidityStandard struct {
	// MinDepth is the minimum currency-unit volume required within the
	// depth window around mid.
	MinDepth float64
	// MaxSpreadPips is the widest acceptable spread, in pips.
	MaxSpreadPips float64
	// MinVolume24h is the minimum 24h traded volume for the class.
	MinVolume24h float64
}

// LiquidityMetrics carries the measured values behind a liquidity verdict.
type LiquidityMetrics struct {
	SpreadPips  float64
	BidDepth    float64
	AskDepth    float64
	TotalDepth  float64
	AssetClass  AssetClass
	DepthLevels int
}

// LiquidityReport is the outcome of the execution-safety checks for one book.
// Reason joins every failing check's description with " | "; it is empty when
// Safe is true.
type LiquidityReport struct {
	Symbol  string
	Safe    bool
	Reason  string
	Metrics LiquidityMetrics
}

// SlippageEstimate is the projected cost of filling an order of a given size
// against a book. When the book cannot fill the size, Fillable is false and
// the pips/percent fields carry the maximal-slippage sentinel. Callers treat
// both cases as "do not execute".
type SlippageEstimate struct {
	Symbol        string
	EstimatedVWAP float64
	SlippagePips  float64
	SlippagePct   float64
	Fillable      bool
}

// ToxicityReport aggregates liquidity verdicts across the major symbols.
// Toxic is true when more than half of the checked majors failed.
type ToxicityReport struct {
	ID           string
	Toxic        bool
	FailedCount  int
	TotalChecked int
	Details      []string
	SweptAt      time.Time
}
