// Package liquidity applies per-asset-class execution-safety thresholds to
// normalized order books: spread/depth gating, VWAP slippage estimates, and
// the systemic toxicity sweep over major symbols.
package liquidity

import (
	"strings"

	"github.com/quantfold/marketguard/internal/domain"
)

// depthWindowPips is the half-width, in pips, of the window around mid used
// for the minimum-depth check.
const depthWindowPips = 5.0

// Majors are the systemic bellwether symbols the toxicity sweep evaluates.
var Majors = []string{
	"EUR/USD", "GBP/USD", "USD/JPY", "USD/CHF", "AUD/USD", "USD/CAD", "NZD/USD",
}

// Standards maps symbols to asset classes and classes to their thresholds.
// Built once at process start, read-only afterwards.
type Standards struct {
	classes  map[domain.AssetClass]domain.LiquidityStandard
	symbols  map[string]domain.AssetClass
	fallback domain.AssetClass
}

// DefaultStandards returns the built-in threshold table. Unmapped symbols
// fall back to the minor-FX class: strict enough not to wave exotics through,
// loose enough not to block every unlisted cross.
func DefaultStandards() *Standards {
	return &Standards{
		classes: map[domain.AssetClass]domain.LiquidityStandard{
			domain.AssetClassMajorFX:  {MinDepth: 5_000_000, MaxSpreadPips: 2.0, MinVolume24h: 1_000_000_000},
			domain.AssetClassMinorFX:  {MinDepth: 1_000_000, MaxSpreadPips: 5.0, MinVolume24h: 100_000_000},
			domain.AssetClassExoticFX: {MinDepth: 250_000, MaxSpreadPips: 15.0, MinVolume24h: 10_000_000},
			domain.AssetClassCrypto:   {MinDepth: 500_000, MaxSpreadPips: 10.0, MinVolume24h: 500_000_000},
		},
		symbols: map[string]domain.AssetClass{
			"EUR/USD": domain.AssetClassMajorFX,
			"GBP/USD": domain.AssetClassMajorFX,
			"USD/JPY": domain.AssetClassMajorFX,
			"USD/CHF": domain.AssetClassMajorFX,
			"AUD/USD": domain.AssetClassMajorFX,
			"USD/CAD": domain.AssetClassMajorFX,
			"NZD/USD": domain.AssetClassMajorFX,
			"EUR/GBP": domain.AssetClassMinorFX,
			"EUR/JPY": domain.AssetClassMinorFX,
			"GBP/JPY": domain.AssetClassMinorFX,
			"EUR/CHF": domain.AssetClassMinorFX,
			"AUD/JPY": domain.AssetClassMinorFX,
			"USD/TRY": domain.AssetClassExoticFX,
			"USD/ZAR": domain.AssetClassExoticFX,
			"USD/MXN": domain.AssetClassExoticFX,
			"BTC/USD": domain.AssetClassCrypto,
			"ETH/USD": domain.AssetClassCrypto,
		},
		fallback: domain.AssetClassMinorFX,
	}
}

// For returns the thresholds and asset class for a symbol, using the fallback
// class when the symbol is unmapped.
func (s *Standards) For(symbol string) (domain.LiquidityStandard, domain.AssetClass) {
	class, ok := s.symbols[symbol]
	if !ok {
		class = s.fallback
	}
	return s.classes[class], class
}

// PipSize returns the conventional pip for a symbol: 0.01 for JPY-quoted
// pairs, 0.0001 otherwise. A currency-market convention; extending to other
// asset types needs an explicit table.
func PipSize(symbol string) float64 {
	if strings.HasSuffix(strings.ToUpper(symbol), "JPY") {
		return 0.01
	}
	return 0.0001
}
