// Package domain holds the core types shared across marketguard: order book
// snapshots, liquidity reports, correlation results, and the store/cache
// interfaces their infrastructure implementations satisfy.
package domain

import "time"

// Side identifies the direction of a hypothetical order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// PriceLevel is a single price+size entry in an order book.
type PriceLevel struct {
	Price float64
	Size  float64
}

// BookSnapshot is a normalized level-2 order book for one symbol.
//
// Bids are sorted descending by price (best bid first) and asks ascending
// (best ask first); consumers must never re-sort. Spread and Mid are nil when
// either side is empty; a one-sided book has no top-of-book, and nil must
// propagate as "cannot evaluate" rather than zero.
type BookSnapshot struct {
	Symbol      string
	Timestamp   time.Time
	Bids        []PriceLevel
	Asks        []PriceLevel
	Spread      *float64
	Mid         *float64
	DepthLevels int
}

// BestBid returns the highest bid level, if any.
func (s BookSnapshot) BestBid() (PriceLevel, bool) {
	if len(s.Bids) == 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the lowest ask level, if any.
func (s BookSnapshot) BestAsk() (PriceLevel, bool) {
	if len(s.Asks) == 0 {
		return PriceLevel{}, false
	}
	return s.Asks[0], true
}

// TwoSided reports whether both sides of the book are populated.
func (s BookSnapshot) TwoSided() bool {
	return len(s.Bids) > 0 && len(s.Asks) > 0
}

// Tick is a single traded or quoted price observation for a symbol.
type Tick struct {
	Symbol    string
	Price     float64
	Timestamp time.Time
}

// DepthProfile is the aggregate volume available within a price range around
// the mid. Imbalance is (bid-ask)/(bid+ask), zero when both volumes are zero.
type DepthProfile struct {
	BidVolume float64
	AskVolume float64
	Imbalance float64
}
