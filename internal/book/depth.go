package book

import "github.com/quantfold/marketguard/internal/domain"

// VolumeAtDepth sums the size available within priceRange of the mid: bid
// levels with price >= mid-priceRange and ask levels with price <=
// mid+priceRange. priceRange is in price units (the caller converts pips).
//
// A book without a defined mid has no depth to measure; the result is
// all-zero rather than an error, and a book with no volume inside the range
// reports a neutral imbalance of 0.
func VolumeAtDepth(snap domain.BookSnapshot, priceRange float64) domain.DepthProfile {
	if snap.Mid == nil {
		return domain.DepthProfile{}
	}
	mid := *snap.Mid

	var profile domain.DepthProfile
	for _, l := range snap.Bids {
		if l.Price >= mid-priceRange {
			profile.BidVolume += l.Size
		}
	}
	for _, l := range snap.Asks {
		if l.Price <= mid+priceRange {
			profile.AskVolume += l.Size
		}
	}

	total := profile.BidVolume + profile.AskVolume
	if total > 0 {
		profile.Imbalance = (profile.BidVolume - profile.AskVolume) / total
	}
	return profile
}

// VWAPForSize walks the asks (for a BUY) or bids (for a SELL) in book order,
// accumulating liquidity until size is filled, and returns the
// volume-weighted fill price. The second return is false when the book's
// total depth on that side cannot fill the size: "cannot price this order",
// distinct from a valid price of zero.
func VWAPForSize(snap domain.BookSnapshot, size float64, side domain.Side) (float64, bool) {
	if size <= 0 {
		return 0, false
	}

	levels := snap.Asks
	if side == domain.SideSell {
		levels = snap.Bids
	}

	var filled, notional float64
	for _, l := range levels {
		take := l.Size
		if remaining := size - filled; take > remaining {
			take = remaining
		}
		filled += take
		notional += take * l.Price
		if filled >= size {
			return notional / filled, true
		}
	}
	return 0, false
}
