package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/marketguard/internal/domain"
)

func twoSidedBook(mid float64) domain.BookSnapshot {
	spread := 0.0002
	m := mid
	return domain.BookSnapshot{
		Symbol: "EUR/USD",
		Bids: []domain.PriceLevel{
			{Price: mid - 0.0001, Size: 2_000_000},
			{Price: mid - 0.0003, Size: 1_000_000},
			{Price: mid - 0.0100, Size: 5_000_000},
		},
		Asks: []domain.PriceLevel{
			{Price: mid + 0.0001, Size: 1_000_000},
			{Price: mid + 0.0004, Size: 500_000},
			{Price: mid + 0.0100, Size: 4_000_000},
		},
		Spread: &spread,
		Mid:    &m,
	}
}

func TestVolumeAtDepthWindow(t *testing.T) {
	snap := twoSidedBook(1.0850)

	// 5-pip window picks up the near levels only.
	profile := VolumeAtDepth(snap, 0.0005)
	assert.Equal(t, 3_000_000.0, profile.BidVolume)
	assert.Equal(t, 1_500_000.0, profile.AskVolume)
	assert.InDelta(t, (3_000_000.0-1_500_000.0)/4_500_000.0, profile.Imbalance, 1e-12)
}

func TestVolumeAtDepthImbalanceBounds(t *testing.T) {
	snap := twoSidedBook(1.0850)
	for _, r := range []float64{0, 0.0001, 0.0005, 0.01, 1} {
		profile := VolumeAtDepth(snap, r)
		assert.GreaterOrEqual(t, profile.Imbalance, -1.0)
		assert.LessOrEqual(t, profile.Imbalance, 1.0)
	}
}

func TestVolumeAtDepthNoMid(t *testing.T) {
	snap := domain.BookSnapshot{
		Symbol: "EUR/USD",
		Bids:   []domain.PriceLevel{{Price: 1.0850, Size: 1_000_000}},
	}
	profile := VolumeAtDepth(snap, 0.0005)
	assert.Equal(t, domain.DepthProfile{}, profile)
}

func TestVolumeAtDepthEmptyWindowIsNeutral(t *testing.T) {
	mid := 1.0850
	spread := 0.0020
	snap := domain.BookSnapshot{
		Symbol: "EUR/USD",
		Bids:   []domain.PriceLevel{{Price: 1.0800, Size: 1_000_000}},
		Asks:   []domain.PriceLevel{{Price: 1.0900, Size: 1_000_000}},
		Spread: &spread,
		Mid:    &mid,
	}
	profile := VolumeAtDepth(snap, 0.0005)
	assert.Zero(t, profile.BidVolume)
	assert.Zero(t, profile.AskVolume)
	assert.Zero(t, profile.Imbalance)
}

func TestVWAPForSizeWalksTheBook(t *testing.T) {
	snap := twoSidedBook(1.0850)

	// 1M fills entirely at the best ask.
	vwap, ok := VWAPForSize(snap, 1_000_000, domain.SideBuy)
	require.True(t, ok)
	assert.InDelta(t, 1.0851, vwap, 1e-9)

	// 1.5M consumes the top two ask levels.
	vwap, ok = VWAPForSize(snap, 1_500_000, domain.SideBuy)
	require.True(t, ok)
	want := (1_000_000*1.0851 + 500_000*1.0854) / 1_500_000
	assert.InDelta(t, want, vwap, 1e-9)

	// Sell side walks the bids.
	vwap, ok = VWAPForSize(snap, 2_500_000, domain.SideSell)
	require.True(t, ok)
	want = (2_000_000*1.0849 + 500_000*1.0847) / 2_500_000
	assert.InDelta(t, want, vwap, 1e-9)
}

func TestVWAPForSizeUnfillable(t *testing.T) {
	snap := twoSidedBook(1.0850)
	_, ok := VWAPForSize(snap, 100_000_000, domain.SideBuy)
	assert.False(t, ok)

	_, ok = VWAPForSize(domain.BookSnapshot{}, 100, domain.SideBuy)
	assert.False(t, ok)
}

func TestVWAPMonotonicInSize(t *testing.T) {
	snap := twoSidedBook(1.0850)

	var prevBuy float64
	for _, size := range []float64{100_000, 1_000_000, 1_500_000, 5_000_000} {
		vwap, ok := VWAPForSize(snap, size, domain.SideBuy)
		require.True(t, ok)
		assert.GreaterOrEqual(t, vwap, prevBuy, "larger BUY must never price better")
		prevBuy = vwap
	}

	prevSell := 2.0
	for _, size := range []float64{100_000, 2_000_000, 2_500_000, 7_000_000} {
		vwap, ok := VWAPForSize(snap, size, domain.SideSell)
		require.True(t, ok)
		assert.LessOrEqual(t, vwap, prevSell, "larger SELL must never price better")
		prevSell = vwap
	}
}
