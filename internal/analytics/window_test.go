package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowsEviction(t *testing.T) {
	w := NewWindows(5)

	for i := 0; i < 8; i++ {
		w.AddPrice("EUR/USD", float64(i))
	}

	history := w.History("EUR/USD")
	require.Len(t, history, 5)
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, history)
}

func TestWindowsPartialFillOrder(t *testing.T) {
	w := NewWindows(288)
	w.AddPrice("EUR/USD", 1.08)
	w.AddPrice("EUR/USD", 1.09)
	w.AddPrice("EUR/USD", 1.10)

	assert.Equal(t, []float64{1.08, 1.09, 1.10}, w.History("EUR/USD"))
	assert.Equal(t, 3, w.Count("EUR/USD"))
}

func TestWindowsUnseenSymbol(t *testing.T) {
	w := NewWindows(10)
	assert.Empty(t, w.History("XAU/USD"))
	assert.Zero(t, w.Count("XAU/USD"))
}

func TestWindowsBuffersAreIndependent(t *testing.T) {
	w := NewWindows(3)
	w.AddPrice("EUR/USD", 1)
	w.AddPrice("EUR/USD", 2)
	w.AddPrice("GBP/USD", 9)

	assert.Equal(t, []float64{1, 2}, w.History("EUR/USD"))
	assert.Equal(t, []float64{9}, w.History("GBP/USD"))
}

func TestWindowsClear(t *testing.T) {
	w := NewWindows(3)
	w.AddPrice("EUR/USD", 1)
	w.AddPrice("GBP/USD", 2)

	w.Clear("EUR/USD")
	assert.Empty(t, w.History("EUR/USD"))
	assert.Equal(t, []float64{2}, w.History("GBP/USD"))

	w.ClearAll()
	assert.Empty(t, w.History("GBP/USD"))
	assert.Empty(t, w.Symbols())
}

func TestWindowsHistoryIsACopy(t *testing.T) {
	w := NewWindows(3)
	w.AddPrice("EUR/USD", 1)

	h := w.History("EUR/USD")
	h[0] = 42
	assert.Equal(t, []float64{1}, w.History("EUR/USD"))
}

func TestWindowsDefaultSize(t *testing.T) {
	assert.Equal(t, DefaultWindowSize, NewWindows(0).Size())
	assert.Equal(t, 50, NewWindows(50).Size())
}
