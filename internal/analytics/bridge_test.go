package analytics

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/marketguard/internal/domain"
)

type captureSink struct {
	mu    sync.Mutex
	edges []domain.CorrelationEdge
}

func (s *captureSink) UpsertEdge(_ context.Context, edge domain.CorrelationEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = append(s.edges, edge)
	return nil
}

func (s *captureSink) all() []domain.CorrelationEdge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CorrelationEdge, len(s.edges))
	copy(out, s.edges)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBridgeRequiresMinimumHistory(t *testing.T) {
	sink := &captureSink{}
	bridge := NewBridge(NewWindows(288), sink, "24h", discardLogger())
	ctx := context.Background()

	// Nine ticks each: below the ten-point floor, no edges.
	for i := 0; i < 9; i++ {
		bridge.OnTick(ctx, domain.Tick{Symbol: "EUR/USD", Price: 1.08 + float64(i)*0.001})
		bridge.OnTick(ctx, domain.Tick{Symbol: "GBP/USD", Price: 1.27 + float64(i)*0.001})
	}
	assert.Empty(t, sink.all())

	// The tenth pair of ticks crosses the floor for both symbols.
	bridge.OnTick(ctx, domain.Tick{Symbol: "EUR/USD", Price: 1.09})
	bridge.OnTick(ctx, domain.Tick{Symbol: "GBP/USD", Price: 1.28})
	assert.NotEmpty(t, sink.all())
}

func TestBridgeEmitsEdgesAgainstAllTrackedSymbols(t *testing.T) {
	sink := &captureSink{}
	bridge := NewBridge(NewWindows(288), sink, "24h", discardLogger())
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		p := float64(i)
		bridge.OnTick(ctx, domain.Tick{Symbol: "EUR/USD", Price: 1.08 + p*0.002})
		bridge.OnTick(ctx, domain.Tick{Symbol: "GBP/USD", Price: 1.27 + p*0.001})
		bridge.OnTick(ctx, domain.Tick{Symbol: "USD/JPY", Price: 149.0 - p*0.05})
	}

	edges := sink.all()
	require.NotEmpty(t, edges)

	pairs := make(map[string]bool)
	for _, e := range edges {
		pairs[e.SymbolA+"|"+e.SymbolB] = true
		assert.Equal(t, "24h", e.Timeframe)
		assert.NotEmpty(t, e.ID)
		assert.GreaterOrEqual(t, e.Coefficient, -1.0)
		assert.LessOrEqual(t, e.Coefficient, 1.0)
	}
	// Every ordered pair shows up once enough history exists.
	assert.True(t, pairs["EUR/USD|GBP/USD"])
	assert.True(t, pairs["USD/JPY|EUR/USD"])
	assert.True(t, pairs["USD/JPY|GBP/USD"])

	assert.ElementsMatch(t, []string{"EUR/USD", "GBP/USD", "USD/JPY"}, bridge.Tracked())
}

func TestBridgeEdgeDirections(t *testing.T) {
	sink := &captureSink{}
	bridge := NewBridge(NewWindows(288), sink, "24h", discardLogger())
	ctx := context.Background()

	// EUR/USD rises while USD/JPY falls in lockstep.
	for i := 0; i < 11; i++ {
		p := float64(i)
		bridge.OnTick(ctx, domain.Tick{Symbol: "EUR/USD", Price: 1.08 + p*0.002})
		bridge.OnTick(ctx, domain.Tick{Symbol: "USD/JPY", Price: 149.0 - p*0.05})
	}

	edges := sink.all()
	require.NotEmpty(t, edges)
	last := edges[len(edges)-1]
	assert.Equal(t, domain.DirectionStrongNegative, last.Direction)
	assert.InDelta(t, -1.0, last.Coefficient, 1e-9)
}
