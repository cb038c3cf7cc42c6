package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantfold/marketguard/internal/domain"
)

// minCorrelationPoints is the history floor below which no correlation is
// computed for a symbol.
const minCorrelationPoints = 10

// Bridge consumes price ticks, updates the rolling windows, and fans pairwise
// correlations out to the graph sink. Sink delivery is fire-and-forget: a
// failing sink is logged and never blocks tick ingestion.
//
// Work is O(tracked symbols) per tick with no batching or debouncing; a
// high-frequency feed over a large universe will recompute pairs redundantly.
type Bridge struct {
	windows   *Windows
	sink      domain.GraphSink
	timeframe string
	logger    *slog.Logger

	mu      sync.Mutex
	tracked map[string]struct{}
}

// NewBridge creates a Bridge over the given window service and sink.
// timeframe labels the emitted edges (e.g. "24h").
func NewBridge(windows *Windows, sink domain.GraphSink, timeframe string, logger *slog.Logger) *Bridge {
	return &Bridge{
		windows:   windows,
		sink:      sink,
		timeframe: timeframe,
		logger:    logger.With(slog.String("component", "graph_bridge")),
		tracked:   make(map[string]struct{}),
	}
}

// OnTick records the tick and, once the updated symbol has enough history,
// recomputes its correlation against every other tracked symbol that also
// has enough history, forwarding each computed edge to the sink.
func (b *Bridge) OnTick(ctx context.Context, tick domain.Tick) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.windows.AddPrice(tick.Symbol, tick.Price)
	b.tracked[tick.Symbol] = struct{}{}

	history := b.windows.History(tick.Symbol)
	if len(history) < minCorrelationPoints {
		return
	}

	now := time.Now().UTC()
	for other := range b.tracked {
		if other == tick.Symbol {
			continue
		}
		otherHistory := b.windows.History(other)
		if len(otherHistory) < minCorrelationPoints {
			continue
		}

		corr := Pearson(history, otherHistory)
		if !corr.Computed() {
			continue
		}

		edge := domain.CorrelationEdge{
			ID:          uuid.NewString(),
			SymbolA:     tick.Symbol,
			SymbolB:     other,
			Coefficient: corr.Coefficient,
			Confidence:  corr.Confidence,
			Direction:   DirectionFor(corr.Coefficient),
			Timeframe:   b.timeframe,
			ComputedAt:  now,
		}
		if err := b.sink.UpsertEdge(ctx, edge); err != nil {
			b.logger.DebugContext(ctx, "graph sink rejected edge",
				slog.String("symbol_a", edge.SymbolA),
				slog.String("symbol_b", edge.SymbolB),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Tracked returns the symbols the bridge has seen at least one tick for.
func (b *Bridge) Tracked() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, len(b.tracked))
	for sym := range b.tracked {
		out = append(out, sym)
	}
	return out
}
