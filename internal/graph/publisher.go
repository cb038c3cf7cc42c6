// Package graph delivers correlation edges to downstream consumers. The
// actual graph database updater lives outside this service; it tails the
// durable edge stream published here.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantfold/marketguard/internal/domain"
)

// EdgeStream is the durable stream the graph updater consumes.
const EdgeStream = "graph:edges"

// EdgeChannel is the ephemeral pub/sub channel for live edge watchers.
const EdgeChannel = "graph:edges:live"

// edgeEvent is the JSON wire form of a correlation edge.
type edgeEvent struct {
	ID          string    `json:"id"`
	SymbolA     string    `json:"symbol_a"`
	SymbolB     string    `json:"symbol_b"`
	Coefficient float64   `json:"coefficient"`
	Confidence  float64   `json:"confidence"`
	Direction   string    `json:"direction"`
	Timeframe   string    `json:"timeframe"`
	ComputedAt  time.Time `json:"computed_at"`
}

// Publisher implements domain.GraphSink. Every edge is appended to the
// durable stream and mirrored on the live channel; when a store is
// configured the edge is persisted as well.
type Publisher struct {
	bus    domain.SignalBus
	edges  domain.EdgeStore // optional
	logger *slog.Logger
}

// NewPublisher creates a Publisher. edges may be nil when the deployment
// runs without Postgres.
func NewPublisher(bus domain.SignalBus, edges domain.EdgeStore, logger *slog.Logger) *Publisher {
	return &Publisher{
		bus:    bus,
		edges:  edges,
		logger: logger.With(slog.String("component", "graph_publisher")),
	}
}

// UpsertEdge fans an edge out to the stream, the live channel, and the store.
// Persistence failure is reported to the caller; a live-channel failure is
// only logged since pub/sub subscribers are best-effort by contract.
func (p *Publisher) UpsertEdge(ctx context.Context, edge domain.CorrelationEdge) error {
	payload, err := json.Marshal(edgeEvent{
		ID:          edge.ID,
		SymbolA:     edge.SymbolA,
		SymbolB:     edge.SymbolB,
		Coefficient: edge.Coefficient,
		Confidence:  edge.Confidence,
		Direction:   string(edge.Direction),
		Timeframe:   edge.Timeframe,
		ComputedAt:  edge.ComputedAt,
	})
	if err != nil {
		return fmt.Errorf("graph: marshal edge: %w", err)
	}

	if err := p.bus.StreamAppend(ctx, EdgeStream, payload); err != nil {
		return fmt.Errorf("graph: append edge: %w", err)
	}
	if err := p.bus.Publish(ctx, EdgeChannel, payload); err != nil {
		p.logger.DebugContext(ctx, "live edge publish failed",
			slog.String("error", err.Error()),
		)
	}

	if p.edges != nil {
		if err := p.edges.Insert(ctx, edge); err != nil {
			return fmt.Errorf("graph: persist edge: %w", err)
		}
	}
	return nil
}

// Compile-time interface check.
var _ domain.GraphSink = (*Publisher)(nil)
