package domain

import (
	"context"
	"time"
)

// BookCache stores the latest normalized snapshot per symbol.
type BookCache interface {
	SetSnapshot(ctx context.Context, snap BookSnapshot) error
	GetSnapshot(ctx context.Context, symbol string) (BookSnapshot, error)
	Symbols(ctx context.Context) ([]string, error)
}

// StreamMessage represents a single entry from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus provides pub/sub for ephemeral alerts and durable streams for
// consumers that must not miss messages (e.g. the graph updater).
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

// GraphSink receives correlation edges from the bridge. Delivery is
// fire-and-forget from the bridge's perspective; sink errors are logged, not
// surfaced to tick producers.
type GraphSink interface {
	UpsertEdge(ctx context.Context, edge CorrelationEdge) error
}

// EdgeStore persists correlation edges.
type EdgeStore interface {
	Insert(ctx context.Context, edge CorrelationEdge) error
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]CorrelationEdge, error)
	DeleteIDs(ctx context.Context, ids []string) (int64, error)
	LatestForPair(ctx context.Context, symbolA, symbolB string) (CorrelationEdge, error)
}

// ReportStore persists toxicity sweep reports.
type ReportStore interface {
	Insert(ctx context.Context, report ToxicityReport) error
	Latest(ctx context.Context) (ToxicityReport, error)
}
