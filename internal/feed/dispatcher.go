// Package feed ingests raw market events from Kafka or a WebSocket gateway
// and routes them into the liquidity and correlation pipelines.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/quantfold/marketguard/internal/book"
	"github.com/quantfold/marketguard/internal/domain"
)

// BookSink receives normalized snapshots from the dispatcher.
type BookSink interface {
	OnSnapshot(ctx context.Context, snap domain.BookSnapshot) error
}

// TickSink receives price ticks from the dispatcher.
type TickSink interface {
	OnTick(ctx context.Context, tick domain.Tick)
}

// tickEvent is the JSON shape of a raw tick payload.
type tickEvent struct {
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"price"`
	Timestamp string   `json:"timestamp"`
}

// Dispatcher parses raw payloads and hands them to the sinks. Malformed
// payloads are logged and skipped; they never stop the consume loop.
type Dispatcher struct {
	parser *book.Parser
	books  BookSink
	ticks  TickSink
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given sinks.
func NewDispatcher(parser *book.Parser, books BookSink, ticks TickSink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		parser: parser,
		books:  books,
		ticks:  ticks,
		logger: logger.With(slog.String("component", "dispatcher")),
	}
}

// HandleBook parses a raw order book payload and forwards the snapshot.
// An unparseable payload is skipped with a log line.
func (d *Dispatcher) HandleBook(ctx context.Context, payload []byte) error {
	snap, err := d.parser.Parse(payload)
	if err != nil {
		if errors.Is(err, domain.ErrUnparseable) {
			d.logger.WarnContext(ctx, "skipping unparseable book payload",
				slog.String("error", err.Error()),
				slog.Int("payload_len", len(payload)),
			)
			return nil
		}
		return err
	}
	return d.books.OnSnapshot(ctx, snap)
}

// HandleTick decodes a raw tick payload and forwards it. Ticks without a
// symbol or price are skipped.
func (d *Dispatcher) HandleTick(ctx context.Context, payload []byte) error {
	var ev tickEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		d.logger.WarnContext(ctx, "skipping unparseable tick payload",
			slog.String("error", err.Error()),
		)
		return nil
	}

	symbol := strings.TrimSpace(ev.Symbol)
	if symbol == "" || ev.Price == nil {
		d.logger.WarnContext(ctx, "skipping incomplete tick",
			slog.String("symbol", symbol),
		)
		return nil
	}

	ts := time.Now().UTC()
	if ev.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, ev.Timestamp); err == nil {
			ts = t.UTC()
		}
	}

	d.ticks.OnTick(ctx, domain.Tick{Symbol: symbol, Price: *ev.Price, Timestamp: ts})
	return nil
}
