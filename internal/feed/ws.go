package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// wsHandshakeTimeout bounds the initial dial.
	wsHandshakeTimeout = 15 * time.Second

	// wsReconnectDelay is the base delay before reconnecting.
	wsReconnectDelay = 2 * time.Second

	// wsMaxReconnectDelay caps the exponential backoff.
	wsMaxReconnectDelay = 60 * time.Second
)

// wsEnvelope wraps every message from the gateway; Type selects the pipeline
// and Data carries the raw event payload.
type wsEnvelope struct {
	Type string          `json:"type"` // "book" or "tick"
	Data json.RawMessage `json:"data"`
}

// WSConfig holds parameters for the WebSocket market-data gateway.
type WSConfig struct {
	URL string
}

// WSConsumer ingests market events from a WebSocket gateway for deployments
// without Kafka. It reconnects with exponential backoff until the context is
// cancelled.
type WSConsumer struct {
	cfg        WSConfig
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewWSConsumer creates a WSConsumer over the given dispatcher.
func NewWSConsumer(cfg WSConfig, dispatcher *Dispatcher, logger *slog.Logger) *WSConsumer {
	return &WSConsumer{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "ws_consumer")),
	}
}

// Run connects to the gateway and consumes messages until the context is
// cancelled, reconnecting on any read or dial failure.
func (w *WSConsumer) Run(ctx context.Context) error {
	delay := wsReconnectDelay
	for {
		err := w.consumeOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		w.logger.WarnContext(ctx, "websocket feed interrupted, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; delay > wsMaxReconnectDelay {
			delay = wsMaxReconnectDelay
		}
	}
}

func (w *WSConsumer) consumeOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, w.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("feed: ws dial %s: %w", w.cfg.URL, err)
	}
	defer conn.Close()

	w.logger.InfoContext(ctx, "websocket feed connected", slog.String("url", w.cfg.URL))

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed: ws read: %w", err)
		}

		var env wsEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			w.logger.WarnContext(ctx, "skipping malformed ws envelope",
				slog.String("error", err.Error()),
			)
			continue
		}

		switch env.Type {
		case "book":
			err = w.dispatcher.HandleBook(ctx, env.Data)
		case "tick":
			err = w.dispatcher.HandleTick(ctx, env.Data)
		default:
			w.logger.DebugContext(ctx, "ignoring unknown event type",
				slog.String("type", env.Type),
			)
		}
		if err != nil {
			w.logger.ErrorContext(ctx, "event handling failed",
				slog.String("type", env.Type),
				slog.String("error", err.Error()),
			)
		}
	}
}
