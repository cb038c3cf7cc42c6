// Package notify delivers operator alerts for market safety events. Alerts
// fan out to every registered sender (Telegram, Discord) and can be filtered
// by event so operators only receive the classes they subscribed to.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quantfold/marketguard/internal/domain"
)

// Alert events emitted by the pipeline.
const (
	EventToxicity  = "toxicity"
	EventLiquidity = "liquidity"
)

// Sender is a single delivery channel.
type Sender interface {
	// Send delivers an alert with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name identifies the channel, e.g. "telegram".
	Name() string
}

// Notifier fans alerts out to the configured senders. Only events listed at
// construction are delivered; an empty list allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// ToxicityAlert notifies operators that the toxicity state of the market
// flipped. The report's failing symbols are listed in the body.
func (n *Notifier) ToxicityAlert(ctx context.Context, report domain.ToxicityReport) error {
	title := "Market conditions recovered"
	if report.Toxic {
		title = "Toxic market conditions detected"
	}
	body := fmt.Sprintf("%d of %d major pairs failing liquidity checks", report.FailedCount, report.TotalChecked)
	if len(report.Details) > 0 {
		body += "\n" + strings.Join(report.Details, "\n")
	}
	return n.Notify(ctx, EventToxicity, title, body)
}

// LiquidityAlert notifies operators that a symbol failed its liquidity check.
func (n *Notifier) LiquidityAlert(ctx context.Context, report domain.LiquidityReport) error {
	title := fmt.Sprintf("Liquidity warning: %s", report.Symbol)
	return n.Notify(ctx, EventLiquidity, title, report.Reason)
}

// Notify delivers an alert to all senders if the event passes the filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// dispatch sends to every sender. One failing channel does not stop delivery
// to the rest; failures are combined into a single error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "alert sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
