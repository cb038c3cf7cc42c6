package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantfold/marketguard/internal/domain"
	"github.com/quantfold/marketguard/internal/liquidity"
	"github.com/quantfold/marketguard/internal/notify"
)

// ToxicityChannel is the pub/sub channel sweep results are published on.
const ToxicityChannel = "toxicity:state"

// ToxicitySweeper periodically checks the major pairs for market-wide
// toxicity. Every sweep result is persisted and published; operator alerts
// fire only when the toxic state flips.
type ToxicitySweeper struct {
	cache    domain.BookCache
	detector *liquidity.Detector
	reports  domain.ReportStore // nil in cache-only deployments
	bus      domain.SignalBus
	notifier *notify.Notifier // nil disables alerts
	interval time.Duration
	logger   *slog.Logger

	lastToxic *bool
}

// NewToxicitySweeper creates a ToxicitySweeper. reports and notifier may be
// nil; persistence and alerting are then skipped.
func NewToxicitySweeper(
	cache domain.BookCache,
	detector *liquidity.Detector,
	reports domain.ReportStore,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	interval time.Duration,
	logger *slog.Logger,
) *ToxicitySweeper {
	return &ToxicitySweeper{
		cache:    cache,
		detector: detector,
		reports:  reports,
		bus:      bus,
		notifier: notifier,
		interval: interval,
		logger:   logger.With(slog.String("component", "toxicity_sweeper")),
	}
}

// Run sweeps on the configured interval until the context is cancelled. An
// initial sweep runs immediately so state is available at startup.
func (s *ToxicitySweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "toxicity sweeper started", slog.Duration("interval", s.interval))

	if err := s.SweepOnce(ctx); err != nil {
		s.logger.ErrorContext(ctx, "sweep failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("toxicity sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// SweepOnce collects the latest cached snapshots, runs the toxicity check,
// persists and publishes the report, and alerts on a state flip.
func (s *ToxicitySweeper) SweepOnce(ctx context.Context) error {
	snaps, err := s.collect(ctx)
	if err != nil {
		return err
	}

	report := s.detector.Sweep(snaps)
	s.logger.InfoContext(ctx, "toxicity sweep complete",
		slog.Bool("toxic", report.Toxic),
		slog.Int("failed", report.FailedCount),
		slog.Int("checked", report.TotalChecked),
	)

	if s.reports != nil {
		if err := s.reports.Insert(ctx, report); err != nil {
			return fmt.Errorf("service: persist toxicity report: %w", err)
		}
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("service: marshal toxicity report: %w", err)
	}
	if err := s.bus.Publish(ctx, ToxicityChannel, payload); err != nil {
		s.logger.ErrorContext(ctx, "toxicity publish failed", slog.String("error", err.Error()))
	}

	if s.notifier != nil && (s.lastToxic == nil || *s.lastToxic != report.Toxic) {
		// Alert only on the first sweep and on flips, not every interval.
		if s.lastToxic != nil || report.Toxic {
			if err := s.notifier.ToxicityAlert(ctx, report); err != nil {
				s.logger.ErrorContext(ctx, "toxicity alert failed", slog.String("error", err.Error()))
			}
		}
	}
	toxic := report.Toxic
	s.lastToxic = &toxic

	return nil
}

// collect loads the latest snapshot for every cached symbol. Symbols that
// expired between listing and load are skipped.
func (s *ToxicitySweeper) collect(ctx context.Context) ([]domain.BookSnapshot, error) {
	symbols, err := s.cache.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: list cached symbols: %w", err)
	}

	snaps := make([]domain.BookSnapshot, 0, len(symbols))
	for _, sym := range symbols {
		snap, err := s.cache.GetSnapshot(ctx, sym)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("service: load snapshot %s: %w", sym, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
