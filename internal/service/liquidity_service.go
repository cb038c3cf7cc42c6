// Package service wires the analysis packages into running pipelines: the
// liquidity guard over incoming snapshots, the periodic toxicity sweep, and
// the cold-storage archiver for aged correlation edges.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quantfold/marketguard/internal/domain"
	"github.com/quantfold/marketguard/internal/liquidity"
	"github.com/quantfold/marketguard/internal/notify"
)

// AlertChannel is the pub/sub channel liquidity warnings are published on.
const AlertChannel = "liquidity:alerts"

// LiquidityService caches every incoming snapshot and checks it against the
// liquidity standards for its asset class. Unsafe books raise an alert on the
// signal bus and through the notifier; they never block ingestion.
type LiquidityService struct {
	cache     domain.BookCache
	validator *liquidity.Validator
	estimator *liquidity.Estimator
	bus       domain.SignalBus
	notifier  *notify.Notifier // nil disables operator alerts
	orderSize float64
	logger    *slog.Logger
}

// NewLiquidityService creates a LiquidityService. orderSize is the notional
// used for the side-depth check on every snapshot; zero disables it. The
// notifier may be nil; operators usually filter the liquidity event out
// anyway since it fires per unsafe snapshot.
func NewLiquidityService(
	cache domain.BookCache,
	validator *liquidity.Validator,
	estimator *liquidity.Estimator,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	orderSize float64,
	logger *slog.Logger,
) *LiquidityService {
	return &LiquidityService{
		cache:     cache,
		validator: validator,
		estimator: estimator,
		bus:       bus,
		notifier:  notifier,
		orderSize: orderSize,
		logger:    logger.With(slog.String("component", "liquidity_service")),
	}
}

// OnSnapshot stores the snapshot and runs the liquidity check. A failed cache
// write is returned so the feed can log it; a failed alert publish is logged
// and swallowed.
func (s *LiquidityService) OnSnapshot(ctx context.Context, snap domain.BookSnapshot) error {
	if err := s.cache.SetSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("service: cache snapshot %s: %w", snap.Symbol, err)
	}

	report := s.validator.Check(snap, s.orderSize)
	if report.Safe {
		return nil
	}

	s.logger.WarnContext(ctx, "liquidity check failed",
		slog.String("symbol", snap.Symbol),
		slog.String("reason", report.Reason),
	)

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("service: marshal liquidity report: %w", err)
	}
	if err := s.bus.Publish(ctx, AlertChannel, payload); err != nil {
		s.logger.ErrorContext(ctx, "alert publish failed",
			slog.String("symbol", snap.Symbol),
			slog.String("error", err.Error()),
		)
	}
	if s.notifier != nil {
		if err := s.notifier.LiquidityAlert(ctx, report); err != nil {
			s.logger.ErrorContext(ctx, "liquidity alert failed",
				slog.String("symbol", snap.Symbol),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// CheckSymbol runs a liquidity check against the latest cached snapshot for
// the symbol. orderSize zero skips the side-depth check.
func (s *LiquidityService) CheckSymbol(ctx context.Context, symbol string, orderSize float64) (domain.LiquidityReport, error) {
	snap, err := s.cache.GetSnapshot(ctx, symbol)
	if err != nil {
		return domain.LiquidityReport{}, fmt.Errorf("service: load snapshot %s: %w", symbol, err)
	}
	return s.validator.Check(snap, orderSize), nil
}

// EstimateSlippage estimates execution cost for a market order of the given
// size against the latest cached book.
func (s *LiquidityService) EstimateSlippage(ctx context.Context, symbol string, size float64, side domain.Side) (domain.SlippageEstimate, error) {
	snap, err := s.cache.GetSnapshot(ctx, symbol)
	if err != nil {
		return domain.SlippageEstimate{}, fmt.Errorf("service: load snapshot %s: %w", symbol, err)
	}
	return s.estimator.Estimate(snap, size, side), nil
}
