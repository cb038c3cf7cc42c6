package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantfold/marketguard/internal/analytics"
	"github.com/quantfold/marketguard/internal/book"
	"github.com/quantfold/marketguard/internal/feed"
	"github.com/quantfold/marketguard/internal/graph"
	"github.com/quantfold/marketguard/internal/liquidity"
	"github.com/quantfold/marketguard/internal/service"
)

// IngestMode runs the feed consumers, the liquidity guard, and the
// correlation bridge. Edges are published to the signal bus only; nothing is
// persisted, so this mode needs no database.
func (a *App) IngestMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting ingest mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startIngest(ctx, g, deps)
	return g.Wait()
}

// MonitorMode runs the toxicity sweeper and, when enabled, the edge archiver
// over snapshots another instance is ingesting. It does not consume the feed.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startMonitor(ctx, g, deps)
	return g.Wait()
}

// FullMode runs the whole pipeline in one process: feed ingestion, liquidity
// guard, correlation bridge with persisted edges, toxicity sweeps, and
// archival.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startIngest(ctx, g, deps)
	a.startMonitor(ctx, g, deps)
	return g.Wait()
}

// startIngest wires the feed into the liquidity and correlation pipelines and
// launches the consumers on the group.
func (a *App) startIngest(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	standards := liquidity.DefaultStandards()
	validator := liquidity.NewValidator(standards)

	liqSvc := service.NewLiquidityService(
		deps.BookCache,
		validator,
		liquidity.NewEstimator(),
		deps.SignalBus,
		deps.Notifier,
		a.cfg.Liquidity.DefaultOrderSize,
		a.logger,
	)

	windows := analytics.NewWindows(a.cfg.Correlation.WindowSize)
	publisher := graph.NewPublisher(deps.SignalBus, deps.EdgeStore, a.logger)
	bridge := analytics.NewBridge(windows, publisher, a.cfg.Correlation.Timeframe, a.logger)

	dispatcher := feed.NewDispatcher(book.NewParser(), liqSvc, bridge, a.logger)

	switch strings.ToLower(a.cfg.Feed.Source) {
	case "kafka":
		consumer := feed.NewKafkaConsumer(feed.KafkaConfig{
			Brokers:   a.cfg.Feed.Kafka.Brokers,
			BookTopic: a.cfg.Feed.Kafka.BookTopic,
			TickTopic: a.cfg.Feed.Kafka.TickTopic,
			GroupID:   a.cfg.Feed.Kafka.GroupID,
			MinBytes:  a.cfg.Feed.Kafka.MinBytes,
			MaxBytes:  a.cfg.Feed.Kafka.MaxBytes,
		}, dispatcher, a.logger)
		g.Go(func() error { return consumer.ConsumeBooks(ctx) })
		g.Go(func() error { return consumer.ConsumeTicks(ctx) })
	case "ws":
		consumer := feed.NewWSConsumer(feed.WSConfig{URL: a.cfg.Feed.WS.URL}, dispatcher, a.logger)
		g.Go(func() error { return consumer.Run(ctx) })
	default:
		g.Go(func() error {
			return fmt.Errorf("app: unsupported feed source %q", a.cfg.Feed.Source)
		})
	}
}

// startMonitor launches the toxicity sweeper and, when configured, the edge
// archiver on the group.
func (a *App) startMonitor(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	validator := liquidity.NewValidator(liquidity.DefaultStandards())
	detector := liquidity.NewDetector(validator, a.cfg.Liquidity.Majors)

	sweeper := service.NewToxicitySweeper(
		deps.BookCache,
		detector,
		deps.ReportStore,
		deps.SignalBus,
		deps.Notifier,
		a.cfg.Liquidity.SweepInterval.Duration,
		a.logger,
	)
	g.Go(func() error { return sweeper.Run(ctx) })

	if a.cfg.Archive.Enabled && deps.BlobWriter != nil && deps.EdgeStore != nil {
		archiver := service.NewEdgeArchiver(
			deps.EdgeStore,
			deps.BlobWriter,
			time.Duration(a.cfg.Archive.RetentionDays)*24*time.Hour,
			a.cfg.Archive.Interval.Duration,
			a.logger,
		)
		g.Go(func() error { return archiver.Run(ctx) })
	}
}
