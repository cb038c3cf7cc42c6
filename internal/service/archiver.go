package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quantfold/marketguard/internal/domain"
)

// defaultArchiveBatch bounds how many edges a single export object holds.
const defaultArchiveBatch = 5000

// EdgeArchiver moves aged correlation edges from Postgres to S3 cold storage
// as NDJSON objects, then deletes the exported rows.
type EdgeArchiver struct {
	edges     domain.EdgeStore
	blob      domain.BlobWriter
	retention time.Duration
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

// NewEdgeArchiver creates an EdgeArchiver that keeps edges for retention and
// runs a pass every interval.
func NewEdgeArchiver(
	edges domain.EdgeStore,
	blob domain.BlobWriter,
	retention time.Duration,
	interval time.Duration,
	logger *slog.Logger,
) *EdgeArchiver {
	return &EdgeArchiver{
		edges:     edges,
		blob:      blob,
		retention: retention,
		batchSize: defaultArchiveBatch,
		interval:  interval,
		logger:    logger.With(slog.String("component", "edge_archiver")),
	}
}

// Run executes archive passes on the configured interval until the context
// is cancelled.
func (a *EdgeArchiver) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "edge archiver started",
		slog.Duration("interval", a.interval),
		slog.Duration("retention", a.retention),
	)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("edge archiver stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := a.RunOnce(ctx); err != nil {
				a.logger.ErrorContext(ctx, "archive pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce archives every edge older than the retention cutoff. Edges are
// exported in batches, each uploaded before its rows are deleted, so a crash
// mid-pass never loses data.
func (a *EdgeArchiver) RunOnce(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-a.retention)
	var exported int64

	for {
		batch, err := a.edges.ListOlderThan(ctx, cutoff, a.batchSize)
		if err != nil {
			return fmt.Errorf("service: list edges before %v: %w", cutoff, err)
		}
		if len(batch) == 0 {
			break
		}

		key := archiveKey(batch[0].ComputedAt)
		if err := a.upload(ctx, key, batch); err != nil {
			return err
		}

		// Delete exactly the exported ids; edges sharing a timestamp across
		// the batch boundary stay in place for the next batch.
		ids := make([]string, len(batch))
		for i, edge := range batch {
			ids[i] = edge.ID
		}
		deleted, err := a.edges.DeleteIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("service: delete archived edges: %w", err)
		}

		exported += int64(len(batch))
		a.logger.InfoContext(ctx, "edge batch archived",
			slog.String("key", key),
			slog.Int("exported", len(batch)),
			slog.Int64("deleted", deleted),
		)
	}

	if exported > 0 {
		a.logger.InfoContext(ctx, "archive pass complete", slog.Int64("edges", exported))
	}
	return nil
}

func (a *EdgeArchiver) upload(ctx context.Context, key string, batch []domain.CorrelationEdge) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, edge := range batch {
		if err := enc.Encode(edge); err != nil {
			return fmt.Errorf("service: encode edge %s: %w", edge.ID, err)
		}
	}
	if err := a.blob.Put(ctx, key, &buf, "application/x-ndjson"); err != nil {
		return fmt.Errorf("service: upload archive %s: %w", key, err)
	}
	return nil
}

// archiveKey builds the object key for a batch, partitioned by the day of its
// oldest edge.
func archiveKey(oldest time.Time) string {
	return fmt.Sprintf("correlation/edges/%s/%s.ndjson",
		oldest.UTC().Format("2006/01/02"), uuid.NewString())
}
