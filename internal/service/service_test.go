package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/marketguard/internal/domain"
	"github.com/quantfold/marketguard/internal/liquidity"
	"github.com/quantfold/marketguard/internal/notify"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memCache struct {
	snaps map[string]domain.BookSnapshot
}

func newMemCache() *memCache {
	return &memCache{snaps: make(map[string]domain.BookSnapshot)}
}

func (m *memCache) SetSnapshot(_ context.Context, snap domain.BookSnapshot) error {
	m.snaps[snap.Symbol] = snap
	return nil
}

func (m *memCache) GetSnapshot(_ context.Context, symbol string) (domain.BookSnapshot, error) {
	snap, ok := m.snaps[symbol]
	if !ok {
		return domain.BookSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func (m *memCache) Symbols(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(m.snaps))
	for sym := range m.snaps {
		out = append(out, sym)
	}
	return out, nil
}

type fakeBus struct {
	published map[string][][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{published: make(map[string][][]byte)}
}

func (f *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	f.published[channel] = append(f.published[channel], payload)
	return nil
}

func (f *fakeBus) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }

func (f *fakeBus) StreamAppend(context.Context, string, []byte) error { return nil }

func (f *fakeBus) StreamRead(context.Context, string, string, int) ([]domain.StreamMessage, error) {
	return nil, nil
}

// book builds a two-sided snapshot around mid with the given per-level size.
func book(symbol string, mid, levelSize float64) domain.BookSnapshot {
	pip := liquidity.PipSize(symbol)
	bids := []domain.PriceLevel{
		{Price: mid - pip/2, Size: levelSize},
		{Price: mid - pip, Size: levelSize},
	}
	asks := []domain.PriceLevel{
		{Price: mid + pip/2, Size: levelSize},
		{Price: mid + pip, Size: levelSize},
	}
	spread := asks[0].Price - bids[0].Price
	m := (asks[0].Price + bids[0].Price) / 2
	return domain.BookSnapshot{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Bids:      bids,
		Asks:      asks,
		Spread:    &spread,
		Mid:       &m,
	}
}

type fakeSender struct {
	titles []string
}

func (f *fakeSender) Send(_ context.Context, title, _ string) error {
	f.titles = append(f.titles, title)
	return nil
}

func (f *fakeSender) Name() string { return "fake" }

func newLiquidityService(cache domain.BookCache, bus domain.SignalBus, notifier *notify.Notifier) *LiquidityService {
	standards := liquidity.DefaultStandards()
	return NewLiquidityService(
		cache,
		liquidity.NewValidator(standards),
		liquidity.NewEstimator(),
		bus,
		notifier,
		0,
		discardLogger(),
	)
}

func TestOnSnapshotCachesAndStaysQuietWhenSafe(t *testing.T) {
	cache := newMemCache()
	bus := newFakeBus()
	svc := newLiquidityService(cache, bus, nil)

	// Deep, tight book on a major pair passes every check.
	snap := book("EUR/USD", 1.0850, 5_000_000)
	require.NoError(t, svc.OnSnapshot(context.Background(), snap))

	_, ok := cache.snaps["EUR/USD"]
	assert.True(t, ok)
	assert.Empty(t, bus.published[AlertChannel])
}

func TestOnSnapshotPublishesAlertWhenUnsafe(t *testing.T) {
	cache := newMemCache()
	bus := newFakeBus()
	svc := newLiquidityService(cache, bus, nil)

	// Thin book fails the depth standard for a major.
	snap := book("EUR/USD", 1.0850, 100)
	require.NoError(t, svc.OnSnapshot(context.Background(), snap))

	require.Len(t, bus.published[AlertChannel], 1)
	assert.Contains(t, string(bus.published[AlertChannel][0]), "Low Depth")
}

func TestOnSnapshotNotifiesWhenUnsafe(t *testing.T) {
	sender := &fakeSender{}
	notifier := notify.NewNotifier([]notify.Sender{sender}, []string{notify.EventLiquidity}, discardLogger())
	svc := newLiquidityService(newMemCache(), newFakeBus(), notifier)

	snap := book("EUR/USD", 1.0850, 100)
	require.NoError(t, svc.OnSnapshot(context.Background(), snap))

	require.Len(t, sender.titles, 1)
	assert.Contains(t, sender.titles[0], "EUR/USD")
}

func TestCheckSymbolUnknownSymbol(t *testing.T) {
	svc := newLiquidityService(newMemCache(), newFakeBus(), nil)

	_, err := svc.CheckSymbol(context.Background(), "EUR/USD", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweepOncePublishesAndTracksFlips(t *testing.T) {
	cache := newMemCache()
	bus := newFakeBus()
	detector := liquidity.NewDetector(liquidity.NewValidator(liquidity.DefaultStandards()), nil)
	sweeper := NewToxicitySweeper(cache, detector, nil, bus, nil, time.Minute, discardLogger())
	ctx := context.Background()

	// Majority of majors thin: toxic.
	require.NoError(t, cache.SetSnapshot(ctx, book("EUR/USD", 1.0850, 100)))
	require.NoError(t, cache.SetSnapshot(ctx, book("GBP/USD", 1.2700, 100)))
	require.NoError(t, cache.SetSnapshot(ctx, book("USD/JPY", 149.50, 5_000_000)))

	require.NoError(t, sweeper.SweepOnce(ctx))
	require.Len(t, bus.published[ToxicityChannel], 1)
	require.NotNil(t, sweeper.lastToxic)
	assert.True(t, *sweeper.lastToxic)

	// Books recover: state flips back.
	require.NoError(t, cache.SetSnapshot(ctx, book("EUR/USD", 1.0850, 5_000_000)))
	require.NoError(t, cache.SetSnapshot(ctx, book("GBP/USD", 1.2700, 5_000_000)))

	require.NoError(t, sweeper.SweepOnce(ctx))
	assert.False(t, *sweeper.lastToxic)
}

type fakeReportStore struct {
	inserted []domain.ToxicityReport
}

func (f *fakeReportStore) Insert(_ context.Context, report domain.ToxicityReport) error {
	f.inserted = append(f.inserted, report)
	return nil
}

func (f *fakeReportStore) Latest(context.Context) (domain.ToxicityReport, error) {
	return domain.ToxicityReport{}, domain.ErrNotFound
}

func TestSweepOncePersistsCleanReportWithEmptyDetails(t *testing.T) {
	cache := newMemCache()
	reports := &fakeReportStore{}
	detector := liquidity.NewDetector(liquidity.NewValidator(liquidity.DefaultStandards()), nil)
	sweeper := NewToxicitySweeper(cache, detector, reports, newFakeBus(), nil, time.Minute, discardLogger())
	ctx := context.Background()

	require.NoError(t, cache.SetSnapshot(ctx, book("EUR/USD", 1.0850, 5_000_000)))
	require.NoError(t, cache.SetSnapshot(ctx, book("GBP/USD", 1.2700, 5_000_000)))

	require.NoError(t, sweeper.SweepOnce(ctx))

	require.Len(t, reports.inserted, 1)
	report := reports.inserted[0]
	assert.False(t, report.Toxic)
	// The details column is NOT NULL, so even a clean sweep must carry an
	// empty slice rather than nil.
	require.NotNil(t, report.Details)
	assert.Empty(t, report.Details)
}

type fakeEdgeStore struct {
	edges   []domain.CorrelationEdge
	deleted []string
}

func (f *fakeEdgeStore) Insert(_ context.Context, edge domain.CorrelationEdge) error {
	f.edges = append(f.edges, edge)
	return nil
}

func (f *fakeEdgeStore) ListOlderThan(_ context.Context, cutoff time.Time, limit int) ([]domain.CorrelationEdge, error) {
	var out []domain.CorrelationEdge
	for _, e := range f.edges {
		if e.ComputedAt.Before(cutoff) {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeEdgeStore) DeleteIDs(_ context.Context, ids []string) (int64, error) {
	f.deleted = append(f.deleted, ids...)
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	var kept []domain.CorrelationEdge
	var n int64
	for _, e := range f.edges {
		if _, ok := drop[e.ID]; ok {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.edges = kept
	return n, nil
}

func (f *fakeEdgeStore) LatestForPair(context.Context, string, string) (domain.CorrelationEdge, error) {
	return domain.CorrelationEdge{}, domain.ErrNotFound
}

type fakeBlob struct {
	objects map[string][]byte
}

func (f *fakeBlob) Put(_ context.Context, path string, data io.Reader, _ string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[path] = b
	return nil
}

func (f *fakeBlob) PutMultipart(ctx context.Context, path string, data io.Reader, _ int64) error {
	return f.Put(ctx, path, data, "")
}

func TestArchiverExportsAndDeletesOldEdges(t *testing.T) {
	store := &fakeEdgeStore{}
	old := time.Now().UTC().Add(-48 * time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(context.Background(), domain.CorrelationEdge{
			ID:         "old-" + string(rune('a'+i)),
			SymbolA:    "EUR/USD",
			SymbolB:    "GBP/USD",
			ComputedAt: old.Add(time.Duration(i) * time.Minute),
		}))
	}
	recent := domain.CorrelationEdge{ID: "recent", ComputedAt: time.Now().UTC()}
	require.NoError(t, store.Insert(context.Background(), recent))

	blob := &fakeBlob{}
	archiver := NewEdgeArchiver(store, blob, 24*time.Hour, time.Hour, discardLogger())

	require.NoError(t, archiver.RunOnce(context.Background()))

	require.Len(t, blob.objects, 1)
	for _, data := range blob.objects {
		assert.Contains(t, string(data), "old-a")
		assert.Contains(t, string(data), "old-c")
		assert.NotContains(t, string(data), "recent")
	}
	require.Len(t, store.edges, 1)
	assert.Equal(t, "recent", store.edges[0].ID)
}

func TestArchiverKeepsSameTimestampEdgesAcrossBatches(t *testing.T) {
	store := &fakeEdgeStore{}
	// The bridge stamps every edge of a tick with one timestamp, so a batch
	// boundary can fall inside a group that shares ComputedAt.
	stamp := time.Now().UTC().Add(-48 * time.Hour)
	for _, id := range []string{"old-a", "old-b", "old-c"} {
		require.NoError(t, store.Insert(context.Background(), domain.CorrelationEdge{
			ID:         id,
			SymbolA:    "EUR/USD",
			SymbolB:    "GBP/USD",
			ComputedAt: stamp,
		}))
	}
	require.NoError(t, store.Insert(context.Background(), domain.CorrelationEdge{
		ID:         "recent",
		ComputedAt: time.Now().UTC(),
	}))

	blob := &fakeBlob{}
	archiver := NewEdgeArchiver(store, blob, 24*time.Hour, time.Hour, discardLogger())
	archiver.batchSize = 2

	require.NoError(t, archiver.RunOnce(context.Background()))

	assert.Len(t, blob.objects, 2)
	assert.ElementsMatch(t, []string{"old-a", "old-b", "old-c"}, store.deleted)
	require.Len(t, store.edges, 1)
	assert.Equal(t, "recent", store.edges[0].ID)
}
