package feed

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/marketguard/internal/book"
	"github.com/quantfold/marketguard/internal/domain"
)

type fakeBookSink struct {
	snaps []domain.BookSnapshot
}

func (f *fakeBookSink) OnSnapshot(_ context.Context, snap domain.BookSnapshot) error {
	f.snaps = append(f.snaps, snap)
	return nil
}

type fakeTickSink struct {
	ticks []domain.Tick
}

func (f *fakeTickSink) OnTick(_ context.Context, tick domain.Tick) {
	f.ticks = append(f.ticks, tick)
}

func newTestDispatcher() (*Dispatcher, *fakeBookSink, *fakeTickSink) {
	books := &fakeBookSink{}
	ticks := &fakeTickSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(book.NewParser(), books, ticks, logger), books, ticks
}

func TestHandleBookRoutesSnapshot(t *testing.T) {
	d, books, _ := newTestDispatcher()

	payload := []byte(`{
		"symbol": "EUR/USD",
		"timestamp": "2026-08-29T12:00:00Z",
		"bids": [{"price": 1.0850, "size": 1000000}],
		"asks": [{"price": 1.0851, "size": 1000000}]
	}`)

	require.NoError(t, d.HandleBook(context.Background(), payload))
	require.Len(t, books.snaps, 1)
	assert.Equal(t, "EUR/USD", books.snaps[0].Symbol)
	assert.NotNil(t, books.snaps[0].Mid)
}

func TestHandleBookSkipsUnparseable(t *testing.T) {
	d, books, _ := newTestDispatcher()

	// Missing symbol: logged and skipped, not an error that kills the loop.
	err := d.HandleBook(context.Background(), []byte(`{"timestamp": "2026-08-29T12:00:00Z"}`))
	require.NoError(t, err)
	assert.Empty(t, books.snaps)
}

func TestHandleTickRoutesTick(t *testing.T) {
	d, _, ticks := newTestDispatcher()

	payload := []byte(`{"symbol": "USD/JPY", "price": 149.25, "timestamp": "2026-08-29T12:00:00Z"}`)
	require.NoError(t, d.HandleTick(context.Background(), payload))

	require.Len(t, ticks.ticks, 1)
	assert.Equal(t, "USD/JPY", ticks.ticks[0].Symbol)
	assert.Equal(t, 149.25, ticks.ticks[0].Price)
	assert.Equal(t, time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), ticks.ticks[0].Timestamp)
}

func TestHandleTickSkipsIncomplete(t *testing.T) {
	d, _, ticks := newTestDispatcher()
	ctx := context.Background()

	require.NoError(t, d.HandleTick(ctx, []byte(`{"price": 1.0}`)))
	require.NoError(t, d.HandleTick(ctx, []byte(`{"symbol": "EUR/USD"}`)))
	require.NoError(t, d.HandleTick(ctx, []byte(`garbage`)))
	assert.Empty(t, ticks.ticks)
}
