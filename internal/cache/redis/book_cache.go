package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantfold/marketguard/internal/domain"
)

// bookSymbolsKey is the set of symbols that currently have a cached snapshot.
const bookSymbolsKey = "book:symbols"

// BookCache implements domain.BookCache. Each symbol's latest normalized
// snapshot is stored as JSON at "book:{symbol}" with an optional TTL, and the
// symbol is registered in a set so sweepers can enumerate the universe.
type BookCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBookCache creates a BookCache backed by the given Client. ttl of zero
// keeps snapshots until overwritten.
func NewBookCache(c *Client, ttl time.Duration) *BookCache {
	return &BookCache{rdb: c.Underlying(), ttl: ttl}
}

func bookKey(symbol string) string {
	return "book:" + symbol
}

// cachedLevel and cachedBook are the JSON wire form of a snapshot. Spread and
// Mid stay pointers so a one-sided book round-trips as "absent", not zero.
type cachedLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

type cachedBook struct {
	Symbol      string        `json:"symbol"`
	Timestamp   time.Time     `json:"timestamp"`
	Bids        []cachedLevel `json:"bids"`
	Asks        []cachedLevel `json:"asks"`
	Spread      *float64      `json:"spread,omitempty"`
	Mid         *float64      `json:"mid,omitempty"`
	DepthLevels int           `json:"depth_levels"`
}

// SetSnapshot stores the snapshot and registers its symbol.
func (bc *BookCache) SetSnapshot(ctx context.Context, snap domain.BookSnapshot) error {
	payload, err := json.Marshal(toCached(snap))
	if err != nil {
		return fmt.Errorf("redis: marshal book %s: %w", snap.Symbol, err)
	}

	pipe := bc.rdb.TxPipeline()
	pipe.Set(ctx, bookKey(snap.Symbol), payload, bc.ttl)
	pipe.SAdd(ctx, bookSymbolsKey, snap.Symbol)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set book %s: %w", snap.Symbol, err)
	}
	return nil
}

// GetSnapshot returns the latest snapshot for a symbol, or domain.ErrNotFound
// when none is cached.
func (bc *BookCache) GetSnapshot(ctx context.Context, symbol string) (domain.BookSnapshot, error) {
	raw, err := bc.rdb.Get(ctx, bookKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.BookSnapshot{}, domain.ErrNotFound
		}
		return domain.BookSnapshot{}, fmt.Errorf("redis: get book %s: %w", symbol, err)
	}

	var cached cachedBook
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("redis: decode book %s: %w", symbol, err)
	}
	return fromCached(cached), nil
}

// Symbols lists every symbol with a registered snapshot. Symbols whose
// snapshot has expired remain in the set until their next write; callers must
// tolerate ErrNotFound on subsequent GetSnapshot.
func (bc *BookCache) Symbols(ctx context.Context) ([]string, error) {
	symbols, err := bc.rdb.SMembers(ctx, bookSymbolsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list book symbols: %w", err)
	}
	return symbols, nil
}

func toCached(snap domain.BookSnapshot) cachedBook {
	out := cachedBook{
		Symbol:      snap.Symbol,
		Timestamp:   snap.Timestamp,
		Spread:      snap.Spread,
		Mid:         snap.Mid,
		DepthLevels: snap.DepthLevels,
	}
	for _, l := range snap.Bids {
		out.Bids = append(out.Bids, cachedLevel{Price: l.Price, Size: l.Size})
	}
	for _, l := range snap.Asks {
		out.Asks = append(out.Asks, cachedLevel{Price: l.Price, Size: l.Size})
	}
	return out
}

func fromCached(cached cachedBook) domain.BookSnapshot {
	out := domain.BookSnapshot{
		Symbol:      cached.Symbol,
		Timestamp:   cached.Timestamp,
		Spread:      cached.Spread,
		Mid:         cached.Mid,
		DepthLevels: cached.DepthLevels,
	}
	for _, l := range cached.Bids {
		out.Bids = append(out.Bids, domain.PriceLevel{Price: l.Price, Size: l.Size})
	}
	for _, l := range cached.Asks {
		out.Asks = append(out.Asks, domain.PriceLevel{Price: l.Price, Size: l.Size})
	}
	return out
}

// Compile-time interface check.
var _ domain.BookCache = (*BookCache)(nil)
