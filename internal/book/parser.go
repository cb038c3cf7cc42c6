// Package book normalizes raw level-2 order book payloads and computes depth
// aggregates (volume-within-range, VWAP-for-size) over the normalized form.
package book

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/quantfold/marketguard/internal/domain"
)

// rawLevel mirrors one {price, size} entry in the wire payload. json.Number
// rejects non-numeric values at decode time, which is exactly the malformed
// -input failure the contract requires.
type rawLevel struct {
	Price json.Number `json:"price"`
	Size  json.Number `json:"size"`
}

type rawBook struct {
	Symbol    string     `json:"symbol"`
	Timestamp string     `json:"timestamp"`
	Bids      []rawLevel `json:"bids"`
	Asks      []rawLevel `json:"asks"`
}

// Parser converts raw order book payloads into canonical BookSnapshots.
// The zero value is not usable; construct with NewParser.
type Parser struct {
	now func() time.Time
}

// NewParser creates a Parser that uses the wall clock for timestamp fallback.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// Parse normalizes a raw JSON book payload. A missing symbol or timestamp, or
// a non-numeric or negative price/size in any level, fails the whole parse
// with an error wrapping domain.ErrUnparseable; the caller never receives a
// partially built snapshot.
//
// An unparseable (but present) timestamp does NOT fail the parse: it falls
// back to ingestion time.
func (p *Parser) Parse(payload []byte) (domain.BookSnapshot, error) {
	var raw rawBook
	if err := json.Unmarshal(payload, &raw); err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("book: decode: %v: %w", err, domain.ErrUnparseable)
	}
	if strings.TrimSpace(raw.Symbol) == "" {
		return domain.BookSnapshot{}, fmt.Errorf("book: missing symbol: %w", domain.ErrUnparseable)
	}
	if strings.TrimSpace(raw.Timestamp) == "" {
		return domain.BookSnapshot{}, fmt.Errorf("book: missing timestamp: %w", domain.ErrUnparseable)
	}

	bids, err := parseLevels(raw.Bids)
	if err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("book: bids: %v: %w", err, domain.ErrUnparseable)
	}
	asks, err := parseLevels(raw.Asks)
	if err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("book: asks: %v: %w", err, domain.ErrUnparseable)
	}

	// Best bid first, best ask first, independent of input order.
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })

	snap := domain.BookSnapshot{
		Symbol:      raw.Symbol,
		Timestamp:   p.parseTimestamp(raw.Timestamp),
		Bids:        bids,
		Asks:        asks,
		DepthLevels: len(bids) + len(asks),
	}

	if len(bids) > 0 && len(asks) > 0 {
		spread := asks[0].Price - bids[0].Price
		mid := (asks[0].Price + bids[0].Price) / 2
		snap.Spread = &spread
		snap.Mid = &mid
	}

	return snap, nil
}

// parseTimestamp accepts ISO-8601 with a trailing Z or numeric offset. On
// failure it falls back to ingestion time rather than failing the parse.
func (p *Parser) parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return p.now().UTC()
}

func parseLevels(raw []rawLevel) ([]domain.PriceLevel, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	levels := make([]domain.PriceLevel, 0, len(raw))
	for i, l := range raw {
		price, err := l.Price.Float64()
		if err != nil {
			return nil, fmt.Errorf("level %d: bad price %q", i, l.Price.String())
		}
		size, err := l.Size.Float64()
		if err != nil {
			return nil, fmt.Errorf("level %d: bad size %q", i, l.Size.String())
		}
		if size < 0 {
			return nil, fmt.Errorf("level %d: negative size %v", i, size)
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}
	return levels, nil
}
