// Package analytics maintains per-symbol rolling price windows and computes
// pairwise correlations over them, fanning results out to a graph sink.
package analytics

import (
	"sync"
)

// DefaultWindowSize covers 24 hours at 5-minute resolution.
const DefaultWindowSize = 288

// Windows maintains a fixed-capacity ring buffer of recent prices per symbol.
// Buffers are independent across symbols; a single mutex serializes all
// mutation so a reader never observes a buffer mid-eviction.
type Windows struct {
	size    int
	mu      sync.RWMutex
	buffers map[string]*ring
}

// NewWindows creates a Windows service with the given per-symbol capacity.
// Sizes below 1 fall back to DefaultWindowSize.
func NewWindows(size int) *Windows {
	if size < 1 {
		size = DefaultWindowSize
	}
	return &Windows{
		size:    size,
		buffers: make(map[string]*ring),
	}
}

// Size returns the fixed per-symbol capacity.
func (w *Windows) Size() int { return w.size }

// AddPrice appends a price observation for the symbol, evicting the oldest
// point once the buffer is full. It never errors.
func (w *Windows) AddPrice(symbol string, price float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	buf, ok := w.buffers[symbol]
	if !ok {
		buf = newRing(w.size)
		w.buffers[symbol] = buf
	}
	buf.push(price)
}

// History returns the symbol's prices oldest-to-newest. An unseen symbol
// yields an empty slice, not an error. The returned slice is a copy and safe
// to mutate.
func (w *Windows) History(symbol string) []float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	buf, ok := w.buffers[symbol]
	if !ok {
		return nil
	}
	return buf.snapshot()
}

// Count returns the number of points currently buffered for the symbol.
func (w *Windows) Count(symbol string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if buf, ok := w.buffers[symbol]; ok {
		return buf.count
	}
	return 0
}

// Symbols returns every symbol that currently has at least one point.
func (w *Windows) Symbols() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, 0, len(w.buffers))
	for sym, buf := range w.buffers {
		if buf.count > 0 {
			out = append(out, sym)
		}
	}
	return out
}

// Clear drops the buffer for one symbol.
func (w *Windows) Clear(symbol string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.buffers, symbol)
}

// ClearAll drops every buffer. Used primarily for test isolation.
func (w *Windows) ClearAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffers = make(map[string]*ring)
}

// ring is a fixed-capacity FIFO of float64 prices.
type ring struct {
	data  []float64
	head  int // index of the oldest element
	count int
}

func newRing(capacity int) *ring {
	return &ring{data: make([]float64, capacity)}
}

func (r *ring) push(v float64) {
	if r.count < len(r.data) {
		r.data[(r.head+r.count)%len(r.data)] = v
		r.count++
		return
	}
	// Full: overwrite the oldest slot and advance.
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
}

func (r *ring) snapshot() []float64 {
	out := make([]float64, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.data[(r.head+i)%len(r.data)]
	}
	return out
}
