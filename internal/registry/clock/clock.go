// Package clock supplies the logical block height used to stamp proofs.
package clock

import (
	"context"
	"sync/atomic"
	"time"

	"proofregistry/pkg/requestcontext"
)

// Manual is a height that only moves when told to.
type Manual struct {
	height atomic.Uint64
}

// NewManual starts at height.
func NewManual(height uint64) *Manual {
	m := &Manual{}
	m.height.Store(height)
	return m
}

func (m *Manual) Height(_ context.Context) uint64 {
	return m.height.Load()
}

// Advance moves the height forward by n blocks and returns the new height.
func (m *Manual) Advance(n uint64) uint64 {
	return m.height.Add(n)
}

// Set jumps to height.
func (m *Manual) Set(height uint64) {
	m.height.Store(height)
}

// Interval derives height from wall time: one block per interval since
// genesis. Requests share one height because the time comes from the request
// context.
type Interval struct {
	genesis  time.Time
	interval time.Duration
}

// NewInterval panics on a non-positive interval.
func NewInterval(genesis time.Time, interval time.Duration) *Interval {
	if interval <= 0 {
		panic("clock: block interval must be positive")
	}
	return &Interval{genesis: genesis, interval: interval}
}

// Height is zero before genesis.
func (c *Interval) Height(ctx context.Context) uint64 {
	elapsed := requestcontext.Now(ctx).Sub(c.genesis)
	if elapsed <= 0 {
		return 0
	}
	return uint64(elapsed / c.interval)
}
