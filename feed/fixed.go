// Package feed provides the price-feed capability consumed by the engine.
// Every implementation reports 8-decimal USD prices and performs no
// staleness or sanity checking; trust in the source is an explicit protocol
// assumption.
package feed

import (
	"context"
	"math/big"
	"sync"
)

// Fixed is a settable in-process feed, used in tests and on deployments that
// pin prices manually.
type Fixed struct {
	mu     sync.RWMutex
	answer *big.Int
}

// NewFixed returns a feed pinned to answer (8 fractional decimals).
func NewFixed(answer *big.Int) *Fixed {
	return &Fixed{answer: new(big.Int).Set(answer)}
}

// SetAnswer repins the feed.
func (f *Fixed) SetAnswer(answer *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answer = new(big.Int).Set(answer)
}

// LatestAnswer returns the pinned price.
func (f *Fixed) LatestAnswer(_ context.Context) (*big.Int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return new(big.Int).Set(f.answer), nil
}
