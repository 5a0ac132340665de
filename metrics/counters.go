package metrics

import "sync/atomic"

// Counters holds the miner's lock-free running totals.
type Counters struct {
	nonces          atomic.Uint64
	sharesFound     atomic.Uint64
	hashesProcessed atomic.Uint64
}

// AddNonces accumulates num_nonces_per_search after a completed batch,
// win or lose.
func (c *Counters) AddNonces(n uint64) {
	c.nonces.Add(n)
	c.hashesProcessed.Add(n)
}

// TakeNoncesSinceLastReport atomically reads and resets the nonce counter.
// The mining loop does not use it: it reports each batch's nonces to its
// Sampler directly.
func (c *Counters) TakeNoncesSinceLastReport() uint64 {
	return c.nonces.Swap(0)
}

// IncShares records an accepted share. Never decremented.
func (c *Counters) IncShares() {
	c.sharesFound.Add(1)
}

// SharesFound returns the total accepted-share count.
func (c *Counters) SharesFound() uint64 {
	return c.sharesFound.Load()
}

// HashesProcessed returns the lifetime nonce-search total.
func (c *Counters) HashesProcessed() uint64 {
	return c.hashesProcessed.Load()
}
