// Package mining implements the MiningLoop: the step that ties BlockState,
// the GPU search engine, and the Submitter together into a zero-stall
// producer/consumer pipeline.
package mining

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"lotusminer/core"
	"lotusminer/core/header"
	"lotusminer/metrics"
)

// Searcher performs one GPU search batch. Implemented by *gpu.Engine's
// Search method; kept as a primitive-typed interface here so the loop can
// be tested without OpenCL hardware.
type Searcher interface {
	Search(h header.Header, target [32]byte, nonceIdx uint32) (found bool, nonce uint64, err error)
	NumNoncesPerSearch() uint64
}

// Submitter hands a winning block off for submission. Implemented by
// rpc.Submitter in pool/solo mode, and by a genesis-mode reporter in
// genesis-mining mode.
type Submitter interface {
	Submit(b *core.Block)
}

// Fetcher requests an out-of-band refetch, used both to seed the very
// first iteration and to keep next_block populated after each consumption.
type Fetcher interface {
	FetchNow()
}

// Mode distinguishes pool mining (Run steps forever, fire-and-forget
// submissions) from solo mining (Run repeats one-batch Steps until the
// first hit, then returns).
type Mode int

const (
	ModePool Mode = iota
	ModeSolo
)

// Loop is one GPU's mining loop: it owns no OpenCL state itself (that
// lives in the Searcher), only the glue between BlockState, the searcher,
// and the submitter.
type Loop struct {
	state     *core.BlockState
	searcher  Searcher
	submitter Submitter
	fetcher   Fetcher
	mode      Mode
	counters  *metrics.Counters
	sampler   *metrics.Sampler

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewLoop constructs a Loop. rngSeed is exposed for deterministic tests;
// production callers should seed from crypto-quality entropy.
func NewLoop(state *core.BlockState, searcher Searcher, submitter Submitter, fetcher Fetcher, mode Mode, rngSeed int64) *Loop {
	return &Loop{
		state:     state,
		searcher:  searcher,
		submitter: submitter,
		fetcher:   fetcher,
		mode:      mode,
		counters:  &metrics.Counters{},
		sampler:   metrics.NewSampler(),
		rng:       rand.New(rand.NewSource(rngSeed)),
	}
}

// Counters exposes the loop's running totals for reporting.
func (l *Loop) Counters() *metrics.Counters { return l.counters }

// HashrateHz returns the current sampled hashrate estimate.
func (l *Loop) HashrateHz(now time.Time) float64 { return l.sampler.Rate(now) }

// Step runs exactly one mining batch: promote pending work, draw a nonce,
// dispatch the GPU, and handle a hit or a miss. It returns true if a nonce
// was found and submitted, the signal ModeSolo uses to know when to stop.
func (l *Loop) Step() bool {
	work, hasWork, promoted := l.state.PromoteNext()
	if !hasWork {
		l.fetcher.FetchNow()
		return false
	}
	if promoted {
		l.fetcher.FetchNow()
	}

	l.rngMu.Lock()
	bigNonce := l.rng.Uint64()
	l.rngMu.Unlock()
	work.Header.SetNonce(bigNonce)

	found, nonce, err := l.searcher.Search(work.Header, work.Target, work.NonceIdx)
	if err != nil {
		log.Printf("[MINE] gpu search failed: %v", err)
		return false
	}

	batchNonces := l.searcher.NumNoncesPerSearch()
	l.counters.AddNonces(batchNonces)
	l.sampler.Report(time.Now(), batchNonces)

	if !found {
		l.state.AdvanceNonceIdx(work.NonceIdx)
		return false
	}

	block := l.state.TakeCurrentBlockForSubmission()
	if block == nil {
		log.Printf("[MINE][BUG] found nonce but no current_block")
		return false
	}
	block.Header.SetNonce(nonce)

	log.Printf("[MINE] 🎉 candidate found at nonce=%#x, submitting", nonce)
	l.submitter.Submit(block)
	l.fetcher.FetchNow()

	return true
}

// Run drives Step forever in pool mode, or until the first hit in solo
// mode.
func (l *Loop) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		hit := l.Step()
		if l.mode == ModeSolo && hit {
			return
		}
	}
}
