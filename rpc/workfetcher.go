package rpc

import (
	"log"
	"time"

	"lotusminer/core"
)

// PrefetchBackoff bounds how often the prefetcher retries while
// next_block remains empty.
const PrefetchBackoff = 5 * time.Millisecond

// WorkFetcher periodically polls the node for a fresh candidate block and
// installs it into BlockState. A prefetcher additionally fires whenever
// next_block is empty, so fetch latency stays hidden behind batch latency.
type WorkFetcher struct {
	client    *Client
	state     *core.BlockState
	minerAddr string
	pollEvery time.Duration

	fetchNow chan struct{}
}

// NewWorkFetcher constructs a WorkFetcher. pollEvery must be positive.
func NewWorkFetcher(client *Client, state *core.BlockState, minerAddr string, pollEvery time.Duration) *WorkFetcher {
	return &WorkFetcher{
		client:    client,
		state:     state,
		minerAddr: minerAddr,
		pollEvery: pollEvery,
		fetchNow:  make(chan struct{}, 1),
	}
}

// FetchNow requests an out-of-band poll at the next opportunity. Safe to
// call from any goroutine; non-blocking.
func (w *WorkFetcher) FetchNow() {
	select {
	case w.fetchNow <- struct{}{}:
	default:
	}
}

// Poll runs exactly one fetch-and-install cycle. Returns an error only for
// logging purposes — all error paths leave state untouched, matching the
// "never fatal" failure semantics in the component contract.
func (w *WorkFetcher) Poll() error {
	raw, err := w.client.GetRawUnsolvedBlock(w.minerAddr)
	if err != nil {
		if _, unauthorized := err.(ErrUnauthorized); unauthorized {
			log.Printf("[FETCH] unauthorized: check node user/password")
		}
		log.Printf("[FETCH] poll failed: %v", err)
		return err
	}

	block, err := core.CreateBlock(raw.BlockHex, raw.Target)
	if err != nil {
		log.Printf("[FETCH] discarding malformed candidate: %v", err)
		return err
	}

	w.state.InstallNextBlock(block)
	return nil
}

// Run drives the periodic poll task and the prefetcher concurrently until
// stop is closed. The periodic ticker fires every pollEvery; the
// prefetcher fires whenever FetchNow is signalled or next_block is empty,
// backing off PrefetchBackoff between checks to avoid busy-looping the
// node.
func (w *WorkFetcher) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()

	backoff := time.NewTicker(PrefetchBackoff)
	defer backoff.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Poll()
		case <-w.fetchNow:
			w.Poll()
		case <-backoff.C:
			if w.state.NextBlockEmpty() {
				w.Poll()
			}
		}
	}
}
