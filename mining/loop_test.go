package mining

import (
	"testing"

	"lotusminer/core"
	"lotusminer/core/header"
)

type fakeSearcher struct {
	found        bool
	nonce        uint64
	err          error
	calls        int
	noncesPerHit uint64
}

func (f *fakeSearcher) Search(h header.Header, target [32]byte, nonceIdx uint32) (bool, uint64, error) {
	f.calls++
	return f.found, f.nonce, f.err
}

func (f *fakeSearcher) NumNoncesPerSearch() uint64 { return f.noncesPerHit }

type fakeSubmitter struct {
	submitted []*core.Block
}

func (f *fakeSubmitter) Submit(b *core.Block) {
	f.submitted = append(f.submitted, b)
}

type fakeFetcher struct {
	calls int
}

func (f *fakeFetcher) FetchNow() { f.calls++ }

func stateWithWork() *core.BlockState {
	s := core.NewBlockState()
	var hdr header.Header
	s.InstallNextBlock(&core.Block{Header: hdr})
	return s
}

func TestStepNoWorkTriggersFetch(t *testing.T) {
	state := core.NewBlockState()
	searcher := &fakeSearcher{noncesPerHit: 1000}
	submitter := &fakeSubmitter{}
	fetcher := &fakeFetcher{}
	loop := NewLoop(state, searcher, submitter, fetcher, ModePool, 1)

	if loop.Step() {
		t.Fatalf("expected no hit with no work available")
	}
	if fetcher.calls == 0 {
		t.Fatalf("expected FetchNow to be called when no work is available")
	}
	if searcher.calls != 0 {
		t.Fatalf("searcher should not be invoked with no work")
	}
}

func TestStepNoHitAdvancesNonceIdx(t *testing.T) {
	state := stateWithWork()
	searcher := &fakeSearcher{found: false, noncesPerHit: 500}
	submitter := &fakeSubmitter{}
	fetcher := &fakeFetcher{}
	loop := NewLoop(state, searcher, submitter, fetcher, ModePool, 1)

	if loop.Step() {
		t.Fatalf("expected no hit")
	}
	if loop.Counters().HashesProcessed() != 500 {
		t.Fatalf("HashesProcessed = %d, want 500", loop.Counters().HashesProcessed())
	}
	if work, _, _ := state.PromoteNext(); work.NonceIdx != 1 {
		t.Fatalf("NonceIdx after a miss = %d, want 1", work.NonceIdx)
	}
	if len(submitter.submitted) != 0 {
		t.Fatalf("expected nothing submitted on a miss")
	}
}

func TestStepHitSubmitsCandidate(t *testing.T) {
	state := stateWithWork()
	searcher := &fakeSearcher{found: true, nonce: 0xdeadbeef, noncesPerHit: 500}
	submitter := &fakeSubmitter{}
	fetcher := &fakeFetcher{}
	loop := NewLoop(state, searcher, submitter, fetcher, ModePool, 1)

	if !loop.Step() {
		t.Fatalf("expected a hit")
	}
	if len(submitter.submitted) != 1 {
		t.Fatalf("expected exactly one submission")
	}
	if got := submitter.submitted[0].Header.Nonce(); got != 0xdeadbeef {
		t.Fatalf("submitted header nonce = %#x, want %#x", got, 0xdeadbeef)
	}
}

func TestSoloModeStopsAfterHit(t *testing.T) {
	state := stateWithWork()
	searcher := &fakeSearcher{found: true, nonce: 1, noncesPerHit: 1}
	submitter := &fakeSubmitter{}
	fetcher := &fakeFetcher{}
	loop := NewLoop(state, searcher, submitter, fetcher, ModeSolo, 1)

	done := make(chan struct{})
	go func() {
		loop.Run(nil)
		close(done)
	}()
	<-done // Run must return on its own once solo mode hits
}
