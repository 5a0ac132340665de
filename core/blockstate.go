package core

import (
	"log"
	"sync"
)

// BlockState is the coarse-locked handoff point between WorkFetcher and
// MiningLoop. A single mutex protects all four fields; critical sections
// are kept short (promote next->current, take current for submission) and
// never held across network or GPU I/O.
type BlockState struct {
	mu sync.Mutex

	currentWork  *Work
	currentBlock *Block
	nextBlock    *Block
	extraNonce   uint64
}

// NewBlockState returns an empty BlockState ready for WorkFetcher to fill.
func NewBlockState() *BlockState {
	return &BlockState{}
}

// InstallNextBlock is called by WorkFetcher after a successful poll. It
// logs a chain-tip switch whenever the current block's prev-hash differs
// from the incoming block's (a second install from the same new tip before
// the mining loop promotes it logs the switch again), logs chain-tip
// started whenever no current block is set, and bumps extra_nonce. extra_nonce is tracked for metrics only; per the kernel ABI
// it is never spliced into the header.
func (s *BlockState) InstallNextBlock(b *Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.currentBlock == nil:
		log.Printf("[STATE] chain-tip started at prevhash=%x", b.PrevHash())
	case s.currentBlock.PrevHash() != b.PrevHash():
		log.Printf("[STATE] 🔀 switched to new chain tip: prevhash=%x", b.PrevHash())
	}

	s.extraNonce++
	s.nextBlock = b
}

// ExtraNonce returns the current extra-nonce counter, for metrics reporting.
func (s *BlockState) ExtraNonce() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extraNonce
}

// PromoteNext promotes next_block to current_block if one is pending,
// rebuilding current_work from it, then clones out the current Work. It
// reports whether a promotion happened (so the caller knows to spawn a
// background prefetch) and whether any work at all is available.
func (s *BlockState) PromoteNext() (work Work, hasWork bool, promoted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextBlock != nil {
		s.currentBlock = s.nextBlock
		nw := NewWork(s.currentBlock)
		s.currentWork = &nw
		s.nextBlock = nil
		promoted = true
	}

	if s.currentWork == nil {
		return Work{}, false, promoted
	}

	// Safety valve against host-side nonce exhaustion on a single template:
	// a batch index this high means we've searched the space many times
	// over without a new template arriving.
	if s.currentWork.NonceIdx > 1000 {
		s.currentWork.NonceIdx = 0
	}

	return *s.currentWork, true, promoted
}

// AdvanceNonceIdx increments the shared current_work's batch counter after
// a no-hit batch, only if its counter still equals afterNonceIdx. The check
// is on the counter alone: a newer work promoted since then is incremented
// too when its counter happens to hold the same value.
func (s *BlockState) AdvanceNonceIdx(afterNonceIdx uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentWork != nil && s.currentWork.NonceIdx == afterNonceIdx {
		s.currentWork.NonceIdx++
	}
}

// TakeCurrentBlockForSubmission removes current_block from the state for
// serialization by the Submitter, returning nil if none is set — the
// "found nonce but no current_block" invariant-violation case, logged by
// the caller as a bug rather than treated as fatal.
func (s *BlockState) TakeCurrentBlockForSubmission() *Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.currentBlock
	s.currentBlock = nil
	s.currentWork = nil
	return b
}

// NextBlockEmpty reports whether next_block is unset, the gate the
// prefetcher task polls in pool mode.
func (s *BlockState) NextBlockEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextBlock == nil
}
