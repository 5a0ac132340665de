package genesis

import (
	"fmt"
	"log"
	"time"

	"lotusminer/core"
)

// RefreshInterval is how often GenesisBuilder rewrites nTime into the block
// it is currently feeding the mining loop.
const RefreshInterval = 30 * time.Second

// Builder stands in for WorkFetcher in genesis-mining mode: instead of
// polling a node, it constructs the one canonical coinbase-only block
// locally and periodically refreshes its timestamp, installing the result
// into the same BlockState the mining loop already knows how to consume.
type Builder struct {
	state      *core.BlockState
	prevBlock  [32]byte
	epochBlock [32]byte
	bits       uint32
	height     uint32
}

// NewBuilder constructs a Builder targeting the given bits/height/parent.
func NewBuilder(state *core.BlockState, prevBlock, epochBlock [32]byte, bits uint32, height uint32) *Builder {
	return &Builder{
		state:      state,
		prevBlock:  prevBlock,
		epochBlock: epochBlock,
		bits:       bits,
		height:     height,
	}
}

// Run installs an initial block immediately, then refreshes nTime into a
// freshly built block every RefreshInterval until stop is closed.
func (g *Builder) Run(stop <-chan struct{}) {
	g.installFresh()
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.installFresh()
		}
	}
}

func (g *Builder) installFresh() {
	now := time.Now().Unix()
	b := BuildBlock(g.prevBlock, g.epochBlock, g.bits, now, 0, g.height)
	log.Printf("[GENESIS] installing fresh template at time=%d height=%d", now, g.height)
	g.state.InstallNextBlock(b)
}

// Report formats the line a successful genesis mine emits, ready to paste
// into a chainparams.cpp CreateGenesisBlock(...) call.
func Report(bits uint32, t int64, nonce uint64) string {
	return fmt.Sprintf("CreateGenesisBlock(0x%08x, %d, %dull);", bits, t, nonce)
}
