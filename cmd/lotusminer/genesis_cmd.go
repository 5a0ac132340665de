package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"

	"lotusminer/core"
	"lotusminer/core/config"
	"lotusminer/genesis"
	"lotusminer/gpu"
	"lotusminer/mining"
)

// genesisReporter stands in for rpc.Submitter in genesis-mining mode: a hit
// is never submitted to a node, it's printed as a chainparams-ready line
// and the process exits.
type genesisReporter struct {
	bits uint32
}

func (g *genesisReporter) Submit(b *core.Block) {
	hash := b.Header.Hash()
	fmt.Println(genesis.Report(g.bits, b.Header.Time(), b.Header.Nonce()))
	fmt.Printf("hash (hex):    %s\n", hex.EncodeToString(hash[:]))
	fmt.Printf("hash (base58): %s\n", base58.Encode(hash[:]))
	os.Exit(0)
}

// noopFetcher satisfies mining.Fetcher: genesis.Builder refreshes the
// template on its own timer, so the mining loop's own fetch signal is a
// no-op here.
type noopFetcher struct{}

func (noopFetcher) FetchNow() {}

func handleGenesisCommand() {
	cmd := flag.NewFlagSet("genesis", flag.ExitOnError)
	bitsHex := cmd.String("bits", "0x1d00ffff", "nBits difficulty target")
	height := cmd.Uint("height", 0, "Block height to embed in the coinbase")
	prevHex := cmd.String("prev-block", strings.Repeat("00", 32), "Parent block hash, hex")
	epochHex := cmd.String("epoch-block", strings.Repeat("00", 32), "Epoch block hash, hex")
	gpuList := cmd.String("gpu", "0", "Comma-separated OpenCL device indices; only the first is used")
	kernelSize := cmd.Uint64("kernel-size", 1<<20, "Nonces dispatched per batch")
	localWorkSize := cmd.Int("local-work-size", 256, "OpenCL local work size (LotusOG only)")
	innerIterSize := cmd.Int("inner-iter-size", 1, "Nonces searched per work-item (LotusOG only)")
	kernelName := cmd.String("kernel", "lotusog", "Kernel variant: lotusog or poclbm")
	cmd.Parse(os.Args[2:])

	bits, err := strconv.ParseUint(strings.TrimPrefix(*bitsHex, "0x"), 16, 32)
	if err != nil {
		log.Fatalf("[FATAL] invalid --bits: %v", err)
	}

	prevBlock, err := parseHash32(*prevHex)
	if err != nil {
		log.Fatalf("[FATAL] invalid --prev-block: %v", err)
	}
	epochBlock, err := parseHash32(*epochHex)
	if err != nil {
		log.Fatalf("[FATAL] invalid --epoch-block: %v", err)
	}

	gpuIndices, err := parseGPUIndices(*gpuList)
	if err != nil || len(gpuIndices) == 0 {
		log.Fatalf("[FATAL] invalid --gpu list: %v", err)
	}

	settings := config.MiningSettings{
		LocalWorkSize: *localWorkSize,
		InnerIterSize: *innerIterSize,
		KernelSize:    uint32(*kernelSize),
		GPUIndices:    []int{gpuIndices[0]},
		KernelType:    parseKernelType(*kernelName),
	}

	engine, err := gpu.NewEngine(settings)
	if err != nil {
		log.Fatalf("[FATAL] gpu: %v", err)
	}
	defer engine.Close()

	state := core.NewBlockState()
	builder := genesis.NewBuilder(state, prevBlock, epochBlock, uint32(bits), uint32(*height))

	stop := make(chan struct{})
	defer close(stop)
	go builder.Run(stop)

	reporter := &genesisReporter{bits: uint32(bits)}
	loop := mining.NewLoop(state, engine, reporter, noopFetcher{}, mining.ModeSolo, 1)

	log.Printf("[GENESIS] mining bits=0x%08x height=%d", bits, *height)
	loop.Run(nil)
}

func parseHash32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
