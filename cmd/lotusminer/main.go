package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"lotusminer/core"
	"lotusminer/core/config"
	"lotusminer/gpu"
	"lotusminer/metrics"
	"lotusminer/mining"
	"lotusminer/rpc"
)

func parseGPUIndices(csv string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(csv, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseKernelType(name string) config.KernelType {
	if strings.EqualFold(name, "poclbm") {
		return config.KernelPOCLBM
	}
	return config.KernelLotusOG
}

func main() {
	handleCLICommands()

	var (
		nodeURL       = flag.String("node-url", "http://127.0.0.1:10605", "Node JSON-RPC endpoint")
		nodeUser      = flag.String("node-user", "", "RPC basic-auth username")
		nodePass      = flag.String("node-pass", "", "RPC basic-auth password")
		minerAddr     = flag.String("miner-addr", "", "Address credited with found blocks")
		poolMining    = flag.Bool("pool", false, "Submit in pool mode")
		pollIntervalS = flag.Int("poll-interval-s", 5, "Seconds between unconditional polls")
		gpuList       = flag.String("gpu", "0", "Comma-separated OpenCL device indices, one engine each")
		kernelSize    = flag.Uint64("kernel-size", 1<<20, "Nonces dispatched per batch, power of two")
		localWorkSize = flag.Int("local-work-size", 256, "OpenCL local work size (LotusOG only)")
		innerIterSize = flag.Int("inner-iter-size", 1, "Nonces searched per work-item (LotusOG only)")
		kernelName    = flag.String("kernel", "lotusog", "Kernel variant: lotusog or poclbm")
		dataDir       = flag.String("data-dir", "data", "Share log directory")
		reportEvery   = flag.Duration("report-every", 10*time.Second, "Hashrate log interval")
	)
	flag.Parse()

	node := config.NodeSettings{
		URL:             *nodeURL,
		User:            *nodeUser,
		Password:        *nodePass,
		PollIntervalSec: *pollIntervalS,
		MinerAddr:       *minerAddr,
		PoolMining:      *poolMining,
	}
	if err := node.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	gpuIndices, err := parseGPUIndices(*gpuList)
	if err != nil {
		log.Fatalf("[FATAL] invalid --gpu list: %v", err)
	}

	log.Printf("Starting lotusminer daemon against %s (pool=%v)", node.URL, node.PoolMining)

	shareLog, err := metrics.OpenShareLog(*dataDir)
	if err != nil {
		log.Fatalf("[FATAL] open share log: %v", err)
	}
	defer shareLog.Close()

	client := rpc.NewClient(node.URL, node.User, node.Password, rpc.DefaultHTTPClient())
	state := core.NewBlockState()
	fetcher := rpc.NewWorkFetcher(client, state, node.MinerAddr, time.Duration(node.PollIntervalSec)*time.Second)
	submitter := rpc.NewSubmitter(client, node.MinerAddr, node.PoolMining, &metrics.Counters{}, shareLog)

	stop := make(chan struct{})
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[FETCH] PANIC: %v\n%s", r, debug.Stack())
			}
		}()
		fetcher.Run(stop)
	}()

	loops := make([]*mining.Loop, 0, len(gpuIndices))
	for _, idx := range gpuIndices {
		settings := config.MiningSettings{
			LocalWorkSize: *localWorkSize,
			InnerIterSize: *innerIterSize,
			KernelSize:    uint32(*kernelSize),
			GPUIndices:    []int{idx},
			KernelType:    parseKernelType(*kernelName),
		}

		engine, err := gpu.NewEngine(settings)
		if err != nil {
			log.Fatalf("[FATAL] gpu %d: %v", idx, err)
		}
		defer engine.Close()

		loop := mining.NewLoop(state, engine, submitter, fetcher, mining.ModePool, time.Now().UnixNano()+int64(idx))
		loops = append(loops, loop)

		go func(idx int, l *mining.Loop) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[MINE][gpu %d] PANIC: %v\n%s", idx, r, debug.Stack())
				}
			}()
			l.Run(stop)
		}(idx, loop)
	}

	go func() {
		ticker := time.NewTicker(*reportEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				now := time.Now()
				var total float64
				for _, l := range loops {
					total += l.HashrateHz(now)
				}
				log.Printf("[REPORT] hashrate=%s shares_found=%d",
					metrics.FormatHashrate(total), submitter.Counters().SharesFound())
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Printf("Shutting down...")
	close(stop)
}
