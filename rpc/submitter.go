package rpc

import (
	"encoding/json"
	"log"
	"time"

	"lotusminer/core"
	"lotusminer/metrics"
)

// Submitter serializes a winning block and calls submitblock, interpreting
// the response per the result-interpretation table. Rejections are logged
// but never halt mining.
type Submitter struct {
	client     *Client
	minerAddr  string
	poolMining bool
	counters   *metrics.Counters
	shareLog   *metrics.ShareLog // optional; nil disables durable logging
}

// NewSubmitter constructs a Submitter. shareLog may be nil.
func NewSubmitter(client *Client, minerAddr string, poolMining bool, counters *metrics.Counters, shareLog *metrics.ShareLog) *Submitter {
	return &Submitter{
		client:     client,
		minerAddr:  minerAddr,
		poolMining: poolMining,
		counters:   counters,
		shareLog:   shareLog,
	}
}

// Counters exposes the running totals Submit updates, for reporting.
func (s *Submitter) Counters() *metrics.Counters { return s.counters }

// Submit serializes header||body as hex and calls submitblock, interpreting
// the result asynchronously relative to the caller so a submission never
// blocks the next GPU batch.
func (s *Submitter) Submit(b *core.Block) {
	go s.submitSync(b)
}

func (s *Submitter) submitSync(b *core.Block) {
	blockHex := b.Hex()
	result, rpcErr, err := s.client.SubmitBlock(blockHex, s.minerAddr, s.poolMining)
	height := b.Header.Height()
	nonce := b.Header.Nonce()

	if err != nil {
		log.Printf("[SUBMIT] submission failed: %v", err)
		s.record(height, nonce, metrics.ShareRejected, err.Error())
		return
	}

	switch {
	case len(rpcErr) > 0 && string(rpcErr) != "null":
		log.Printf("[SUBMIT] rejected: %s", rpcErr)
		s.record(height, nonce, metrics.ShareRejected, string(rpcErr))

	case len(result) == 0 || string(result) == "null" || string(result) == `""`:
		log.Printf("[SUBMIT] ✅ share accepted at height %d", height)
		s.counters.IncShares()
		s.record(height, nonce, metrics.ShareAccepted, "")

	default:
		var resultStr string
		if jsonErr := json.Unmarshal(result, &resultStr); jsonErr != nil {
			log.Printf("[SUBMIT] unparseable result %s: %v", result, jsonErr)
			s.record(height, nonce, metrics.ShareRejected, "unparseable result")
			return
		}
		if resultStr == "inconclusive" {
			log.Printf("[SUBMIT] ⚠️  inconclusive result, likely orphan race")
			s.record(height, nonce, metrics.ShareOrphan, resultStr)
			return
		}
		log.Printf("[SUBMIT] rejected: %s", resultStr)
		s.record(height, nonce, metrics.ShareRejected, resultStr)
	}
}

func (s *Submitter) record(height uint32, nonce uint64, outcome metrics.ShareOutcome, reason string) {
	if s.shareLog == nil {
		return
	}
	rec := metrics.ShareRecord{
		Height:  height,
		Nonce:   nonce,
		Outcome: outcome,
		Reason:  reason,
	}
	rec.At = time.Now()
	if err := s.shareLog.Append(rec); err != nil {
		log.Printf("[SUBMIT] sharelog append failed: %v", err)
	}
}
