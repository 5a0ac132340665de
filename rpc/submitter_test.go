package rpc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lotusminer/core"
	"lotusminer/core/header"
	"lotusminer/metrics"
)

func blockForSubmit(height uint32) *core.Block {
	var h header.Header
	h.SetHeight(height)
	h.SetNonce(0x1122)
	return &core.Block{Header: h}
}

func waitForCondition(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition never became true")
}

func TestSubmitAcceptedIncrementsShares(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":"miner","result":null}`))
	}))
	defer srv.Close()

	counters := &metrics.Counters{}
	s := NewSubmitter(NewClient(srv.URL, "", "", nil), "addr1", false, counters, nil)
	s.Submit(blockForSubmit(10))

	waitForCondition(t, func() bool { return counters.SharesFound() == 1 })
}

func TestSubmitInconclusiveDoesNotIncrementShares(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":"miner","result":"inconclusive"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	shareLog, err := metrics.OpenShareLog(dir)
	if err != nil {
		t.Fatalf("OpenShareLog: %v", err)
	}
	defer shareLog.Close()

	counters := &metrics.Counters{}
	s := NewSubmitter(NewClient(srv.URL, "", "", nil), "addr1", false, counters, shareLog)
	s.Submit(blockForSubmit(11))

	time.Sleep(20 * time.Millisecond)
	if counters.SharesFound() != 0 {
		t.Fatalf("inconclusive result must not increment shares_found, got %d", counters.SharesFound())
	}
}

func TestSubmitRejectedDoesNotIncrementShares(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":"miner","result":"bad-nonce"}`))
	}))
	defer srv.Close()

	counters := &metrics.Counters{}
	s := NewSubmitter(NewClient(srv.URL, "", "", nil), "addr1", false, counters, nil)
	s.Submit(blockForSubmit(12))

	time.Sleep(20 * time.Millisecond)
	if counters.SharesFound() != 0 {
		t.Fatalf("rejected result must not increment shares_found, got %d", counters.SharesFound())
	}
}

func TestSubmitRecordsToShareLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":"miner","result":null}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	shareLog, err := metrics.OpenShareLog(dir)
	if err != nil {
		t.Fatalf("OpenShareLog: %v", err)
	}
	defer shareLog.Close()

	counters := &metrics.Counters{}
	s := NewSubmitter(NewClient(srv.URL, "", "", nil), "addr1", false, counters, shareLog)
	s.Submit(blockForSubmit(13))

	waitForCondition(t, func() bool {
		n, _ := shareLog.CountAccepted()
		return n == 1
	})
}
