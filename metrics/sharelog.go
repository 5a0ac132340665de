package metrics

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/crypto/sha3"
)

// ShareOutcome classifies how a submission was ultimately resolved.
type ShareOutcome string

const (
	ShareAccepted ShareOutcome = "accepted"
	ShareOrphan   ShareOutcome = "orphan"
	ShareRejected ShareOutcome = "rejected"
)

// ShareRecord is one durable entry in the share log.
type ShareRecord struct {
	At      time.Time    `json:"at"`
	Height  uint32       `json:"height"`
	Nonce   uint64       `json:"nonce"`
	Outcome ShareOutcome `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
}

// recordKey derives a sha3-256 content-address for a share record from its
// timestamp, nonce and outcome. (Block hashes themselves are double
// SHA-256; sha3 is used only here.)
func recordKey(r ShareRecord) []byte {
	buf := make([]byte, 0, 64)
	var t [8]byte
	binary.LittleEndian.PutUint64(t[:], uint64(r.At.UnixNano()))
	buf = append(buf, t[:]...)
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], r.Nonce)
	buf = append(buf, n[:]...)
	buf = append(buf, []byte(r.Outcome)...)
	sum := sha3.Sum256(buf)
	return append([]byte("share:"), sum[:]...)
}

// ShareLog is an append-only, Badger-backed history of submitted shares,
// the miner's durable memory of "what have I found" across restarts. It
// repurposes a block-storage shape for a far smaller, append-only record
// type since this miner keeps no chain state of its own.
type ShareLog struct {
	db *badger.DB
}

// OpenShareLog opens (creating if necessary) the share log under dataDir.
func OpenShareLog(dataDir string) (*ShareLog, error) {
	dbPath := filepath.Join(dataDir, "sharelog")
	db, err := badger.Open(badger.DefaultOptions(dbPath).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("sharelog: open: %w", err)
	}
	return &ShareLog{db: db}, nil
}

// Append records a new share outcome.
func (l *ShareLog) Append(r ShareRecord) error {
	val, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("sharelog: marshal: %w", err)
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(r), val)
	})
}

// CountAccepted returns the total number of accepted shares ever recorded,
// surviving process restarts — the durable counterpart to the in-memory
// shares_found atomic.
func (l *ShareLog) CountAccepted() (uint64, error) {
	var count uint64
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("share:")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec ShareRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			if rec.Outcome == ShareAccepted {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sharelog: count accepted: %w", err)
	}
	return count, nil
}

// Close releases the underlying database handle.
func (l *ShareLog) Close() error {
	return l.db.Close()
}
