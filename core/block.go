// Package core implements the mining pipeline's shared data model: blocks,
// work units, and the state that hands work between the fetcher and the
// mining loop.
package core

import (
	"encoding/hex"
	"fmt"

	"lotusminer/core/header"
)

// Block is a candidate or submittable block: a fixed 160-byte header plus a
// variable-length body, together with the target the header must beat.
// target is stored in internal (reversed) endianness, matching the header's
// own internal hash fields.
type Block struct {
	Header header.Header
	Body   []byte
	Target [32]byte
}

// PrevHash returns the header's hashPrevBlock field, the value WorkFetcher
// compares across polls to detect a chain-tip switch.
func (b *Block) PrevHash() [32]byte {
	return b.Header.PrevBlock()
}

// Serialize returns header || body as raw bytes, the exact layout the
// Submitter hex-encodes for submitblock.
func (b *Block) Serialize() []byte {
	out := make([]byte, 0, header.Size+len(b.Body))
	out = append(out, b.Header.Bytes()...)
	out = append(out, b.Body...)
	return out
}

// Hex returns Serialize() as a lowercase hex string.
func (b *Block) Hex() string {
	return hex.EncodeToString(b.Serialize())
}

// CreateBlock decodes a getrawunsolvedblock response into a Block: blockHex
// is the full header+body payload, targetHex is 64 hex characters in the
// node's (display) byte order and is reversed to internal order on ingest.
func CreateBlock(blockHex, targetHex string) (*Block, error) {
	raw, err := hex.DecodeString(blockHex)
	if err != nil {
		return nil, fmt.Errorf("create_block: invalid blockhex: %w", err)
	}
	if len(raw) < header.Size {
		return nil, fmt.Errorf("create_block: blockhex too short: %d bytes, need >= %d", len(raw), header.Size)
	}

	targetRaw, err := hex.DecodeString(targetHex)
	if err != nil {
		return nil, fmt.Errorf("create_block: invalid target: %w", err)
	}
	if len(targetRaw) != 32 {
		return nil, fmt.Errorf("create_block: target must be 32 bytes, got %d", len(targetRaw))
	}

	hdr, err := header.FromBytes(raw[:header.Size])
	if err != nil {
		return nil, fmt.Errorf("create_block: %w", err)
	}

	var target [32]byte
	for i := 0; i < 32; i++ {
		target[i] = targetRaw[31-i]
	}

	return &Block{
		Header: hdr,
		Body:   append([]byte(nil), raw[header.Size:]...),
		Target: target,
	}, nil
}

// Work is the unit the mining loop dispatches to the GPU: a header and
// target snapshot plus the batch counter used to compute the kernel's
// offset argument.
type Work struct {
	Header   header.Header
	Target   [32]byte
	NonceIdx uint32
}

// NewWork derives a Work unit from a Block's header and target, starting at
// batch index 0.
func NewWork(b *Block) Work {
	return Work{Header: b.Header, Target: b.Target, NonceIdx: 0}
}
