// Package header defines the canonical 160-byte block header for Lotus.
package header

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Size is the fixed length, in bytes, of a serialized Lotus block header.
const Size = 160

// Field offsets within the 160-byte layout. Bytes [44:52) hold the 64-bit
// big-nonce: the GPU kernel mutates the low 32 bits at [44:48), the host
// assigns the high 32 bits at [48:52) once per search batch.
const (
	offPrevBlock    = 0
	offBits         = 32
	offTime         = 36
	offReserved     = 42
	offNonce        = 44
	offVersion      = 52
	offSize         = 53
	offHeight       = 60
	offEpochBlock   = 64
	offMerkleRoot   = 96
	offExtendedMeta = 128
)

// Header is a fixed-size byte array rather than a field struct so that
// carving out the partial header for the GPU kernel and splicing in a new
// low-nonce never requires an intermediate encode/decode step.
type Header [Size]byte

// FromBytes copies the first Size bytes of b into a new Header.
func FromBytes(b []byte) (Header, error) {
	var h Header
	if len(b) < Size {
		return h, fmt.Errorf("header: need %d bytes, got %d", Size, len(b))
	}
	copy(h[:], b[:Size])
	return h, nil
}

// Bytes returns the header's underlying 160-byte slice.
func (h *Header) Bytes() []byte { return h[:] }

func (h *Header) PrevBlock() [32]byte {
	var out [32]byte
	copy(out[:], h[offPrevBlock:offPrevBlock+32])
	return out
}

func (h *Header) SetPrevBlock(hash [32]byte) {
	copy(h[offPrevBlock:offPrevBlock+32], hash[:])
}

func (h *Header) Bits() uint32 {
	return binary.LittleEndian.Uint32(h[offBits : offBits+4])
}

func (h *Header) SetBits(bits uint32) {
	binary.LittleEndian.PutUint32(h[offBits:offBits+4], bits)
}

// Time returns the 48-bit Unix-second timestamp stored in vTime.
func (h *Header) Time() int64 {
	var buf [8]byte
	copy(buf[:6], h[offTime:offTime+6])
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

func (h *Header) SetTime(t int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(t))
	copy(h[offTime:offTime+6], buf[:6])
}

func (h *Header) Reserved() uint16 {
	return binary.LittleEndian.Uint16(h[offReserved : offReserved+2])
}

func (h *Header) SetReserved(v uint16) {
	binary.LittleEndian.PutUint16(h[offReserved:offReserved+2], v)
}

// Nonce returns the full 64-bit big-nonce at bytes [44:52).
func (h *Header) Nonce() uint64 {
	return binary.LittleEndian.Uint64(h[offNonce : offNonce+8])
}

// SetNonce writes the full 64-bit big-nonce, both halves.
func (h *Header) SetNonce(n uint64) {
	binary.LittleEndian.PutUint64(h[offNonce:offNonce+8], n)
}

// LowNonce returns the GPU-mutated low 32 bits of the big-nonce.
func (h *Header) LowNonce() uint32 {
	return binary.LittleEndian.Uint32(h[offNonce : offNonce+4])
}

// SetLowNonce overwrites only the low 32 bits at [44:48), leaving the
// host-chosen high 32 bits at [48:52) untouched.
func (h *Header) SetLowNonce(low uint32) {
	binary.LittleEndian.PutUint32(h[offNonce:offNonce+4], low)
}

// HighNonce returns the host-chosen high 32 bits of the big-nonce.
func (h *Header) HighNonce() uint32 {
	return binary.LittleEndian.Uint32(h[offNonce+4 : offNonce+8])
}

// SetHighNonce overwrites the high 32 bits at [48:52), the per-batch value
// the host draws at random before dispatching a GPU search.
func (h *Header) SetHighNonce(high uint32) {
	binary.LittleEndian.PutUint32(h[offNonce+4:offNonce+8], high)
}

func (h *Header) Version() uint8 { return h[offVersion] }

func (h *Header) SetVersion(v uint8) { h[offVersion] = v }

// Size56 returns the 56-bit total serialized block size, vSize.
func (h *Header) Size56() uint64 {
	var buf [8]byte
	copy(buf[:7], h[offSize:offSize+7])
	return binary.LittleEndian.Uint64(buf[:])
}

func (h *Header) SetSize56(n uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	copy(h[offSize:offSize+7], buf[:7])
}

func (h *Header) Height() uint32 {
	return binary.LittleEndian.Uint32(h[offHeight : offHeight+4])
}

func (h *Header) SetHeight(height uint32) {
	binary.LittleEndian.PutUint32(h[offHeight:offHeight+4], height)
}

func (h *Header) EpochBlock() [32]byte {
	var out [32]byte
	copy(out[:], h[offEpochBlock:offEpochBlock+32])
	return out
}

func (h *Header) SetEpochBlock(hash [32]byte) {
	copy(h[offEpochBlock:offEpochBlock+32], hash[:])
}

// MerkleRoot returns the merkle root exactly as stored: internal
// (byte-reversed) order, not display order.
func (h *Header) MerkleRoot() [32]byte {
	var out [32]byte
	copy(out[:], h[offMerkleRoot:offMerkleRoot+32])
	return out
}

// SetMerkleRoot stores hash in internal order, i.e. the reverse of the
// display-order merkle hash a caller computed top-down.
func (h *Header) SetMerkleRoot(hash [32]byte) {
	rev := reverse32(hash)
	copy(h[offMerkleRoot:offMerkleRoot+32], rev[:])
}

// ExtendedMetadata returns the extended-metadata hash in internal order.
func (h *Header) ExtendedMetadata() [32]byte {
	var out [32]byte
	copy(out[:], h[offExtendedMeta:offExtendedMeta+32])
	return out
}

func (h *Header) SetExtendedMetadata(hash [32]byte) {
	rev := reverse32(hash)
	copy(h[offExtendedMeta:offExtendedMeta+32], rev[:])
}

// PartialHeader derives the 21 big-endian u32 words the OpenCL kernel reads
// for each search batch: header bytes [0:52) verbatim, followed by a single
// SHA-256 of the tail bytes [52:160), packed big-endian. See the GPU search
// engine's batch procedure for how this buffer is consumed.
func (h *Header) PartialHeader() [21]uint32 {
	var words [21]uint32
	tail := sha256.Sum256(h[52:Size])

	var buf [84]byte
	copy(buf[0:52], h[0:52])
	copy(buf[52:84], tail[:])

	for i := 0; i < 21; i++ {
		words[i] = binary.BigEndian.Uint32(buf[i*4 : i*4+4])
	}
	return words
}

// Hash computes the Lotus hash: double-SHA-256 over the full 160-byte
// header. A winning nonce produces a hash whose last byte is zero.
func (h *Header) Hash() [32]byte {
	first := sha256.Sum256(h[:])
	return sha256.Sum256(first[:])
}

func (h *Header) Hex() string { return hex.EncodeToString(h[:]) }

func reverse32(b [32]byte) [32]byte {
	var out [32]byte
	for i := range b {
		out[i] = b[31-i]
	}
	return out
}
