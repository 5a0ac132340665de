// Package target converts between the compact nBits encoding carried in a
// block header and the full 256-bit target used to judge proof-of-work.
package target

import "fmt"

// FromBits expands a compact nBits value into a 256-bit target, returned in
// big-endian display order (most significant byte first), mirroring the
// mantissa/exponent encoding POAI's own difficulty code works in but applied
// to Lotus's Bitcoin-style compact target rather than a signed big.Int span.
//
// bits is read as 0xEEMMMMMM: the low 3 bytes are the mantissa, the top byte
// is the exponent, counted in bytes from the right of a 32-byte buffer.
func FromBits(bits uint32) [32]byte {
	var out [32]byte

	exp := byte(bits >> 24)
	mantissa := bits & 0x007fffff

	// A mantissa with the sign bit (0x00800000) set is always treated as
	// zero per the historical Bitcoin compact-target convention: it would
	// otherwise be read as a negative value.
	if bits&0x00800000 != 0 {
		return out
	}

	if exp <= 3 {
		mantissa >>= 8 * (3 - uint(exp))
		out[29] = byte(mantissa >> 16)
		out[30] = byte(mantissa >> 8)
		out[31] = byte(mantissa)
		return out
	}

	pos := 32 - int(exp)
	if pos < 0 || pos > 29 {
		// Exponent out of representable range; treat as the widest
		// possible target so comparisons never panic.
		for i := range out {
			out[i] = 0xff
		}
		return out
	}
	out[pos] = byte(mantissa >> 16)
	out[pos+1] = byte(mantissa >> 8)
	out[pos+2] = byte(mantissa)
	return out
}

// ToBits compresses a 256-bit big-endian target back into the compact nBits
// form. FromBits/ToBits round-trip for representable targets, which the
// package tests assert.
func ToBits(t [32]byte) uint32 {
	first := 0
	for first < 32 && t[first] == 0 {
		first++
	}
	if first == 32 {
		return 0
	}
	size := 32 - first

	var mantissa uint32
	switch {
	case size >= 3:
		mantissa = uint32(t[first])<<16 | uint32(t[first+1])<<8 | uint32(t[first+2])
	case size == 2:
		mantissa = uint32(t[first])<<8 | uint32(t[first+1])
	default:
		mantissa = uint32(t[first])
	}

	exp := byte(size)
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exp++
	}
	return uint32(exp)<<24 | mantissa
}

// Reverse returns a byte-reversed copy, converting between the big-endian
// display order used by nBits expansion and the little-endian internal
// order a node hands back over JSON-RPC or a header stores its hashes in.
func Reverse(b [32]byte) [32]byte {
	var out [32]byte
	for i := range b {
		out[i] = b[31-i]
	}
	return out
}

// Less reports whether a is numerically less than b when both are
// big-endian byte arrays. The GPU verification path does not use it: it
// compares internal-order hash and target with gpu's own beatsTarget.
func Less(a, b [32]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// String renders a target as a lowercase hex string (no 0x prefix) for log
// lines.
func String(t [32]byte) string {
	return fmt.Sprintf("%x", t)
}
