// Package compactsize implements Bitcoin-style variable-length integer
// encoding, used throughout genesis block serialization.
package compactsize

import (
	"encoding/binary"
	"fmt"
)

// Encode appends the compact-size encoding of n to dst and returns the
// result.
func Encode(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(n))
		return append(append(dst, 0xfd), buf...)
	case n <= 0xffffffff:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(n))
		return append(append(dst, 0xfe), buf...)
	default:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, n)
		return append(append(dst, 0xff), buf...)
	}
}

// Decode reads a compact-size integer from the front of b, returning the
// decoded value and the number of bytes consumed.
func Decode(b []byte) (n uint64, consumed int, err error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("compactsize: empty input")
	}
	switch prefix := b[0]; {
	case prefix < 0xfd:
		return uint64(prefix), 1, nil
	case prefix == 0xfd:
		if len(b) < 3 {
			return 0, 0, fmt.Errorf("compactsize: truncated u16 prefix")
		}
		return uint64(binary.LittleEndian.Uint16(b[1:3])), 3, nil
	case prefix == 0xfe:
		if len(b) < 5 {
			return 0, 0, fmt.Errorf("compactsize: truncated u32 prefix")
		}
		return uint64(binary.LittleEndian.Uint32(b[1:5])), 5, nil
	default:
		if len(b) < 9 {
			return 0, 0, fmt.Errorf("compactsize: truncated u64 prefix")
		}
		return binary.LittleEndian.Uint64(b[1:9]), 9, nil
	}
}
