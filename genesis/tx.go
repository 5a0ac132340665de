// Package genesis constructs the canonical, coinbase-only genesis block:
// the one block a miner builds locally rather than fetching from a node.
package genesis

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"lotusminer/core/compactsize"
)

// Subsidy is the total genesis coinbase value, in satoshis, split evenly
// across the block's two outputs.
const Subsidy = 260_000_000

// CoinbaseMessage is the scriptSig payload of the sole coinbase input.
const CoinbaseMessage = "John 1:1 In the beginning was the Logos"

// CoinbasePrefix tags output 0's OP_RETURN payload.
const CoinbasePrefix = "logos"

const (
	opReturn   = 0x6a
	opZero     = 0x00
	opCheckSig = 0xac
)

// genesisOutputHash and genesisPubKey are the canonical 32-byte hash and
// 65-byte pubkey embedded in output 0 and output 1 of the genesis coinbase.
// Declared as package vars (not consts) since Go has no fixed-size byte
// array literal syntax convenient for inline hex.
var (
	genesisOutputHash = mustHex32("ffe330c4b7643e554c62adcbe0b80537435d888b5c33d5e29a70cdd743e3a093")
	genesisPubKey     = mustHex65("04678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb" +
		"649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5f")
)

func mustHex32(s string) [32]byte {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		panic(fmt.Sprintf("genesis: bad 32-byte constant %q", s))
	}
	var out [32]byte
	copy(out[:], b)
	return out
}

func mustHex65(s string) [65]byte {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 65 {
		panic(fmt.Sprintf("genesis: bad 65-byte constant %q", s))
	}
	var out [65]byte
	copy(out[:], b)
	return out
}

// pushData returns a script fragment pushing data via the minimal single-
// byte opcode-as-length encoding, valid for any payload under 76 bytes —
// every push this package performs.
func pushData(data []byte) []byte {
	if len(data) >= 0x4c {
		panic("genesis: pushData payload too long for single-byte opcode")
	}
	out := make([]byte, 0, len(data)+1)
	out = append(out, byte(len(data)))
	return append(out, data...)
}

// coinbaseScriptSig returns the genesis coinbase input's scriptSig: a
// single push of the 39-byte message.
func coinbaseScriptSig() []byte {
	return pushData([]byte(CoinbaseMessage))
}

// coinbaseScript0 builds output 0's script: OP_RETURN, a push of the
// "logos" prefix, a push of height encoded as OP_0 for height zero, and a
// push of the genesis output hash.
func coinbaseScript0(height uint32) []byte {
	var out []byte
	out = append(out, opReturn)
	out = append(out, pushData([]byte(CoinbasePrefix))...)
	if height == 0 {
		out = append(out, opZero)
	} else {
		out = append(out, pushData(encodeScriptNum(height))...)
	}
	out = append(out, pushData(genesisOutputHash[:])...)
	return out
}

// coinbaseScript1 builds output 1's script: a push of the genesis pubkey
// followed by OP_CHECKSIG.
func coinbaseScript1() []byte {
	var out []byte
	out = append(out, pushData(genesisPubKey[:])...)
	out = append(out, opCheckSig)
	return out
}

// encodeScriptNum encodes a positive integer in Bitcoin script's minimal
// signed little-endian form, used for heights other than zero.
func encodeScriptNum(n uint32) []byte {
	if n == 0 {
		return nil
	}
	var out []byte
	v := n
	for v > 0 {
		out = append(out, byte(v&0xff))
		v >>= 8
	}
	if out[len(out)-1]&0x80 != 0 {
		out = append(out, 0x00)
	}
	return out
}

// CoinbaseTx serializes the genesis coinbase transaction exactly per the
// canonical layout: version=1, one input spending the null outpoint, two
// equal-value outputs, lock_time=0.
func CoinbaseTx(height uint32) []byte {
	var buf []byte

	// i32 version
	var versionBuf [4]byte
	binary.LittleEndian.PutUint32(versionBuf[:], 1)
	buf = append(buf, versionBuf[:]...)

	// vin: exactly one input
	buf = compactsize.Encode(buf, 1)

	var prevHash [32]byte // all-zero prevout hash
	buf = append(buf, prevHash[:]...)

	var prevN [4]byte
	binary.LittleEndian.PutUint32(prevN[:], 0xFFFFFFFF)
	buf = append(buf, prevN[:]...)

	scriptSig := coinbaseScriptSig()
	buf = compactsize.Encode(buf, uint64(len(scriptSig)))
	buf = append(buf, scriptSig...)

	var sequence [4]byte
	binary.LittleEndian.PutUint32(sequence[:], 0xFFFFFFFF)
	buf = append(buf, sequence[:]...)

	// vout: two equal-value outputs
	buf = compactsize.Encode(buf, 2)

	half := int64(Subsidy / 2)
	for _, script := range [][]byte{coinbaseScript0(height), coinbaseScript1()} {
		var valueBuf [8]byte
		binary.LittleEndian.PutUint64(valueBuf[:], uint64(half))
		buf = append(buf, valueBuf[:]...)
		buf = compactsize.Encode(buf, uint64(len(script)))
		buf = append(buf, script...)
	}

	// u32 lock_time
	var lockTime [4]byte
	buf = append(buf, lockTime[:]...)

	return buf
}

// TxID returns SHA256^2 of a serialized transaction. For the version-1
// transactions this package builds, tx_hash == tx_id.
func TxID(serialized []byte) [32]byte {
	first := sha256.Sum256(serialized)
	return sha256.Sum256(first[:])
}
