package gpu

import (
	"testing"

	"lotusminer/core/header"
)

func TestSwapBytesInvolution(t *testing.T) {
	cases := []uint32{0x00000000, 0xdeadbeef, 0x01020304, 0xffffffff}
	for _, c := range cases {
		if got := swapBytes(swapBytes(c)); got != c {
			t.Fatalf("swapBytes not an involution for %#x: got %#x", c, got)
		}
	}
}

func TestBeatsTargetAllOnesTargetAcceptsAnything(t *testing.T) {
	var hash [32]byte
	hash[0] = 0x01 // any nonzero byte somewhere
	var target [32]byte
	for i := range target {
		target[i] = 0xff
	}
	if !beatsTarget(hash, target) {
		t.Fatalf("expected any hash to beat an all-ones target")
	}
}

func TestBeatsTargetZeroTargetRejectsEverything(t *testing.T) {
	var hash [32]byte
	hash[31] = 0x01
	var target [32]byte
	if beatsTarget(hash, target) {
		t.Fatalf("expected nothing to beat a zero target")
	}
}

// TestBeatsTargetAsymmetricComparesSameIndex guards against pairing hash's
// most-significant byte with target's least-significant one: hash=0x05 and
// target=0x10 at index 31 (both zero elsewhere) must accept, since 0x05 is
// numerically below 0x10 at the byte position that actually dominates the
// comparison.
func TestBeatsTargetAsymmetricComparesSameIndex(t *testing.T) {
	var hash, target [32]byte
	hash[31] = 0x05
	target[31] = 0x10
	if !beatsTarget(hash, target) {
		t.Fatalf("expected hash 0x05 to beat target 0x10 at the same (MSB) index")
	}
}

// TestBeatsTargetAsymmetricRejectsWhenHashHigher is the mirror case: hash's
// MSB exceeds target's, so it must reject even though lower-index bytes
// never get compared.
func TestBeatsTargetAsymmetricRejectsWhenHashHigher(t *testing.T) {
	var hash, target [32]byte
	hash[31] = 0x10
	target[31] = 0x05
	if beatsTarget(hash, target) {
		t.Fatalf("expected hash 0x10 to lose against target 0x05 at the same (MSB) index")
	}
}

func TestVerifyCandidatesFindsFirstValid(t *testing.T) {
	var h header.Header
	h.SetHighNonce(0x11223344)

	var target [32]byte
	for i := range target {
		target[i] = 0xff
	}

	var output [bufferWords]uint32
	// Candidate at word 0: pick a low-nonce value whose resulting hash
	// ends in zero. Since target is all-ones, any hash whose last byte is
	// zero is accepted.
	var found bool
	for low := uint32(0); low < 1000 && !found; low++ {
		scratch := h
		scratch.SetLowNonce(low)
		if scratch.Hash()[31] == 0 {
			output[0] = swapBytes(low)
			found = true
		}
	}
	if !found {
		t.Skip("no trailing-zero nonce found in small search range")
	}

	result, err := verifyCandidates(h, target, output)
	if err != nil {
		t.Fatalf("verifyCandidates: %v", err)
	}
	if !result.Found {
		t.Fatalf("expected a candidate to be accepted against an all-ones target")
	}
}

func TestVerifyCandidatesSkipsAllZeroWords(t *testing.T) {
	var h header.Header
	var target [32]byte
	for i := range target {
		target[i] = 0xff
	}
	var output [bufferWords]uint32
	result, err := verifyCandidates(h, target, output)
	if err != nil {
		t.Fatalf("verifyCandidates: %v", err)
	}
	if result.Found {
		t.Fatalf("expected no candidate when output is all zero")
	}
}
