package header

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestFromBytesRejectsShortInput(t *testing.T) {
	if _, err := FromBytes(make([]byte, Size-1)); err == nil {
		t.Fatalf("expected error for short input")
	}
}

func TestNonceSplit(t *testing.T) {
	var h Header
	h.SetLowNonce(0xdeadbeef)
	h.SetHighNonce(0xcafef00d)

	if got := h.LowNonce(); got != 0xdeadbeef {
		t.Fatalf("LowNonce = %x, want deadbeef", got)
	}
	if got := h.HighNonce(); got != 0xcafef00d {
		t.Fatalf("HighNonce = %x, want cafef00d", got)
	}
	want := uint64(0xcafef00d)<<32 | uint64(0xdeadbeef)
	if got := h.Nonce(); got != want {
		t.Fatalf("Nonce = %x, want %x", got, want)
	}
}

func TestSetLowNonceLeavesHighUntouched(t *testing.T) {
	var h Header
	h.SetHighNonce(0x11223344)
	h.SetLowNonce(0xaaaaaaaa)
	h.SetLowNonce(0xbbbbbbbb)

	if got := h.HighNonce(); got != 0x11223344 {
		t.Fatalf("HighNonce mutated by SetLowNonce: got %x", got)
	}
	if got := h.LowNonce(); got != 0xbbbbbbbb {
		t.Fatalf("LowNonce = %x, want bbbbbbbb", got)
	}
}

func TestTimeRoundTrip48Bit(t *testing.T) {
	var h Header
	want := int64(1_700_000_000)
	h.SetTime(want)
	if got := h.Time(); got != want {
		t.Fatalf("Time round-trip = %d, want %d", got, want)
	}
}

func TestSize56RoundTrip(t *testing.T) {
	var h Header
	want := uint64(1<<56 - 1)
	h.SetSize56(want)
	if got := h.Size56(); got != want {
		t.Fatalf("Size56 round-trip = %d, want %d", got, want)
	}
}

func TestMerkleRootStoredReversed(t *testing.T) {
	var h Header
	var display [32]byte
	for i := range display {
		display[i] = byte(i)
	}
	h.SetMerkleRoot(display)

	stored := h.MerkleRoot()
	for i := range display {
		if stored[i] != display[31-i] {
			t.Fatalf("byte %d: stored = %x, want reverse of display", i, stored[i])
		}
	}
}

func TestPartialHeaderLength(t *testing.T) {
	var h Header
	words := h.PartialHeader()
	if len(words) != 21 {
		t.Fatalf("PartialHeader length = %d, want 21", len(words))
	}
}

func TestPartialHeaderMatchesPrefixBytes(t *testing.T) {
	var h Header
	for i := 0; i < Size; i++ {
		h[i] = byte(i)
	}
	words := h.PartialHeader()

	var prefix [52]byte
	for i, w := range words[:13] {
		prefix[i*4] = byte(w >> 24)
		prefix[i*4+1] = byte(w >> 16)
		prefix[i*4+2] = byte(w >> 8)
		prefix[i*4+3] = byte(w)
	}
	if !bytes.Equal(prefix[:], h[0:52]) {
		t.Fatalf("PartialHeader prefix does not match header bytes [0:52)")
	}
}

func TestHashIsDoubleSHA256(t *testing.T) {
	var h Header
	h1 := h.Hash()
	h2 := h.Hash()
	if h1 != h2 {
		t.Fatalf("Hash is not deterministic")
	}
	first := sha256.Sum256(h[:])
	if want := sha256.Sum256(first[:]); h1 != want {
		t.Fatalf("Hash = %x, want double SHA-256 %x", h1, want)
	}
}

func TestFromBytesBytesRoundTrip(t *testing.T) {
	raw := make([]byte, Size)
	for i := range raw {
		raw[i] = byte(i * 3)
	}
	h, err := FromBytes(raw)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if !bytes.Equal(h.Bytes(), raw) {
		t.Fatalf("Bytes() did not round-trip FromBytes input")
	}
}
