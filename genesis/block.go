package genesis

import (
	"lotusminer/core"
	"lotusminer/core/compactsize"
	"lotusminer/core/header"
	"lotusminer/core/target"
)

// Body serializes the genesis block body: metadata || compact_size(txs) ||
// tx*.
func Body(txs [][]byte) []byte {
	var buf []byte
	buf = append(buf, ExtendedMetadata...)
	buf = compactsize.Encode(buf, uint64(len(txs)))
	for _, tx := range txs {
		buf = append(buf, tx...)
	}
	return buf
}

// BuildHeader populates every field of a 160-byte header per the canonical
// layout, given the coinbase-only body it will be paired with. time and
// nonce are written as given; refreshing them later is up to the caller
// (or the genesis-mining loop).
func BuildHeader(prevBlock, epochBlock [32]byte, bits uint32, t int64, nonce uint64, height uint32, body []byte) header.Header {
	var h header.Header
	h.SetPrevBlock(prevBlock)
	h.SetBits(bits)
	h.SetTime(t)
	h.SetNonce(nonce)
	h.SetVersion(1)
	h.SetSize56(uint64(header.Size + len(body)))
	h.SetHeight(height)
	h.SetEpochBlock(epochBlock)

	txs := [][]byte{CoinbaseTx(height)}
	h.SetMerkleRoot(MerkleRoot(txs))
	h.SetExtendedMetadata(ExtendedMetadataHash())
	return h
}

// BuildBlock assembles the complete genesis Block: a single coinbase
// transaction, its merkle root, the extended-metadata hash, and a fully
// populated header. Calling BuildBlock twice with identical bits, time,
// nonce, and height produces byte-identical output.
func BuildBlock(prevBlock, epochBlock [32]byte, bits uint32, t int64, nonce uint64, height uint32) *core.Block {
	coinbase := CoinbaseTx(height)
	body := Body([][]byte{coinbase})
	h := BuildHeader(prevBlock, epochBlock, bits, t, nonce, height, body)

	return &core.Block{
		Header: h,
		Body:   body,
		Target: target.Reverse(target.FromBits(bits)),
	}
}
