package genesis

import "crypto/sha256"

func sha256d(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

func reverse(b [32]byte) [32]byte {
	var out [32]byte
	for i := range b {
		out[i] = b[31-i]
	}
	return out
}

// merkleLeaf computes SHA256^2(reverse(tx_hash) || reverse(tx_id)). For the
// version-1 transactions this package builds, tx_hash == tx_id.
func merkleLeaf(txHash, txID [32]byte) [32]byte {
	rh := reverse(txHash)
	ri := reverse(txID)
	buf := make([]byte, 0, 64)
	buf = append(buf, rh[:]...)
	buf = append(buf, ri[:]...)
	return sha256d(buf)
}

// MerkleRoot computes the merkle root over a list of serialized
// transactions. An empty list yields 32 zero bytes. Odd levels duplicate
// the tail with a 32-byte zero string, not a copy of the last leaf.
func MerkleRoot(txs [][]byte) [32]byte {
	if len(txs) == 0 {
		return [32]byte{}
	}

	level := make([][32]byte, len(txs))
	for i, tx := range txs {
		id := TxID(tx)
		level[i] = merkleLeaf(id, id)
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, [32]byte{})
		}
		next := make([][32]byte, len(level)/2)
		for i := range next {
			pair := make([]byte, 0, 64)
			pair = append(pair, level[2*i][:]...)
			pair = append(pair, level[2*i+1][:]...)
			next[i] = sha256d(pair)
		}
		level = next
	}
	return level[0]
}

// ExtendedMetadata is the single compact-size zero byte every genesis (and
// currently every block) body carries as a placeholder metadata section.
var ExtendedMetadata = []byte{0x00}

// ExtendedMetadataHash returns SHA256^2 of ExtendedMetadata.
func ExtendedMetadataHash() [32]byte {
	return sha256d(ExtendedMetadata)
}
