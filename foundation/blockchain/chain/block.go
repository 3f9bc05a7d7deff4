// Package chain implements the blockchain state machine: block and header
// types, structural/PoW/Merkle/transaction validation, application against
// the UTXO set, difficulty retargeting, fork resolution, and the orphan
// pool. It is the single authoritative writer of chain state; everything
// else (miner, persistence, peer collaborators) calls through it.
package chain

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/trinitychain/trinitychain/foundation/blockchain/merkle"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
)

// BlockHeader carries everything needed to identify and validate a block
// independent of its transaction list.
type BlockHeader struct {
	Height       uint64
	PreviousHash [32]byte
	Timestamp    int64
	Difficulty   uint64
	Nonce        uint64
	MerkleRoot   [32]byte
}

// Block is a header plus the ordered transaction list it commits to via
// MerkleRoot. The first transaction is always a Coinbase.
type Block struct {
	Header       BlockHeader
	Transactions []txn.Transaction
}

// encode returns the little-endian, fixed-order byte encoding of h that is
// hashed to produce the block hash.
func (h BlockHeader) encode() []byte {
	buf := make([]byte, 0, 8+32+8+8+8+32)

	var tmp8 [8]byte
	binary.LittleEndian.PutUint64(tmp8[:], h.Height)
	buf = append(buf, tmp8[:]...)

	buf = append(buf, h.PreviousHash[:]...)

	binary.LittleEndian.PutUint64(tmp8[:], uint64(h.Timestamp))
	buf = append(buf, tmp8[:]...)

	binary.LittleEndian.PutUint64(tmp8[:], h.Difficulty)
	buf = append(buf, tmp8[:]...)

	binary.LittleEndian.PutUint64(tmp8[:], h.Nonce)
	buf = append(buf, tmp8[:]...)

	buf = append(buf, h.MerkleRoot[:]...)

	return buf
}

// Hash returns the block hash: SHA-256 of the header in field order, all
// integers little-endian. This is the value proof-of-work targets.
func (h BlockHeader) Hash() [32]byte {
	return sha256.Sum256(h.encode())
}

// Hash returns the hash of b's header; the body does not participate
// directly, only through MerkleRoot.
func (b Block) Hash() [32]byte {
	return b.Header.Hash()
}

// computeMerkleRoot builds a merkle tree over txs in order and returns its
// root. It fails if txs is empty: every block must carry at least a
// coinbase.
func computeMerkleRoot(txs []txn.Transaction) ([32]byte, error) {
	var root [32]byte

	tree, err := merkle.NewTree(txs)
	if err != nil {
		return root, err
	}

	copy(root[:], tree.MerkleRoot)
	return root, nil
}
