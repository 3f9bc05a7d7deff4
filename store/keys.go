package store

import "encoding/binary"

// Key sets, each identified by a one-byte prefix so a single goleveldb
// database can hold blocks, the hash index, the UTXO set, and chain
// metadata without colliding keyspaces, grounded on decred-dcrd's
// prefixed-key-set UTXO backend design.
const (
	prefixBlockByHeight byte = 1
	prefixHashToHeight  byte = 2
	prefixUTXO          byte = 3
	prefixMeta          byte = 4
)

var metaKey = []byte{prefixMeta}

func blockByHeightKey(height uint64) []byte {
	key := make([]byte, 1+8)
	key[0] = prefixBlockByHeight
	binary.BigEndian.PutUint64(key[1:], height) // big-endian so keys sort by height
	return key
}

func hashToHeightKey(hash [32]byte) []byte {
	key := make([]byte, 1+32)
	key[0] = prefixHashToHeight
	copy(key[1:], hash[:])
	return key
}

func utxoKey(hash [32]byte) []byte {
	key := make([]byte, 1+32)
	key[0] = prefixUTXO
	copy(key[1:], hash[:])
	return key
}

func utxoPrefix() []byte {
	return []byte{prefixUTXO}
}

func blockByHeightPrefix() []byte {
	return []byte{prefixBlockByHeight}
}

func encodeHeight(height uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, height)
	return b
}

func decodeHeight(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func decodeHeightFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[1:])
}
