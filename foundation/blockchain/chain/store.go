package chain

import (
	"github.com/holiman/uint256"

	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
)

// Metadata is the durable chain-tip summary a Store must reload unchanged
// across a restart.
type Metadata struct {
	TipHash        [32]byte
	TipHeight      uint64
	Difficulty     uint64
	CumulativeWork *uint256.Int
}

// Store is the persistence contract spec.md §4.6 requires: every block
// append and the UTXO mutations it causes commit atomically, or neither
// does. chain never mutates the store directly outside AppendBlock/
// RevertTo; store is solely responsible for durability and restart
// recovery.
type Store interface {
	GetBlockByHash(hash [32]byte) (Block, bool, error)
	GetBlockByHeight(height uint64) (Block, bool, error)
	GetUTXO(hash [32]byte) (geometry.Triangle, bool, error)
	IterateUTXOs(fn func(geometry.Triangle) bool) error
	LoadChainMetadata() (Metadata, error)

	// AppendBlock durably commits blk plus the UTXO diff it produced
	// (insert for new/reowned entries, remove for consumed ones) and the
	// new chain metadata, in one atomic transaction.
	AppendBlock(blk Block, insert []geometry.Triangle, remove [][32]byte, meta Metadata) error

	// RevertTo atomically rewinds the store to height (exclusive of
	// anything above it), restoring utxoAfter as the complete UTXO set and
	// writing meta as the new chain metadata. Used by Reorg to rewind the
	// store to the common ancestor before the side chain is applied; never
	// by normal block application.
	RevertTo(height uint64, utxoAfter []geometry.Triangle, meta Metadata) error
}
