// Package store is the goleveldb-backed persistence layer for chain.Chain:
// blocks, the hash-to-height index, the UTXO set, and chain metadata all
// live in one database, keyed by the prefixed key sets in keys.go. Every
// block append commits atomically via a single leveldb.Batch, per spec
// §4.6's durability contract.
package store

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
)

// LevelStore implements chain.Store over a single goleveldb database.
type LevelStore struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) the database at path.
func Open(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &LevelStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *LevelStore) Close() error {
	return s.db.Close()
}

// GetBlockByHash satisfies chain.Store.
func (s *LevelStore) GetBlockByHash(hash [32]byte) (chain.Block, bool, error) {
	raw, err := s.db.Get(hashToHeightKey(hash), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return chain.Block{}, false, nil
		}
		return chain.Block{}, false, fmt.Errorf("store: get hash index: %w", err)
	}

	height := decodeHeight(raw)
	return s.GetBlockByHeight(height)
}

// GetBlockByHeight satisfies chain.Store.
func (s *LevelStore) GetBlockByHeight(height uint64) (chain.Block, bool, error) {
	raw, err := s.db.Get(blockByHeightKey(height), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return chain.Block{}, false, nil
		}
		return chain.Block{}, false, fmt.Errorf("store: get block height[%d]: %w", height, err)
	}

	blk, err := decodeBlock(raw)
	if err != nil {
		return chain.Block{}, false, fmt.Errorf("store: decode block height[%d]: %w", height, err)
	}
	return blk, true, nil
}

// GetUTXO satisfies chain.Store.
func (s *LevelStore) GetUTXO(hash [32]byte) (geometry.Triangle, bool, error) {
	raw, err := s.db.Get(utxoKey(hash), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return geometry.Triangle{}, false, nil
		}
		return geometry.Triangle{}, false, fmt.Errorf("store: get utxo: %w", err)
	}

	t, _ := decodeTriangle(raw)
	return t, true, nil
}

// IterateUTXOs satisfies chain.Store.
func (s *LevelStore) IterateUTXOs(fn func(geometry.Triangle) bool) error {
	iter := s.db.NewIterator(util.BytesPrefix(utxoPrefix()), nil)
	defer iter.Release()

	for iter.Next() {
		t, _ := decodeTriangle(iter.Value())
		if !fn(t) {
			break
		}
	}
	return iter.Error()
}

// LoadChainMetadata satisfies chain.Store. A not-found meta key means a
// brand-new database: it returns the zero Metadata, which Chain.New
// interprets as "initialize genesis".
func (s *LevelStore) LoadChainMetadata() (chain.Metadata, error) {
	raw, err := s.db.Get(metaKey, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return chain.Metadata{}, nil
		}
		return chain.Metadata{}, fmt.Errorf("store: get metadata: %w", err)
	}
	return decodeMeta(raw), nil
}

// AppendBlock satisfies chain.Store: blk, the UTXO diff, and the new
// metadata land in one leveldb.Batch.
func (s *LevelStore) AppendBlock(blk chain.Block, insert []geometry.Triangle, remove [][32]byte, meta chain.Metadata) error {
	batch := new(leveldb.Batch)

	batch.Put(blockByHeightKey(blk.Header.Height), encodeBlock(blk))
	batch.Put(hashToHeightKey(blk.Hash()), encodeHeight(blk.Header.Height))

	for _, hash := range remove {
		batch.Delete(utxoKey(hash))
	}
	for _, t := range insert {
		var buf []byte
		encodeTriangle(&buf, t)
		batch.Put(utxoKey(t.Hash()), buf)
	}

	batch.Put(metaKey, encodeMeta(meta))

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("store: append block height[%d]: %w", blk.Header.Height, err)
	}
	return nil
}

// RevertTo satisfies chain.Store: it drops every block above height,
// replaces the entire UTXO set with utxoAfter, and writes meta, all in one
// batch. Used by a reorg to rewind to the common ancestor before the side
// chain is applied, never by normal block application.
func (s *LevelStore) RevertTo(height uint64, utxoAfter []geometry.Triangle, meta chain.Metadata) error {
	batch := new(leveldb.Batch)

	iter := s.db.NewIterator(util.BytesPrefix(blockByHeightPrefix()), nil)
	for iter.Next() {
		h := decodeHeightFromKey(iter.Key())
		if h > height {
			blk, err := decodeBlock(iter.Value())
			if err != nil {
				iter.Release()
				return fmt.Errorf("store: revert: decode block: %w", err)
			}
			batch.Delete(blockByHeightKey(h))
			batch.Delete(hashToHeightKey(blk.Hash()))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("store: revert: iterate blocks: %w", err)
	}

	utxoIter := s.db.NewIterator(util.BytesPrefix(utxoPrefix()), nil)
	for utxoIter.Next() {
		key := append([]byte(nil), utxoIter.Key()...)
		batch.Delete(key)
	}
	utxoIter.Release()
	if err := utxoIter.Error(); err != nil {
		return fmt.Errorf("store: revert: iterate utxos: %w", err)
	}

	for _, t := range utxoAfter {
		var buf []byte
		encodeTriangle(&buf, t)
		batch.Put(utxoKey(t.Hash()), buf)
	}

	batch.Put(metaKey, encodeMeta(meta))

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("store: revert to height[%d]: %w", height, err)
	}
	return nil
}
