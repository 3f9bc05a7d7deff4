package chain_test

import (
	"sync"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
)

// memStore is a minimal in-memory chain.Store used only by tests in this
// package: no atomicity, no durability, just enough bookkeeping to drive
// Chain through genesis, block application, and reorg paths.
type memStore struct {
	mu sync.Mutex

	byHeight map[uint64]chain.Block
	byHash   map[[32]byte]chain.Block
	utxos    map[[32]byte]geometry.Triangle
	meta     chain.Metadata
}

func newMemStore() *memStore {
	return &memStore{
		byHeight: make(map[uint64]chain.Block),
		byHash:   make(map[[32]byte]chain.Block),
		utxos:    make(map[[32]byte]geometry.Triangle),
	}
}

func (s *memStore) GetBlockByHash(hash [32]byte) (chain.Block, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byHash[hash]
	return b, ok, nil
}

func (s *memStore) GetBlockByHeight(height uint64) (chain.Block, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byHeight[height]
	return b, ok, nil
}

func (s *memStore) GetUTXO(hash [32]byte) (geometry.Triangle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.utxos[hash]
	return t, ok, nil
}

func (s *memStore) IterateUTXOs(fn func(geometry.Triangle) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.utxos {
		if !fn(t) {
			break
		}
	}
	return nil
}

func (s *memStore) LoadChainMetadata() (chain.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta, nil
}

func (s *memStore) AppendBlock(blk chain.Block, insert []geometry.Triangle, remove [][32]byte, meta chain.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byHeight[blk.Header.Height] = blk
	s.byHash[blk.Hash()] = blk
	for _, h := range remove {
		delete(s.utxos, h)
	}
	for _, t := range insert {
		s.utxos[t.Hash()] = t
	}
	s.meta = meta
	return nil
}

func (s *memStore) RevertTo(height uint64, utxoAfter []geometry.Triangle, meta chain.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for h := range s.byHeight {
		if h > height {
			delete(s.byHeight, h)
		}
	}
	s.utxos = make(map[[32]byte]geometry.Triangle, len(utxoAfter))
	for _, t := range utxoAfter {
		s.utxos[t.Hash()] = t
	}
	s.meta = meta
	return nil
}
