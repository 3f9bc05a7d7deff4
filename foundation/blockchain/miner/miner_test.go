package miner_test

import (
	"sync"
	"testing"
	"time"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/miner"
)

type fakeStore struct {
	mu       sync.Mutex
	byHeight map[uint64]chain.Block
	byHash   map[[32]byte]chain.Block
	utxos    map[[32]byte]geometry.Triangle
	meta     chain.Metadata
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byHeight: make(map[uint64]chain.Block),
		byHash:   make(map[[32]byte]chain.Block),
		utxos:    make(map[[32]byte]geometry.Triangle),
	}
}

func (s *fakeStore) GetBlockByHash(hash [32]byte) (chain.Block, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byHash[hash]
	return b, ok, nil
}

func (s *fakeStore) GetBlockByHeight(height uint64) (chain.Block, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byHeight[height]
	return b, ok, nil
}

func (s *fakeStore) GetUTXO(hash [32]byte) (geometry.Triangle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.utxos[hash]
	return t, ok, nil
}

func (s *fakeStore) IterateUTXOs(fn func(geometry.Triangle) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.utxos {
		if !fn(t) {
			break
		}
	}
	return nil
}

func (s *fakeStore) LoadChainMetadata() (chain.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta, nil
}

func (s *fakeStore) AppendBlock(blk chain.Block, insert []geometry.Triangle, remove [][32]byte, meta chain.Metadata) error {
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

func (s *fakeStore) RevertTo(height uint64, utxoAfter []geometry.Triangle, meta chain.Metadata) error {
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

func TestWorkerMinesAndExtendsTip(t *testing.T) {
	params := chain.Fast()
	c, err := chain.New(chain.Config{Params: params, Store: newFakeStore()})
	if err != nil {
		t.Fatalf("chain.New: %v", err)
	}

	var beneficiary [32]byte
	beneficiary[0] = 0x11

	w := miner.New(c, params, beneficiary, nil)
	w.Start()
	defer w.Shutdown()

	deadline := time.After(5 * time.Second)
	for {
		if c.Tip().Height >= 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("miner did not extend the tip within the deadline: height[%d]", c.Tip().Height)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
