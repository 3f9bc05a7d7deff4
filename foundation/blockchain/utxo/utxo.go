// Package utxo maintains the flat mapping from canonical triangle hash to
// triangle record that backs TrinityChain's UTXO set. Parent/child lineage
// is expressed only through the Triangle.ParentHash field; the set itself
// never holds pointers between entries, so it needs no cycle management.
package utxo

import (
	"sync"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
)

// Set is the UTXO set: a map from canonical triangle hash to triangle
// record, plus a secondary owner index so iter_utxos_by_owner does not
// need a linear scan.
type Set struct {
	mu     sync.RWMutex
	utxos  map[[32]byte]geometry.Triangle
	byOwner map[[32]byte]map[[32]byte]struct{}
}

// New constructs an empty UTXO set.
func New() *Set {
	return &Set{
		utxos:   make(map[[32]byte]geometry.Triangle),
		byOwner: make(map[[32]byte]map[[32]byte]struct{}),
	}
}

// Get returns the triangle stored under h, if any.
func (s *Set) Get(h [32]byte) (geometry.Triangle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.utxos[h]
	return t, ok
}

// Contains reports whether h is present in the set.
func (s *Set) Contains(h [32]byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.utxos[h]
	return ok
}

// Insert adds t under its canonical hash. It fails if that hash is
// already present: double-insert is a protocol error, never a silent
// overwrite.
func (s *Set) Insert(t geometry.Triangle) error {
	h := t.Hash()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.utxos[h]; exists {
		return chainerr.New(chainerr.UtxoConflict, "double-insert of an existing UTXO hash")
	}

	s.utxos[h] = t
	s.indexOwner(t.Owner, h)

	return nil
}

// Remove deletes and returns the triangle stored under h. It fails if h
// is absent.
func (s *Set) Remove(h [32]byte) (geometry.Triangle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.utxos[h]
	if !ok {
		return geometry.Triangle{}, chainerr.New(chainerr.UtxoMissing, "remove of an absent UTXO hash")
	}

	delete(s.utxos, h)
	s.unindexOwner(t.Owner, h)

	return t, nil
}

// ReownInPlace replaces the owner of the triangle at h without changing
// its canonical hash, the effect a Transfer has on the UTXO set. It fails
// if h is absent.
func (s *Set) ReownInPlace(h [32]byte, newOwner [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.utxos[h]
	if !ok {
		return chainerr.New(chainerr.UtxoMissing, "reown of an absent UTXO hash")
	}

	s.unindexOwner(t.Owner, h)
	t.Owner = newOwner
	s.utxos[h] = t
	s.indexOwner(newOwner, h)

	return nil
}

// IterByOwner returns every triangle hash currently owned by addr.
func (s *Set) IterByOwner(addr [32]byte) [][32]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.byOwner[addr]
	hashes := make([][32]byte, 0, len(set))
	for h := range set {
		hashes = append(hashes, h)
	}
	return hashes
}

// All returns every triangle currently in the set, in no particular order.
// Used to hand a full UTXO snapshot to a persistence backend, e.g. store's
// RevertTo during a reorg.
func (s *Set) All() []geometry.Triangle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]geometry.Triangle, 0, len(s.utxos))
	for _, t := range s.utxos {
		out = append(out, t)
	}
	return out
}

// Len returns the number of UTXO entries.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.utxos)
}

// Snapshot returns a deep copy of the UTXO set, used by undo/reorg and by
// read-only observers such as the miner.
func (s *Set) Snapshot() *Set {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := New()
	for h, t := range s.utxos {
		cp.utxos[h] = t
	}
	for owner, hashes := range s.byOwner {
		cpHashes := make(map[[32]byte]struct{}, len(hashes))
		for h := range hashes {
			cpHashes[h] = struct{}{}
		}
		cp.byOwner[owner] = cpHashes
	}
	return cp
}

func (s *Set) indexOwner(owner [32]byte, h [32]byte) {
	set, ok := s.byOwner[owner]
	if !ok {
		set = make(map[[32]byte]struct{})
		s.byOwner[owner] = set
	}
	set[h] = struct{}{}
}

func (s *Set) unindexOwner(owner [32]byte, h [32]byte) {
	set, ok := s.byOwner[owner]
	if !ok {
		return
	}
	delete(set, h)
	if len(set) == 0 {
		delete(s.byOwner, owner)
	}
}
