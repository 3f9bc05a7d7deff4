package utxo

import (
	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
)

// Undo carries everything needed to reverse one applied transaction,
// produced by Apply and consumed by Undo. It is opaque to callers outside
// this package.
type Undo struct {
	tag          txn.Tag
	removed      []geometry.Triangle
	reownedHash  [32]byte
	reownedPrior [32]byte
}

// Apply performs the state transition a single transaction has on the
// UTXO set and returns an Undo value that exactly reverses it.
//
//	Coinbase    -> insert(hash(output), output)
//	Transfer    -> reown the stored triangle in place (hash unchanged)
//	Subdivision -> remove(parent_hash), insert the three children
func (s *Set) Apply(tx txn.Transaction) (Undo, error) {
	switch tx.Tag {
	case txn.TagCoinbase:
		return s.applyCoinbase(tx.Coinbase)
	case txn.TagTransfer:
		return s.applyTransfer(tx.Transfer)
	case txn.TagSubdivision:
		return s.applySubdivision(tx.Subdivision)
	default:
		return Undo{}, chainerr.New(chainerr.Malformed, "unknown transaction tag")
	}
}

func (s *Set) applyCoinbase(cb *txn.Coinbase) (Undo, error) {
	if err := s.Insert(cb.Output); err != nil {
		return Undo{}, err
	}
	return Undo{tag: txn.TagCoinbase, removed: []geometry.Triangle{cb.Output}}, nil
}

func (s *Set) applyTransfer(tr *txn.Transfer) (Undo, error) {
	s.mu.RLock()
	stored, ok := s.utxos[tr.InputHash]
	s.mu.RUnlock()
	if !ok {
		return Undo{}, chainerr.New(chainerr.UtxoMissing, "transfer input_hash not present")
	}

	if stored.Owner != tr.Sender {
		return Undo{}, chainerr.New(chainerr.UtxoConflict, "transfer sender does not own input")
	}

	if tr.Amount.Add(tr.FeeArea) > stored.Area() {
		return Undo{}, chainerr.New(chainerr.UtxoConflict, "transfer amount+fee_area exceeds triangle area")
	}

	if err := s.ReownInPlace(tr.InputHash, tr.NewOwner); err != nil {
		return Undo{}, err
	}

	return Undo{tag: txn.TagTransfer, reownedHash: tr.InputHash, reownedPrior: stored.Owner}, nil
}

func (s *Set) applySubdivision(sd *txn.Subdivision) (Undo, error) {
	s.mu.RLock()
	parent, ok := s.utxos[sd.ParentHash]
	s.mu.RUnlock()
	if !ok {
		return Undo{}, chainerr.New(chainerr.UtxoMissing, "subdivision parent_hash not present")
	}

	if parent.Owner != sd.OwnerAddress {
		return Undo{}, chainerr.New(chainerr.UtxoConflict, "subdivision owner_address does not own parent")
	}

	if err := txn.VerifySubdivisionShape(parent, sd); err != nil {
		return Undo{}, err
	}

	var childSum geometry.Coord
	for _, c := range sd.Children {
		childSum = childSum.Add(c.Area())
	}
	if sd.Fee > childSum {
		return Undo{}, chainerr.New(chainerr.UtxoConflict, "subdivision fee exceeds sum of child areas")
	}

	if _, err := s.Remove(sd.ParentHash); err != nil {
		return Undo{}, err
	}

	inserted := make([]geometry.Triangle, 0, len(sd.Children))
	for _, c := range sd.Children {
		if err := s.Insert(c); err != nil {
			// Children hash collides with an existing UTXO (vanishingly
			// rare, since VerifySubdivisionShape already confirmed they
			// are the parent's midpoint children). Leave the set as it
			// was before this Apply call.
			for _, done := range inserted {
				_, _ = s.Remove(done.Hash())
			}
			_ = s.Insert(parent)
			return Undo{}, err
		}
		inserted = append(inserted, c)
	}

	return Undo{
		tag:     txn.TagSubdivision,
		removed: []geometry.Triangle{parent},
	}, nil
}

// Undo reverses an Apply, restoring the UTXO set to its exact prior state.
func (s *Set) Undo(tx txn.Transaction, u Undo) error {
	switch u.tag {
	case txn.TagCoinbase:
		_, err := s.Remove(tx.Coinbase.Output.Hash())
		return err

	case txn.TagTransfer:
		return s.ReownInPlace(u.reownedHash, u.reownedPrior)

	case txn.TagSubdivision:
		for _, c := range tx.Subdivision.Children {
			if _, err := s.Remove(c.Hash()); err != nil {
				return err
			}
		}
		return s.Insert(u.removed[0])

	default:
		return chainerr.New(chainerr.Malformed, "unknown undo tag")
	}
}
