// Package mempool stages standalone- and stateful-valid transactions for
// inclusion in the next block, ordered by fee, with fail-closed conflict
// detection against double-spends.
package mempool

import (
	"bytes"
	"sort"
	"sync"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/foundation/blockchain/utxo"
)

type entry struct {
	tx       txn.Transaction
	fee      geometry.Coord
	input    [32]byte
	insertAt uint64
}

// Mempool is a single-writer staging area for pending transactions. All
// mutating methods serialize on mu; there is no suspension inside any
// critical section.
type Mempool struct {
	mu      sync.RWMutex
	pool    map[[32]byte]entry
	spentBy map[[32]byte][32]byte // referenced UTXO hash -> txid holding it
	nextSeq uint64
}

// New constructs an empty mempool.
func New() *Mempool {
	return &Mempool{
		pool:    make(map[[32]byte]entry),
		spentBy: make(map[[32]byte][32]byte),
	}
}

// Add runs standalone and stateful validation against state, and rejects
// the transaction if any input it consumes is already consumed by a
// transaction already in the mempool.
func (mp *Mempool) Add(tx txn.Transaction, state *utxo.Set) error {
	if tx.Tag == txn.TagCoinbase {
		return chainerr.New(chainerr.Malformed, "coinbase transactions do not belong in the mempool")
	}

	if err := tx.StandaloneValidate(); err != nil {
		return err
	}

	input, fee, err := mp.statefulCheck(tx, state)
	if err != nil {
		return err
	}

	id := tx.ID()

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[id]; exists {
		return nil
	}

	if holder, conflict := mp.spentBy[input]; conflict && holder != id {
		return chainerr.New(chainerr.UtxoConflict, "input already referenced by a pending transaction")
	}

	mp.pool[id] = entry{tx: tx, fee: fee, input: input, insertAt: mp.nextSeq}
	mp.spentBy[input] = id
	mp.nextSeq++

	return nil
}

func (mp *Mempool) statefulCheck(tx txn.Transaction, state *utxo.Set) (input [32]byte, fee geometry.Coord, err error) {
	switch tx.Tag {
	case txn.TagTransfer:
		tr := tx.Transfer
		stored, ok := state.Get(tr.InputHash)
		if !ok {
			return input, fee, chainerr.New(chainerr.UtxoMissing, "transfer input_hash not present")
		}
		if stored.Owner != tr.Sender {
			return input, fee, chainerr.New(chainerr.UtxoConflict, "transfer sender does not own input")
		}
		if tr.Amount.Add(tr.FeeArea) > stored.Area() {
			return input, fee, chainerr.New(chainerr.UtxoConflict, "transfer amount+fee_area exceeds triangle area")
		}
		return tr.InputHash, tr.FeeArea, nil

	case txn.TagSubdivision:
		sd := tx.Subdivision
		parent, ok := state.Get(sd.ParentHash)
		if !ok {
			return input, fee, chainerr.New(chainerr.UtxoMissing, "subdivision parent_hash not present")
		}
		if parent.Owner != sd.OwnerAddress {
			return input, fee, chainerr.New(chainerr.UtxoConflict, "subdivision owner_address does not own parent")
		}
		if err := txn.VerifySubdivisionShape(parent, sd); err != nil {
			return input, fee, err
		}
		return sd.ParentHash, sd.Fee, nil

	default:
		return input, fee, chainerr.New(chainerr.Malformed, "unknown transaction tag")
	}
}

// Remove deletes the transaction identified by txid, if present.
func (mp *Mempool) Remove(txid [32]byte) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	e, ok := mp.pool[txid]
	if !ok {
		return
	}
	delete(mp.pool, txid)
	if mp.spentBy[e.input] == txid {
		delete(mp.spentBy, e.input)
	}
}

// Count returns the number of pending transactions.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Snapshot returns every pending transaction in drain order without
// consuming anything, backing the mempool_snapshot() API.
func (mp *Mempool) Snapshot() []txn.Transaction {
	return mp.drain(-1)
}

// DrainForBlock returns up to maxCount pending transactions ordered by
// descending fee, ties broken by insertion order then by txid ascending,
// skipping any transaction whose input was already consumed by a
// previously selected one in this batch. Two miners draining the same
// mempool contents build identical candidate lists.
func (mp *Mempool) DrainForBlock(maxCount int) []txn.Transaction {
	return mp.drain(maxCount)
}

type ordered struct {
	e  entry
	id [32]byte
}

func (mp *Mempool) drain(maxCount int) []txn.Transaction {
	mp.mu.RLock()
	entries := make([]ordered, 0, len(mp.pool))
	for id, e := range mp.pool {
		entries = append(entries, ordered{e: e, id: id})
	}
	mp.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.e.fee != b.e.fee {
			return a.e.fee > b.e.fee
		}
		if a.e.insertAt != b.e.insertAt {
			return a.e.insertAt < b.e.insertAt
		}
		return bytes.Compare(a.id[:], b.id[:]) < 0
	})

	if maxCount < 0 || maxCount > len(entries) {
		maxCount = len(entries)
	}

	consumed := make(map[[32]byte]struct{})
	result := make([]txn.Transaction, 0, maxCount)
	for _, oe := range entries {
		if len(result) >= maxCount {
			break
		}
		if _, taken := consumed[oe.e.input]; taken {
			continue
		}
		consumed[oe.e.input] = struct{}{}
		result = append(result, oe.e.tx)
	}

	return result
}

// PruneByBlock removes every transaction whose input was consumed by a
// transaction in the accepted block.
func (mp *Mempool) PruneByBlock(consumedInputs [][32]byte) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, input := range consumedInputs {
		id, ok := mp.spentBy[input]
		if !ok {
			continue
		}
		delete(mp.pool, id)
		delete(mp.spentBy, input)
	}
}
