package chain

import (
	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/foundation/blockchain/utxo"
)

// validateBlock runs every check spec.md §4.5 assigns to block acceptance,
// against the given tip/UTXO/difficulty, without mutating any of them. It
// returns the resulting UTXO snapshot and undo log on success.
func validateBlock(p Params, blk Block, tip BlockHeader, recentTimestamps []int64, utxoState *utxo.Set, expectedDifficulty uint64) (*utxo.Set, []TxUndo, error) {
	if err := validateStructural(p, blk, tip, recentTimestamps, now()); err != nil {
		return nil, nil, err
	}
	if err := validatePoW(blk, expectedDifficulty); err != nil {
		return nil, nil, err
	}
	if err := validateMerkle(blk); err != nil {
		return nil, nil, err
	}

	scratch, undos, err := applyTransactions(p, blk, utxoState)
	if err != nil {
		return nil, nil, err
	}

	return scratch, undos, nil
}

// undoBlock reverses every TxUndo in u against state, in reverse
// application order, restoring state to exactly what it was before the
// block that produced u was applied.
func undoBlock(state *utxo.Set, undos []TxUndo) error {
	for i := len(undos) - 1; i >= 0; i-- {
		if err := state.Undo(undos[i].Tx, undos[i].Undo); err != nil {
			return chainerr.New(chainerr.ReorgFailed, "undo failed: "+err.Error())
		}
	}
	return nil
}

// utxoDiff derives the set of triangle records to write and keys to delete
// for a store commit, reading the post-application values from scratch:
// Coinbase and Subdivision children are inserts, a Transfer's reowned
// entry is an insert of the same hash with a new owner, and a
// Subdivision's parent is a delete.
func utxoDiff(scratch *utxo.Set, undos []TxUndo) (insert []geometry.Triangle, remove [][32]byte) {
	for _, tu := range undos {
		switch tu.Tx.Tag {
		case txn.TagCoinbase:
			insert = append(insert, tu.Tx.Coinbase.Output)

		case txn.TagTransfer:
			if t, ok := scratch.Get(tu.Tx.Transfer.InputHash); ok {
				insert = append(insert, t)
			}

		case txn.TagSubdivision:
			remove = append(remove, tu.Tx.Subdivision.ParentHash)
			for _, child := range tu.Tx.Subdivision.Children {
				if t, ok := scratch.Get(child.Hash()); ok {
					insert = append(insert, t)
				}
			}
		}
	}
	return insert, remove
}
