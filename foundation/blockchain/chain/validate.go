package chain

import (
	"sort"
	"time"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/foundation/blockchain/utxo"
)

// medianTimestampWindow is the number of trailing blocks whose timestamps
// establish the minimum a new block's timestamp may carry.
const medianTimestampWindow = 11

func medianTimestamp(timestamps []int64) int64 {
	if len(timestamps) == 0 {
		return 0
	}

	sorted := append([]int64(nil), timestamps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return sorted[len(sorted)/2]
}

// validateStructural checks height/previous_hash linkage and timestamp
// bounds against the recent header window, independent of PoW or the
// transaction list.
func validateStructural(p Params, blk Block, tip BlockHeader, recentTimestamps []int64, now int64) error {
	if blk.Header.Height != tip.Height+1 {
		return chainerr.New(chainerr.ChainLink, "block height does not follow tip")
	}
	if blk.Header.PreviousHash != tip.Hash() {
		return chainerr.New(chainerr.ChainLink, "previous_hash does not match tip")
	}

	if len(recentTimestamps) > 0 {
		if blk.Header.Timestamp < medianTimestamp(recentTimestamps) {
			return chainerr.New(chainerr.TimestampInvalid, "timestamp below median of last 11 blocks")
		}
	}
	if blk.Header.Timestamp > now+2*p.TargetBlockTime {
		return chainerr.New(chainerr.TimestampInvalid, "timestamp too far in the future")
	}

	return nil
}

// validatePoW checks that blk's hash meets the target implied by its
// declared difficulty, and that the declared difficulty matches the
// difficulty this chain expects at this height.
func validatePoW(blk Block, expectedDifficulty uint64) error {
	if blk.Header.Difficulty != expectedDifficulty {
		return chainerr.New(chainerr.PowInsufficient, "block declares an unexpected difficulty")
	}
	if !hashMeetsTarget(blk.Hash(), blk.Header.Difficulty) {
		return chainerr.New(chainerr.PowInsufficient, "block hash does not meet target")
	}
	return nil
}

// validateMerkle recomputes the merkle root over blk.Transactions and
// compares it to the header's declared root.
func validateMerkle(blk Block) error {
	root, err := computeMerkleRoot(blk.Transactions)
	if err != nil {
		return chainerr.New(chainerr.Malformed, "block carries no transactions")
	}
	if root != blk.Header.MerkleRoot {
		return chainerr.New(chainerr.Malformed, "merkle root does not match transactions")
	}
	return nil
}

// TxUndo pairs an applied transaction with the Undo that reverses it,
// recorded in actual application order (non-coinbase transactions first,
// coinbase last, since the reward cap needs the fee total before the
// coinbase can be applied).
type TxUndo struct {
	Tx   txn.Transaction
	Undo utxo.Undo
}

// applyTransactions applies the non-coinbase transactions of blk in block
// order to a fresh snapshot of base and then the coinbase, enforcing
// exactly one leading Coinbase, the reward cap, and the
// coinbase height binding. It returns the resulting UTXO snapshot and the
// per-transaction undo log, or aborts with the base state untouched.
func applyTransactions(p Params, blk Block, base *utxo.Set) (*utxo.Set, []TxUndo, error) {
	if len(blk.Transactions) == 0 {
		return nil, nil, chainerr.New(chainerr.Malformed, "block carries no transactions")
	}
	if blk.Transactions[0].Tag != txn.TagCoinbase {
		return nil, nil, chainerr.New(chainerr.Malformed, "first transaction is not a coinbase")
	}
	for _, tx := range blk.Transactions[1:] {
		if tx.Tag == txn.TagCoinbase {
			return nil, nil, chainerr.New(chainerr.Malformed, "more than one coinbase in block")
		}
	}

	cb := blk.Transactions[0].Coinbase
	if cb.BlockHeight != blk.Header.Height {
		return nil, nil, chainerr.New(chainerr.Malformed, "coinbase block_height does not match block height")
	}

	scratch := base.Snapshot()
	undos := make([]TxUndo, 0, len(blk.Transactions))

	var feeTotal geometry.Coord
	for _, tx := range blk.Transactions[1:] {
		if err := tx.StandaloneValidate(); err != nil {
			return nil, nil, err
		}
		if err := statefulValidate(scratch, tx); err != nil {
			return nil, nil, err
		}

		u, err := scratch.Apply(tx)
		if err != nil {
			return nil, nil, err
		}
		undos = append(undos, TxUndo{Tx: tx, Undo: u})

		feeTotal = feeTotal.Add(txFee(tx))
	}

	if !cb.Output.IsValid() {
		return nil, nil, chainerr.New(chainerr.GeometryInvalid, "coinbase output is degenerate")
	}

	reward := p.BlockReward(blk.Header.Height)
	if cb.Output.Area() > reward.Add(feeTotal) {
		return nil, nil, chainerr.New(chainerr.RewardExceeded, "coinbase output area exceeds block reward plus fees")
	}

	u, err := scratch.Apply(blk.Transactions[0])
	if err != nil {
		return nil, nil, err
	}
	undos = append(undos, TxUndo{Tx: blk.Transactions[0], Undo: u})

	return scratch, undos, nil
}

func txFee(tx txn.Transaction) geometry.Coord {
	switch tx.Tag {
	case txn.TagTransfer:
		return tx.Transfer.FeeArea
	case txn.TagSubdivision:
		return tx.Subdivision.Fee
	default:
		return 0
	}
}

// statefulValidate runs the UTXO-dependent checks §4.2 assigns to Transfer
// and Subdivision; Coinbase has none beyond what applyTransactions already
// checked.
func statefulValidate(state *utxo.Set, tx txn.Transaction) error {
	switch tx.Tag {
	case txn.TagTransfer:
		tr := tx.Transfer
		stored, ok := state.Get(tr.InputHash)
		if !ok {
			return chainerr.New(chainerr.UtxoMissing, "transfer input_hash not present")
		}
		if stored.Owner != tr.Sender {
			return chainerr.New(chainerr.UtxoConflict, "transfer sender does not own input")
		}
		if tr.Amount.Add(tr.FeeArea) > stored.Area() {
			return chainerr.New(chainerr.UtxoConflict, "transfer amount+fee_area exceeds triangle area")
		}
		return nil

	case txn.TagSubdivision:
		sd := tx.Subdivision
		parent, ok := state.Get(sd.ParentHash)
		if !ok {
			return chainerr.New(chainerr.UtxoMissing, "subdivision parent_hash not present")
		}
		if parent.Owner != sd.OwnerAddress {
			return chainerr.New(chainerr.UtxoConflict, "subdivision owner_address does not own parent")
		}
		if err := txn.VerifySubdivisionShape(parent, sd); err != nil {
			return err
		}
		return nil

	default:
		return chainerr.New(chainerr.Malformed, "unexpected transaction tag in block body")
	}
}

// now returns the current wall-clock time in Unix seconds. Isolated so
// validation stays a pure function of its explicit arguments wherever
// tests need to pin "now".
func now() int64 {
	return time.Now().Unix()
}
