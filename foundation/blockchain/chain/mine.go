package chain

import (
	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/foundation/blockchain/utxo"
)

// SimulateApplicable filters txs down to the ones that apply cleanly, in
// order, against a scratch copy of base. A mempool snapshot can go stale
// between admission and mining (an input spent by a just-accepted block,
// a Subdivision whose parent another pending transaction already
// consumed), and per spec.md §4.7 a candidate block must never include a
// transaction that would fail applyTransactions: one bad transaction
// would sink the whole block's proof-of-work. Transactions that pass are
// applied to the scratch set before the next is checked, so a chain of
// dependent pending spends within the same batch still lands together.
func SimulateApplicable(base *utxo.Set, txs []txn.Transaction) []txn.Transaction {
	scratch := base.Snapshot()

	kept := make([]txn.Transaction, 0, len(txs))
	for _, tx := range txs {
		if err := tx.StandaloneValidate(); err != nil {
			continue
		}
		if err := statefulValidate(scratch, tx); err != nil {
			continue
		}
		if _, err := scratch.Apply(tx); err != nil {
			continue
		}
		kept = append(kept, tx)
	}
	return kept
}

// CandidateBlock assembles the next block on top of tip, with reward/fee
// accounting and merkle root computed, but no nonce search performed yet.
// extraNonce seeds the coinbase output's vertices; buildCoinbase rolls it
// forward on a UTXO-hash collision. txs is assumed to already apply
// cleanly against the UTXO state tip represents; callers building from a
// live mempool should run it through SimulateApplicable first.
func CandidateBlock(p Params, tip BlockHeader, difficulty uint64, txs []txn.Transaction, beneficiary [32]byte, extraNonce uint64, collides func([32]byte) bool, timestamp int64) (Block, error) {
	height := tip.Height + 1

	feeTotal := geometry.Coord(0)
	for _, tx := range txs {
		feeTotal = feeTotal.Add(txFee(tx))
	}

	reward := p.BlockReward(height)
	cb := buildCoinbase(beneficiary, height, reward.Add(feeTotal), extraNonce, collides)

	all := make([]txn.Transaction, 0, len(txs)+1)
	all = append(all, cb)
	all = append(all, txs...)

	root, err := computeMerkleRoot(all)
	if err != nil {
		return Block{}, chainerr.New(chainerr.Malformed, "candidate merkle root: "+err.Error())
	}

	return Block{
		Header: BlockHeader{
			Height:       height,
			PreviousHash: tip.Hash(),
			Timestamp:    timestamp,
			Difficulty:   difficulty,
			Nonce:        0,
			MerkleRoot:   root,
		},
		Transactions: all,
	}, nil
}

// SearchNonce tries nonces in [start, start+tries) against blk's difficulty,
// mutating blk.Header.Nonce on the winning value. It returns the winning
// block and true, or the unchanged block and false if no nonce in range
// satisfies the target.
func SearchNonce(blk Block, start, tries uint64) (Block, bool) {
	orig := blk.Header.Nonce
	for n := start; n < start+tries; n++ {
		blk.Header.Nonce = n
		if hashMeetsTarget(blk.Header.Hash(), blk.Header.Difficulty) {
			return blk, true
		}
	}
	blk.Header.Nonce = orig
	return blk, false
}
