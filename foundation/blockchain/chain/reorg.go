package chain

import (
	"github.com/holiman/uint256"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/foundation/blockchain/utxo"
)

// chainSnapshot is enough state to restore the chain to exactly where it
// was before an attempted reorg, so a failure midway through applying the
// side chain can be undone as a whole per spec.md §4.5's all-or-nothing
// reorg rule.
type chainSnapshot struct {
	headers    []BlockHeader
	undoLog    [][]TxUndo
	blocksByID map[[32]byte]uint64
	utxoState  *utxo.Set
	difficulty uint64
}

func (c *Chain) snapshot() chainSnapshot {
	blocksByID := make(map[[32]byte]uint64, len(c.blocksByID))
	for k, v := range c.blocksByID {
		blocksByID[k] = v
	}
	return chainSnapshot{
		headers:    append([]BlockHeader{}, c.headers...),
		undoLog:    append([][]TxUndo{}, c.undoLog...),
		blocksByID: blocksByID,
		utxoState:  c.utxoState.Snapshot(),
		difficulty: c.difficulty,
	}
}

func (c *Chain) restore(s chainSnapshot) {
	c.headers = s.headers
	c.undoLog = s.undoLog
	c.blocksByID = s.blocksByID
	c.utxoState = s.utxoState
	c.difficulty = s.difficulty
}

// reorgTo handles a single competing block that does not extend the
// current tip directly: it locates the common ancestor by previous_hash
// and attempts a one-block reorg. Unknown ancestors are staged as orphans
// rather than rejected outright, since the missing parent may still
// arrive. Caller must hold c.mu for writing.
func (c *Chain) reorgTo(blk Block) error {
	ancestorHeight, ok := c.blocksByID[blk.Header.PreviousHash]
	if !ok {
		c.orphans.add(blk)
		c.ev("chain: submit: competing block orphaned: height[%d] hash[%x]", blk.Header.Height, blk.Hash())
		return nil
	}
	return c.Reorg(ancestorHeight, []Block{blk})
}

// Reorg implements spec.md §4.5's fork-resolution rule: sideChain, which
// must extend the block at ancestorHeight, replaces the current chain iff
// its cumulative work strictly exceeds the current tip's. The switch is
// all-or-nothing: any failure applying a side-chain block reverts fully to
// the chain as it was before Reorg was called.
func (c *Chain) Reorg(ancestorHeight uint64, sideChain []Block) error {
	if ancestorHeight >= uint64(len(c.headers)) {
		return chainerr.New(chainerr.ChainLink, "reorg: ancestor height beyond known chain")
	}

	ancestorWork := cumulativeWork(c.headers[:ancestorHeight+1])
	candidateWork := new(uint256.Int).Set(ancestorWork)
	for _, blk := range sideChain {
		candidateWork = new(uint256.Int).Add(candidateWork, work(blk.Header.Difficulty))
	}

	if candidateWork.Cmp(c.cumulativeWorkOf()) <= 0 {
		c.ev("chain: reorg: rejected, insufficient work: ancestor height[%d]", ancestorHeight)
		return nil
	}

	saved := c.snapshot()

	for h := len(c.headers) - 1; h > int(ancestorHeight); h-- {
		if err := undoBlock(c.utxoState, c.undoLog[h]); err != nil {
			c.restore(saved)
			return chainerr.New(chainerr.ReorgFailed, "reorg: undo to ancestor failed: "+err.Error())
		}
		delete(c.blocksByID, c.headers[h].Hash())
		for _, tu := range c.undoLog[h] {
			if tu.Tx.Tag != txn.TagCoinbase {
				_ = c.mempool.Add(tu.Tx, c.utxoState)
			}
		}
	}
	c.headers = c.headers[:ancestorHeight+1]
	c.undoLog = c.undoLog[:ancestorHeight+1]
	c.difficulty = recomputeDifficulty(c.params, c.headers)

	ancestorMeta := Metadata{
		TipHash:        c.headers[ancestorHeight].Hash(),
		TipHeight:      ancestorHeight,
		Difficulty:     c.difficulty,
		CumulativeWork: ancestorWork,
	}
	if err := c.store.RevertTo(ancestorHeight, c.utxoState.All(), ancestorMeta); err != nil {
		c.unhealthy = true
		c.restore(saved)
		return chainerr.New(chainerr.PersistenceError, "reorg: revert store to ancestor failed: "+err.Error())
	}

	for _, blk := range sideChain {
		if err := c.applyNext(blk); err != nil {
			c.restore(saved)
			return chainerr.New(chainerr.ReorgFailed, "reorg: side chain rejected: "+err.Error())
		}
	}

	c.ev("chain: reorg: switched: ancestor height[%d] new tip height[%d] hash[%x]",
		ancestorHeight, c.headers[len(c.headers)-1].Height, c.headers[len(c.headers)-1].Hash())
	return nil
}
