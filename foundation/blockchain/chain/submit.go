package chain

import (
	"github.com/holiman/uint256"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
)

// SubmitBlock is the single entry point for accepting a new block, mined
// locally or received from a peer. It routes blk to direct extension,
// orphan staging, or reorg depending on how it links to the current tip.
func (c *Chain) SubmitBlock(blk Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unhealthy {
		return chainerr.New(chainerr.PersistenceError, "chain is unhealthy, refusing further writes")
	}

	tip := c.headers[len(c.headers)-1]

	switch {
	case blk.Header.PreviousHash == tip.Hash():
		if err := c.applyNext(blk); err != nil {
			return err
		}
		c.resubmitOrphans(blk.Hash())
		return nil

	case blk.Header.Height > tip.Height+1:
		c.orphans.add(blk)
		c.ev("chain: submit: orphaned: height[%d] hash[%x] (tip height[%d])", blk.Header.Height, blk.Hash(), tip.Height)
		return nil

	case blk.Header.Height <= tip.Height:
		return c.reorgTo(blk)

	default:
		// blk.Header.Height == tip.Height+1 but previous_hash mismatches:
		// a competing block at the next height. Treat it the same as a
		// same-height fork candidate.
		return c.reorgTo(blk)
	}
}

// applyNext validates blk against the current tip/UTXO/difficulty,
// commits it to the store, and advances in-memory state. Caller must
// hold c.mu for writing.
func (c *Chain) applyNext(blk Block) error {
	tip := c.headers[len(c.headers)-1]
	expected := c.expectedDifficulty(blk.Header.Height)

	scratch, undos, err := validateBlock(c.params, blk, tip, c.recentTimestamps(), c.utxoState, expected)
	if err != nil {
		return err
	}

	insert, remove := utxoDiff(scratch, undos)

	newDifficulty := c.maybeRetarget(blk, expected)

	meta := Metadata{
		TipHash:        blk.Hash(),
		TipHeight:      blk.Header.Height,
		Difficulty:     newDifficulty,
		CumulativeWork: new(uint256.Int).Add(c.cumulativeWorkOf(), work(blk.Header.Difficulty)),
	}

	if err := c.store.AppendBlock(blk, insert, remove, meta); err != nil {
		c.unhealthy = true
		return chainerr.New(chainerr.PersistenceError, "append block: "+err.Error())
	}

	c.headers = append(c.headers, blk.Header)
	c.undoLog = append(c.undoLog, undos)
	c.blocksByID[blk.Hash()] = blk.Header.Height
	c.utxoState = scratch
	c.difficulty = newDifficulty

	consumed := make([][32]byte, 0, len(remove))
	consumed = append(consumed, remove...)
	for _, tu := range undos {
		if tu.Tx.Tag == txn.TagTransfer {
			consumed = append(consumed, tu.Tx.Transfer.InputHash)
		}
	}
	c.mempool.PruneByBlock(consumed)

	c.ev("chain: submit: accepted: height[%d] hash[%x] difficulty[%d]", blk.Header.Height, blk.Hash(), newDifficulty)
	c.tipEvents.Send(blk.Header)

	return nil
}

// expectedDifficulty returns the difficulty a block at height must declare,
// which is always the chain's current difficulty, c.difficulty, whatever
// the height. Retargeting is computed when the block closing a window is
// applied, so that block itself must match the old value; the new value
// takes effect starting with the following block.
func (c *Chain) expectedDifficulty(height uint64) uint64 {
	return c.difficulty
}

// maybeRetarget returns the difficulty that should apply after blk, which
// is oldDifficulty unless blk closes a difficulty window, in which case it
// is the retargeted value computed from the window's actual elapsed time.
func (c *Chain) maybeRetarget(blk Block, oldDifficulty uint64) uint64 {
	window := c.params.DifficultyWindow
	height := blk.Header.Height

	if window == 0 || (height+1)%window != 0 {
		return oldDifficulty
	}

	if height+1 < window {
		return oldDifficulty
	}
	windowStartHeight := height + 1 - window

	startHeader := c.headers[windowStartHeight]
	return retarget(c.params, oldDifficulty, startHeader.Timestamp, blk.Header.Timestamp)
}

// resubmitOrphans re-admits every orphan block that was waiting on
// parentHash, now that it has become part of the chain. Caller must hold
// c.mu for writing.
func (c *Chain) resubmitOrphans(parentHash [32]byte) {
	waiting := c.orphans.take(parentHash)
	for _, blk := range waiting {
		if err := c.applyNext(blk); err != nil {
			c.ev("chain: resubmit: orphan rejected: height[%d] hash[%x] err[%s]", blk.Header.Height, blk.Hash(), err)
			continue
		}
		c.resubmitOrphans(blk.Hash())
	}
}
