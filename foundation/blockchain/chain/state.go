package chain

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/mempool"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/foundation/blockchain/utxo"
	"github.com/trinitychain/trinitychain/foundation/events"
)

// EvHandler is called to report consensus progress (block acceptance,
// reorg, retarget, orphan handling). It must never block: callers that
// wire it to I/O (a logger, a metrics sink) are responsible for that.
type EvHandler func(s string, args ...any)

// Config configures a Chain at construction.
type Config struct {
	Params    Params
	Store     Store
	EvHandler EvHandler
}

// Chain is the single authoritative writer of blockchain state: the
// ordered block sequence, the current UTXO set, the current difficulty,
// and the mempool that stages transactions for the next block. All
// mutations serialize on mu; readers take the read side and observe a
// consistent snapshot, per spec.md §5.
type Chain struct {
	mu sync.RWMutex

	params Params
	store  Store
	ev     EvHandler

	headers    []BlockHeader
	undoLog    [][]TxUndo
	blocksByID map[[32]byte]uint64 // hash -> height

	utxoState  *utxo.Set
	difficulty uint64

	mempool *mempool.Mempool
	orphans *orphanPool

	tipEvents *events.Events[BlockHeader]

	unhealthy bool // latched true on any PersistenceError; refuses further writes
}

func safeEv(ev EvHandler) EvHandler {
	if ev != nil {
		return ev
	}
	return func(string, ...any) {}
}

// New constructs a Chain, loading prior state from cfg.Store if any exists,
// or initializing from cfg.Params.Genesis() otherwise.
func New(cfg Config) (*Chain, error) {
	ev := safeEv(cfg.EvHandler)

	c := &Chain{
		params:     cfg.Params,
		store:      cfg.Store,
		ev:         ev,
		blocksByID: make(map[[32]byte]uint64),
		utxoState:  utxo.New(),
		mempool:    mempool.New(),
		orphans:    newOrphanPool(),
		tipEvents:  newTipEvents(),
	}

	meta, err := cfg.Store.LoadChainMetadata()
	if err != nil {
		return nil, chainerr.New(chainerr.PersistenceError, "load chain metadata: "+err.Error())
	}

	if meta.TipHeight == 0 && meta.TipHash == ([32]byte{}) {
		if err := c.initGenesis(); err != nil {
			return nil, err
		}
		return c, nil
	}

	if err := c.loadFromStore(meta); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Chain) initGenesis() error {
	genesis := c.params.Genesis()
	c.headers = []BlockHeader{genesis.Header}
	c.undoLog = [][]TxUndo{nil}
	c.blocksByID[genesis.Hash()] = 0
	c.difficulty = c.params.MinDifficulty

	cb := genesis.Transactions[0].Coinbase
	if err := c.utxoState.Insert(cb.Output); err != nil {
		return chainerr.New(chainerr.Malformed, "genesis output already present: "+err.Error())
	}

	meta := Metadata{
		TipHash:        genesis.Hash(),
		TipHeight:       0,
		Difficulty:     c.difficulty,
		CumulativeWork: work(c.difficulty),
	}
	if err := c.store.AppendBlock(genesis, []geometry.Triangle{cb.Output}, nil, meta); err != nil {
		c.unhealthy = true
		return chainerr.New(chainerr.PersistenceError, "append genesis: "+err.Error())
	}

	c.ev("chain: init: genesis committed: height[0] hash[%x]", genesis.Hash())
	return nil
}

func (c *Chain) loadFromStore(meta Metadata) error {
	for h := uint64(0); h <= meta.TipHeight; h++ {
		blk, ok, err := c.store.GetBlockByHeight(h)
		if err != nil {
			return chainerr.New(chainerr.PersistenceError, "load block by height: "+err.Error())
		}
		if !ok {
			return chainerr.New(chainerr.PersistenceError, "missing block at height during load")
		}
		c.headers = append(c.headers, blk.Header)
		c.undoLog = append(c.undoLog, nil) // undo history is not needed once loaded from a committed store
		c.blocksByID[blk.Hash()] = h
	}

	c.difficulty = meta.Difficulty

	if err := c.store.IterateUTXOs(func(t geometry.Triangle) bool {
		_ = c.utxoState.Insert(t)
		return true
	}); err != nil {
		return chainerr.New(chainerr.PersistenceError, "iterate utxos: "+err.Error())
	}

	c.ev("chain: init: loaded from store: height[%d]", meta.TipHeight)
	return nil
}

// Tip returns the header of the current best block.
func (c *Chain) Tip() BlockHeader {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.headers[len(c.headers)-1]
}

// Difficulty returns the current difficulty.
func (c *Chain) Difficulty() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.difficulty
}

// GetBlock returns the block at the given hash.
func (c *Chain) GetBlock(hash [32]byte) (Block, bool, error) {
	c.mu.RLock()
	_, known := c.blocksByID[hash]
	c.mu.RUnlock()

	if !known {
		return Block{}, false, nil
	}
	return c.store.GetBlockByHash(hash)
}

// GetBlockByHeight returns the block at height, if any.
func (c *Chain) GetBlockByHeight(height uint64) (Block, bool, error) {
	return c.store.GetBlockByHeight(height)
}

// GetUTXO returns the triangle stored under h, if any.
func (c *Chain) GetUTXO(h [32]byte) (geometry.Triangle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.utxoState.Get(h)
}

// IterUTXOsByOwner returns every triangle hash currently owned by addr.
func (c *Chain) IterUTXOsByOwner(addr [32]byte) [][32]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.utxoState.IterByOwner(addr)
}

// MempoolSnapshot returns every pending transaction in drain order.
func (c *Chain) MempoolSnapshot() []txn.Transaction {
	return c.mempool.Snapshot()
}

// MinableTransactions returns the pending transactions that currently
// apply cleanly against the tip UTXO state, in the order a candidate
// block should carry them. It runs the mempool snapshot through
// SimulateApplicable against a scratch copy of the live UTXO set, so a
// transaction that went stale between admission and mining (its input
// spent by a just-accepted block, its parent consumed by an earlier
// entry in the same snapshot) is dropped rather than sinking the whole
// candidate at SubmitBlock time.
func (c *Chain) MinableTransactions() []txn.Transaction {
	c.mu.RLock()
	base := c.utxoState
	c.mu.RUnlock()

	return SimulateApplicable(base, c.mempool.Snapshot())
}

// SubmitTransaction admits tx into the mempool after standalone and
// stateful validation against the current tip UTXO state.
func (c *Chain) SubmitTransaction(tx txn.Transaction) error {
	c.mu.RLock()
	snapshot := c.utxoState
	c.mu.RUnlock()

	return c.mempool.Add(tx, snapshot)
}

// recentTimestamps returns up to medianTimestampWindow trailing header
// timestamps, most-recent last.
func (c *Chain) recentTimestamps() []int64 {
	n := len(c.headers)
	start := n - medianTimestampWindow
	if start < 0 {
		start = 0
	}

	out := make([]int64, 0, n-start)
	for _, h := range c.headers[start:n] {
		out = append(out, h.Timestamp)
	}
	return out
}

// cumulativeWorkOf returns the cumulative work of the current in-memory
// header chain.
func (c *Chain) cumulativeWorkOf() *uint256.Int {
	return cumulativeWork(c.headers)
}
