// Package miner drives the proof-of-work search that turns pending
// mempool transactions into a new block. It is grounded on the teacher's
// powWorker channel-based start/cancel pattern (worker_pow.go), retargeted
// from HTTP peer fan-out to TrinityChain's in-process chain.SubmitBlock
// seam, and from a single endless nonce loop to one bounded by extra_nonce
// rollover per spec's coinbase-minting rule.
package miner

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
)

// nonceChunk is how many nonces the search tries between cancellation
// polls; a progress line is logged every fifth chunk, mirroring the
// teacher's attempts%N logging cadence.
const nonceChunk = 200_000

// maxExtraNonceRolls bounds how many times a candidate block is rebuilt
// with a fresh coinbase seed after exhausting a full nonce sweep, before
// runMiningOperation gives up and waits for the next signal. In practice
// a single extra_nonce's 2^64 nonce space is never exhausted; this exists
// so a pathological difficulty/target combination cannot spin forever.
const maxExtraNonceRolls = 64

// Worker mines against a single chain.Chain, one block at a time,
// cancellable mid-search through SignalCancelMining.
type Worker struct {
	c           *chain.Chain
	params      chain.Params
	beneficiary [32]byte
	ev          chain.EvHandler

	wg           sync.WaitGroup
	shut         chan struct{}
	startMining  chan bool
	cancelMining chan chan struct{}
}

// New constructs a Worker. ev may be nil.
func New(c *chain.Chain, params chain.Params, beneficiary [32]byte, ev chain.EvHandler) *Worker {
	if ev == nil {
		ev = func(string, ...any) {}
	}
	return &Worker{
		c:            c,
		params:       params,
		beneficiary:  beneficiary,
		ev:           ev,
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		cancelMining: make(chan chan struct{}, 1),
	}
}

// Start launches the mining goroutine and kicks off an initial attempt.
func (w *Worker) Start() {
	w.wg.Add(1)
	started := make(chan struct{})
	go func() {
		defer w.wg.Done()
		close(started)
		w.miningOperations()
	}()
	<-started

	w.SignalStartMining()
}

// Shutdown cancels any in-flight search and waits for the worker goroutine
// to exit.
func (w *Worker) Shutdown() {
	w.ev("miner: shutdown: started")
	defer w.ev("miner: shutdown: completed")

	done := w.SignalCancelMining()
	done()

	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining requests a mining attempt. A pending signal already
// queued is left alone.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
}

// SignalCancelMining interrupts an in-flight search. The returned done
// func must be called once the caller has finished any state change that
// depended on mining being stopped; runMiningOperation will not return
// until it is.
func (w *Worker) SignalCancelMining() (done func()) {
	wait := make(chan struct{})
	select {
	case w.cancelMining <- wait:
	default:
	}
	return func() { close(wait) }
}

func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

func (w *Worker) miningOperations() {
	w.ev("miner: miningOperations: started")
	defer w.ev("miner: miningOperations: completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			return
		}
	}
}

// runMiningOperation builds a candidate block from the current mempool and
// tip, searches for a solving nonce, and submits the result to the chain.
// A cancel request (SignalCancelMining) interrupts the search; the caller
// can always re-signal once the interrupting change has settled.
func (w *Worker) runMiningOperation() {
	w.ev("miner: runMiningOperation: started")
	defer w.ev("miner: runMiningOperation: completed")

	select {
	case <-w.cancelMining:
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wait chan struct{}
	defer func() {
		if wait != nil {
			<-wait
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()
		select {
		case wait = <-w.cancelMining:
			w.ev("miner: runMiningOperation: cancel requested")
		case <-ctx.Done():
		}
	}()

	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		blk, ok, err := w.mineBlock(ctx)
		if err != nil {
			w.ev("miner: runMiningOperation: ERROR: %s", err)
			return
		}
		if !ok {
			w.ev("miner: runMiningOperation: CANCELLED: no solution found before interrupt")
			return
		}

		w.ev("miner: runMiningOperation: SOLVED: height[%d] hash[%x]", blk.Header.Height, blk.Hash())
		if err := w.c.SubmitBlock(blk); err != nil {
			w.ev("miner: runMiningOperation: SubmitBlock: ERROR: %s", err)
		}
	}()

	wg.Wait()
}

// mineBlock assembles a candidate on top of the current tip and searches
// for a solving nonce, rebuilding the candidate with a fresh extra_nonce
// (and so a fresh coinbase seed and timestamp) every time a full sweep of
// nonceChunk-sized windows comes up empty.
func (w *Worker) mineBlock(ctx context.Context) (chain.Block, bool, error) {
	tip := w.c.Tip()
	difficulty := w.c.Difficulty()
	txs := w.c.MinableTransactions()

	for roll := uint64(0); roll < maxExtraNonceRolls; roll++ {
		if ctx.Err() != nil {
			return chain.Block{}, false, nil
		}

		extraNonce := randomExtraNonce()
		timestamp := time.Now().Unix()

		collides := func(h [32]byte) bool {
			_, ok := w.c.GetUTXO(h)
			return ok
		}

		blk, err := chain.CandidateBlock(w.params, tip, difficulty, txs, w.beneficiary, extraNonce, collides, timestamp)
		if err != nil {
			return chain.Block{}, false, err
		}

		var attempts uint64
		for start := uint64(0); ; start += nonceChunk {
			if ctx.Err() != nil {
				return chain.Block{}, false, nil
			}

			solved, ok := chain.SearchNonce(blk, start, nonceChunk)
			attempts += nonceChunk
			if ok {
				return solved, true, nil
			}
			if start > ^uint64(0)-nonceChunk*2 {
				break // exhausted this extra_nonce's sweep, roll to the next
			}
			if attempts%(nonceChunk*5) == 0 {
				w.ev("miner: mineBlock: attempts[%d] extra_nonce[%d]", attempts, extraNonce)
			}
		}
	}

	return chain.Block{}, false, nil
}

func randomExtraNonce() uint64 {
	return rand.Uint64()
}
