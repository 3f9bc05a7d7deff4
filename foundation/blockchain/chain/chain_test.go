package chain_test

import (
	"testing"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/signature"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
)

func pt(x, y int64) geometry.Point {
	return geometry.Point{X: geometry.FromInt(x), Y: geometry.FromInt(y)}
}

func newTestChain(t *testing.T) (*chain.Chain, chain.Params) {
	t.Helper()

	p := chain.Fast()
	c, err := chain.New(chain.Config{Params: p, Store: newMemStore()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, p
}

// mineOn builds and solves a candidate block extending tip at the given
// difficulty. Fast()'s MinDifficulty keeps the search trivially short.
func mineOn(t *testing.T, c *chain.Chain, p chain.Params, tip chain.BlockHeader, difficulty uint64, txs []txn.Transaction, beneficiary [32]byte, timestamp int64) chain.Block {
	t.Helper()

	collides := func(h [32]byte) bool {
		_, ok := c.GetUTXO(h)
		return ok
	}

	blk, err := chain.CandidateBlock(p, tip, difficulty, txs, beneficiary, 0, collides, timestamp)
	if err != nil {
		t.Fatalf("CandidateBlock: %v", err)
	}

	solved, ok := chain.SearchNonce(blk, 0, 1_000_000)
	if !ok {
		t.Fatalf("SearchNonce: no solution found within range")
	}
	return solved
}

func TestGenesisInitialization(t *testing.T) {
	c, p := newTestChain(t)

	tip := c.Tip()
	if tip.Height != 0 {
		t.Fatalf("genesis height = %d, want 0", tip.Height)
	}
	if tip.Difficulty != p.MinDifficulty {
		t.Fatalf("genesis difficulty = %d, want %d", tip.Difficulty, p.MinDifficulty)
	}

	stats := c.Stats()
	if stats.UTXOCount != 1 {
		t.Fatalf("UTXOCount = %d, want 1 (genesis coinbase)", stats.UTXOCount)
	}
}

func TestMineAndSubmitBlock(t *testing.T) {
	c, p := newTestChain(t)

	var beneficiary [32]byte
	beneficiary[0] = 0x42

	blk := mineOn(t, c, p, c.Tip(), c.Difficulty(), nil, beneficiary, p.GenesisTimestamp+int64(p.TargetBlockTime))
	if err := c.SubmitBlock(blk); err != nil {
		t.Fatalf("SubmitBlock: %v", err)
	}

	if c.Tip().Height != 1 {
		t.Fatalf("tip height = %d, want 1", c.Tip().Height)
	}
}

func TestTransferRoundTrip(t *testing.T) {
	c, p := newTestChain(t)

	senderKey, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	sender := signature.AddressFromPublicKey(&senderKey.PublicKey)

	blk1 := mineOn(t, c, p, c.Tip(), c.Difficulty(), nil, sender, p.GenesisTimestamp+int64(p.TargetBlockTime))
	if err := c.SubmitBlock(blk1); err != nil {
		t.Fatalf("SubmitBlock block1: %v", err)
	}

	cb := blk1.Transactions[0].Coinbase
	inputHash := cb.Output.Hash()

	var newOwner [32]byte
	newOwner[0] = 0x99

	tr := txn.Transfer{
		InputHash: inputHash,
		NewOwner:  newOwner,
		Sender:    sender,
		Amount:    cb.Output.Area(),
		FeeArea:   geometry.FromInt(0),
		Nonce:     1,
		PublicKey: signature.PublicKeyBytes(&senderKey.PublicKey),
	}
	tx := txn.NewTransfer(tr)
	sig, err := signature.Sign(tx.SigningDigest(), senderKey)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tr.Signature = sig
	tx = txn.NewTransfer(tr)

	if err := c.SubmitTransaction(tx); err != nil {
		t.Fatalf("SubmitTransaction: %v", err)
	}

	blk2 := mineOn(t, c, p, c.Tip(), c.Difficulty(), c.MempoolSnapshot(), sender, blk1.Header.Timestamp+int64(p.TargetBlockTime))
	if err := c.SubmitBlock(blk2); err != nil {
		t.Fatalf("SubmitBlock block2: %v", err)
	}

	reowned, ok := c.GetUTXO(inputHash)
	if !ok {
		t.Fatal("expected transferred triangle to remain present under its hash")
	}
	if reowned.Owner != newOwner {
		t.Fatalf("owner = %x, want %x", reowned.Owner, newOwner)
	}
}

func TestSubmitTransactionRejectsUnknownInput(t *testing.T) {
	c, _ := newTestChain(t)

	key, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	sender := signature.AddressFromPublicKey(&key.PublicKey)

	tr := txn.Transfer{
		InputHash: [32]byte{0xFF},
		NewOwner:  [32]byte{0x01},
		Sender:    sender,
		Amount:    geometry.FromInt(1),
		FeeArea:   geometry.FromInt(0),
		Nonce:     1,
		PublicKey: signature.PublicKeyBytes(&key.PublicKey),
	}
	tx := txn.NewTransfer(tr)
	sig, _ := signature.Sign(tx.SigningDigest(), key)
	tr.Signature = sig
	tx = txn.NewTransfer(tr)

	if err := c.SubmitTransaction(tx); err == nil {
		t.Fatal("expected unknown input to be rejected")
	}
}

func TestReorgSwitchesTipOnGreaterWork(t *testing.T) {
	store := newMemStore()
	p := chain.Fast()
	c, err := chain.New(chain.Config{Params: p, Store: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var beneficiary [32]byte
	beneficiary[0] = 0x01

	genesis := c.Tip()

	blkA := mineOn(t, c, p, genesis, c.Difficulty(), nil, beneficiary, p.GenesisTimestamp+int64(p.TargetBlockTime))
	if err := c.SubmitBlock(blkA); err != nil {
		t.Fatalf("SubmitBlock A: %v", err)
	}
	if c.Tip().Hash() != blkA.Hash() {
		t.Fatal("expected A to become tip")
	}
	blkACoinbase := blkA.Transactions[0].Coinbase.Output.Hash()

	var beneficiaryB [32]byte
	beneficiaryB[0] = 0x02
	blkB := mineOn(t, c, p, genesis, c.Difficulty(), nil, beneficiaryB, p.GenesisTimestamp+int64(p.TargetBlockTime)+1)
	blkC := mineOn(t, c, p, blkB.Header, c.Difficulty(), nil, beneficiaryB, blkB.Header.Timestamp+int64(p.TargetBlockTime))
	blkBCoinbase := blkB.Transactions[0].Coinbase.Output.Hash()
	blkCCoinbase := blkC.Transactions[0].Coinbase.Output.Hash()

	if err := c.Reorg(genesis.Height, []chain.Block{blkB, blkC}); err != nil {
		t.Fatalf("Reorg: %v", err)
	}

	if c.Tip().Hash() != blkC.Hash() {
		t.Fatalf("tip = %x, want side chain tip %x", c.Tip().Hash(), blkC.Hash())
	}
	if c.Tip().Height != 2 {
		t.Fatalf("tip height = %d, want 2", c.Tip().Height)
	}

	// The store, not just the in-memory chain, must reflect the switch: A's
	// coinbase output is gone and B/C's are present, so a reload replays
	// the same UTXO set the live chain now holds.
	if _, ok, _ := store.GetUTXO(blkACoinbase); ok {
		t.Fatal("store still holds the undone A block's coinbase output")
	}
	if _, ok, _ := store.GetUTXO(blkBCoinbase); !ok {
		t.Fatal("store missing B's coinbase output after reorg")
	}
	if _, ok, _ := store.GetUTXO(blkCCoinbase); !ok {
		t.Fatal("store missing C's coinbase output after reorg")
	}

	reloaded, err := chain.New(chain.Config{Params: p, Store: store})
	if err != nil {
		t.Fatalf("reload after reorg: %v", err)
	}
	if reloaded.Stats().UTXOCount != c.Stats().UTXOCount {
		t.Fatalf("reloaded UTXOCount = %d, want %d (matching live chain)",
			reloaded.Stats().UTXOCount, c.Stats().UTXOCount)
	}
}

func TestDifficultyRetargetsAtWindowBoundary(t *testing.T) {
	c, p := newTestChain(t)

	var beneficiary [32]byte
	beneficiary[0] = 0x07

	tip := c.Tip()
	ts := p.GenesisTimestamp
	for i := uint64(0); i < p.DifficultyWindow; i++ {
		// Blocks arrive much faster than TargetBlockTime, so the window
		// should retarget difficulty upward once it closes.
		ts += 1
		blk := mineOn(t, c, p, tip, c.Difficulty(), nil, beneficiary, ts)
		if err := c.SubmitBlock(blk); err != nil {
			t.Fatalf("SubmitBlock height[%d]: %v", i+1, err)
		}
		tip = c.Tip()
	}

	if c.Difficulty() <= p.MinDifficulty {
		t.Fatalf("difficulty = %d, want > %d after a fast window", c.Difficulty(), p.MinDifficulty)
	}
}
