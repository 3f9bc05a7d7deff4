package mempool_test

import (
	"testing"

	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/mempool"
	"github.com/trinitychain/trinitychain/foundation/blockchain/signature"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/foundation/blockchain/utxo"
)

func pt(x, y int64) geometry.Point {
	return geometry.Point{X: geometry.FromInt(x), Y: geometry.FromInt(y)}
}

// seededTransfer inserts a fresh triangle owned by a new keypair into state
// and returns a signed Transfer spending it, with the given fee and nonce.
func seededTransfer(t *testing.T, state *utxo.Set, x int64, fee, nonce uint64) txn.Transaction {
	t.Helper()

	key, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}
	owner := signature.AddressFromPublicKey(&key.PublicKey)

	tri := geometry.Triangle{A: pt(x, 0), B: pt(x+64, 0), C: pt(x, 64), Owner: owner}
	if err := state.Insert(tri); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var newOwner [32]byte
	newOwner[0] = 0xAB

	tr := txn.Transfer{
		InputHash: tri.Hash(),
		NewOwner:  newOwner,
		Sender:    owner,
		Amount:    geometry.FromInt(1),
		FeeArea:   geometry.FromInt(int64(fee)),
		Nonce:     nonce,
		PublicKey: signature.PublicKeyBytes(&key.PublicKey),
	}
	tx := txn.NewTransfer(tr)
	sig, err := signature.Sign(tx.SigningDigest(), key)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	tr.Signature = sig

	return txn.NewTransfer(tr)
}

func TestAddRejectsMissingInput(t *testing.T) {
	state := utxo.New()
	mp := mempool.New()

	key, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}
	sender := signature.AddressFromPublicKey(&key.PublicKey)

	var input, newOwner [32]byte
	input[0], newOwner[0] = 1, 2

	tr := txn.Transfer{
		InputHash: input,
		NewOwner:  newOwner,
		Sender:    sender,
		Amount:    geometry.FromInt(1),
		FeeArea:   geometry.FromInt(1),
		PublicKey: signature.PublicKeyBytes(&key.PublicKey),
	}
	tx := txn.NewTransfer(tr)
	sig, err := signature.Sign(tx.SigningDigest(), key)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	tr.Signature = sig
	tx = txn.NewTransfer(tr)

	if err := mp.Add(tx, state); err == nil {
		t.Fatal("expected Add to reject a transfer whose input is not in the UTXO set")
	}
	if mp.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", mp.Count())
	}
}

func TestAddRejectsDoubleSpendInMempool(t *testing.T) {
	state := utxo.New()
	mp := mempool.New()

	key, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}
	sender := signature.AddressFromPublicKey(&key.PublicKey)

	base := geometry.Triangle{A: pt(0, 0), B: pt(64, 0), C: pt(0, 64), Owner: sender}
	if err := state.Insert(base); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	sign := func(nonce uint64, fee int64, newOwner byte) txn.Transaction {
		var no [32]byte
		no[0] = newOwner
		tr := txn.Transfer{
			InputHash: base.Hash(),
			NewOwner:  no,
			Sender:    sender,
			Amount:    geometry.FromInt(1),
			FeeArea:   geometry.FromInt(fee),
			Nonce:     nonce,
			PublicKey: signature.PublicKeyBytes(&key.PublicKey),
		}
		tx := txn.NewTransfer(tr)
		sig, err := signature.Sign(tx.SigningDigest(), key)
		if err != nil {
			t.Fatalf("Sign: %s", err)
		}
		tr.Signature = sig
		return txn.NewTransfer(tr)
	}

	tx1 := sign(1, 5, 0xAA)
	tx2 := sign(2, 3, 0xBB)

	if err := mp.Add(tx1, state); err != nil {
		t.Fatalf("Add tx1: %v", err)
	}
	if err := mp.Add(tx2, state); err == nil {
		t.Fatal("expected second transfer on the same input to be rejected")
	}

	if mp.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", mp.Count())
	}
}

func TestDrainForBlockOrdersByFeeDescending(t *testing.T) {
	state := utxo.New()
	mp := mempool.New()

	fees := []uint64{1, 5, 3}
	for i, fee := range fees {
		tx := seededTransfer(t, state, int64(i)*1000, fee, 1)
		if err := mp.Add(tx, state); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	drained := mp.DrainForBlock(-1)
	if len(drained) != len(fees) {
		t.Fatalf("drained %d transactions, want %d", len(drained), len(fees))
	}

	prevFee := drained[0].Transfer.FeeArea
	for _, tx := range drained[1:] {
		if tx.Transfer.FeeArea > prevFee {
			t.Fatal("drain order is not fee-descending")
		}
		prevFee = tx.Transfer.FeeArea
	}
}

func TestPruneByBlockRemovesConsumedInputs(t *testing.T) {
	state := utxo.New()
	mp := mempool.New()

	tx := seededTransfer(t, state, 0, 2, 1)
	if err := mp.Add(tx, state); err != nil {
		t.Fatalf("Add: %v", err)
	}

	mp.PruneByBlock([][32]byte{tx.Transfer.InputHash})

	if mp.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 after prune", mp.Count())
	}
}

func TestRemoveAndSnapshot(t *testing.T) {
	state := utxo.New()
	mp := mempool.New()

	tx1 := seededTransfer(t, state, 0, 2, 1)
	tx2 := seededTransfer(t, state, 1000, 4, 1)

	if err := mp.Add(tx1, state); err != nil {
		t.Fatalf("Add tx1: %v", err)
	}
	if err := mp.Add(tx2, state); err != nil {
		t.Fatalf("Add tx2: %v", err)
	}

	if len(mp.Snapshot()) != 2 {
		t.Fatalf("Snapshot length = %d, want 2", len(mp.Snapshot()))
	}

	mp.Remove(tx1.ID())
	if mp.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 after Remove", mp.Count())
	}

	snap := mp.Snapshot()
	if len(snap) != 1 || snap[0].ID() != tx2.ID() {
		t.Fatal("expected only tx2 to remain after removing tx1")
	}
}
