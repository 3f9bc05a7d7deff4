package chain_test

import (
	"crypto/ecdsa"
	"testing"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/signature"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/foundation/blockchain/utxo"
)

func signedTransferOf(t *testing.T, senderKey *ecdsa.PrivateKey, sender [32]byte, input geometry.Triangle, newOwner [32]byte) txn.Transaction {
	t.Helper()

	tr := txn.Transfer{
		InputHash: input.Hash(),
		NewOwner:  newOwner,
		Sender:    sender,
		Amount:    input.Area(),
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
	return txn.NewTransfer(tr)
}

// TestSimulateApplicableDropsStaleDoubleSpend covers spec.md §4.7 step 3:
// a candidate block must never carry a mempool entry whose application
// against the current UTXO state would fail. Two pending transfers spend
// the same input; only the first can apply.
func TestSimulateApplicableDropsStaleDoubleSpend(t *testing.T) {
	senderKey, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	sender := signature.AddressFromPublicKey(&senderKey.PublicKey)

	input := geometry.Triangle{A: pt(0, 0), B: pt(64, 0), C: pt(0, 64), Owner: sender}

	base := utxo.New()
	if err := base.Insert(input); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var ownerA, ownerB [32]byte
	ownerA[0] = 0x01
	ownerB[0] = 0x02

	first := signedTransferOf(t, senderKey, sender, input, ownerA)
	second := signedTransferOf(t, senderKey, sender, input, ownerB)

	kept := chain.SimulateApplicable(base, []txn.Transaction{first, second})
	if len(kept) != 1 {
		t.Fatalf("kept %d transactions, want 1", len(kept))
	}
	if kept[0].Transfer.NewOwner != ownerA {
		t.Fatalf("kept the wrong transfer: new_owner = %x, want %x", kept[0].Transfer.NewOwner, ownerA)
	}

	// base itself must be untouched: SimulateApplicable works on a scratch copy.
	stored, ok := base.Get(input.Hash())
	if !ok || stored.Owner != sender {
		t.Fatal("SimulateApplicable mutated the base UTXO set")
	}
}

// TestSimulateApplicableDropsUnknownInput covers a pending transfer whose
// input has since been consumed by an already-accepted block: its input
// hash is simply absent from the UTXO state by the time mining runs.
func TestSimulateApplicableDropsUnknownInput(t *testing.T) {
	senderKey, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	sender := signature.AddressFromPublicKey(&senderKey.PublicKey)

	input := geometry.Triangle{A: pt(0, 0), B: pt(64, 0), C: pt(0, 64), Owner: sender}

	base := utxo.New() // input never inserted: already spent and pruned

	var newOwner [32]byte
	newOwner[0] = 0x03
	stale := signedTransferOf(t, senderKey, sender, input, newOwner)

	kept := chain.SimulateApplicable(base, []txn.Transaction{stale})
	if len(kept) != 0 {
		t.Fatalf("kept %d transactions, want 0", len(kept))
	}
}
