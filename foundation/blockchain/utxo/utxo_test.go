package utxo_test

import (
	"testing"

	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/foundation/blockchain/utxo"
)

func pt(x, y int64) geometry.Point {
	return geometry.Point{X: geometry.FromInt(x), Y: geometry.FromInt(y)}
}

func TestApplyCoinbaseThenUndo(t *testing.T) {
	set := utxo.New()

	var beneficiary [32]byte
	beneficiary[0] = 1

	tri := geometry.Triangle{A: pt(0, 0), B: pt(32, 0), C: pt(0, 32), Owner: beneficiary}
	tx := txn.NewCoinbase(txn.Coinbase{Output: tri, Beneficiary: beneficiary, BlockHeight: 1})

	u, err := set.Apply(tx)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !set.Contains(tri.Hash()) {
		t.Fatal("expected coinbase output to be present after apply")
	}

	if err := set.Undo(tx, u); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if set.Contains(tri.Hash()) {
		t.Fatal("expected coinbase output to be absent after undo")
	}
}

func TestApplyTransferReownsInPlace(t *testing.T) {
	set := utxo.New()

	var sender, receiver [32]byte
	sender[0], receiver[0] = 1, 2

	tri := geometry.Triangle{A: pt(0, 0), B: pt(32, 0), C: pt(0, 32), Owner: sender}
	h := tri.Hash()

	if err := set.Insert(tri); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	tr := txn.NewTransfer(txn.Transfer{
		InputHash: h,
		NewOwner:  receiver,
		Sender:    sender,
		Amount:    tri.Area().Sub(geometry.FromInt(1)),
		FeeArea:   geometry.FromInt(1),
	})

	if _, err := set.Apply(tr); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, ok := set.Get(h)
	if !ok {
		t.Fatal("expected triangle to still be present after transfer")
	}
	if got.Owner != receiver {
		t.Fatalf("owner = %x, want %x", got.Owner, receiver)
	}
	if len(set.IterByOwner(sender)) != 0 {
		t.Fatal("expected sender to own zero triangles after transfer")
	}
	if len(set.IterByOwner(receiver)) != 1 {
		t.Fatal("expected receiver to own one triangle after transfer")
	}
}

func TestApplySubdivisionAreaConservation(t *testing.T) {
	set := utxo.New()

	var owner [32]byte
	owner[0] = 9

	parent := geometry.Triangle{A: pt(0, 0), B: pt(64, 0), C: pt(0, 64), Owner: owner}
	if err := set.Insert(parent); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	children := parent.Subdivide(owner)
	sd := txn.NewSubdivision(txn.Subdivision{
		ParentHash:   parent.Hash(),
		Children:     children,
		OwnerAddress: owner,
	})

	if _, err := set.Apply(sd); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if set.Contains(parent.Hash()) {
		t.Fatal("expected parent to be removed after subdivision")
	}

	var sum geometry.Coord
	for _, c := range children {
		if !set.Contains(c.Hash()) {
			t.Fatal("expected child to be present after subdivision")
		}
		sum = sum.Add(c.Area())
	}

	want := parent.Area().Mul(geometry.FromInt(3)).Shr(2)
	if sum != want {
		t.Fatalf("sum of children = %v, want %v", sum, want)
	}
}

func TestDoubleInsertRejected(t *testing.T) {
	set := utxo.New()
	tri := geometry.Triangle{A: pt(0, 0), B: pt(32, 0), C: pt(0, 32)}

	if err := set.Insert(tri); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := set.Insert(tri); err == nil {
		t.Fatal("expected second insert of the same hash to fail")
	}
}
