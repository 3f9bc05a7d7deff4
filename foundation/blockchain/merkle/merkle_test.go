package merkle_test

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/trinitychain/trinitychain/foundation/blockchain/merkle"
)

// leaf is a minimal Hashable value used to exercise the tree without
// depending on the transaction package.
type leaf struct {
	id byte
}

func (l leaf) Hash() ([]byte, error) {
	h := sha256.Sum256([]byte{l.id})
	return h[:], nil
}

func (l leaf) Equals(other leaf) bool {
	return l.id == other.id
}

func TestTreeEvenLeaves(t *testing.T) {
	values := []leaf{{1}, {2}, {3}, {4}}

	tree, err := merkle.NewTree(values)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}

	if err := tree.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if len(tree.Values()) != 4 {
		t.Fatalf("Values() length = %d, want 4", len(tree.Values()))
	}
}

func TestTreeOddLeavesDuplicatesLast(t *testing.T) {
	values := []leaf{{1}, {2}, {3}}

	tree, err := merkle.NewTree(values)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}

	if len(tree.Leafs) != 4 {
		t.Fatalf("internal leaf count = %d, want 4 (duplicated last)", len(tree.Leafs))
	}

	if len(tree.Values()) != 3 {
		t.Fatalf("Values() length = %d, want 3", len(tree.Values()))
	}

	if err := tree.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestTreeRootDeterministic(t *testing.T) {
	values := []leaf{{1}, {2}, {3}}

	t1, err := merkle.NewTree(values)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}

	t2, err := merkle.NewTree(values)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}

	if !bytes.Equal(t1.MerkleRoot, t2.MerkleRoot) {
		t.Fatal("two trees over identical values produced different roots")
	}
}

func TestEmptyTreeRejected(t *testing.T) {
	if _, err := merkle.NewTree([]leaf{}); err == nil {
		t.Fatal("expected error constructing a tree with no content")
	}
}
