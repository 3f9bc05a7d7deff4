// Package txn implements TrinityChain's three-variant transaction model:
// Coinbase, Transfer, and Subdivision. The type is a closed tagged sum;
// validation dispatches on Tag rather than hiding the variants behind a
// shared interface, per the consensus design notes.
package txn

import (
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
)

// Tag identifies which of the three transaction variants a Transaction
// carries, and is also the leading byte of its wire encoding.
type Tag uint8

// The three transaction variants, numbered per the wire format.
const (
	TagCoinbase    Tag = 0
	TagTransfer    Tag = 1
	TagSubdivision Tag = 2
)

// MaxMemoBytes bounds the Transfer memo field.
const MaxMemoBytes = 256

// Coinbase mints a brand-new triangle as the block's mining reward. It
// carries no signature: the block itself authorizes it.
type Coinbase struct {
	Output      geometry.Triangle
	Beneficiary [32]byte
	BlockHeight uint64
	ExtraNonce  uint64
}

// Transfer re-owns an existing triangle in place: the stored triangle is
// consumed and re-inserted unchanged except for its Owner field, so its
// canonical hash never changes.
type Transfer struct {
	InputHash [32]byte
	NewOwner  [32]byte
	Sender    [32]byte
	Amount    geometry.Coord
	FeeArea   geometry.Coord
	Nonce     uint64
	Signature [64]byte
	PublicKey []byte
	Memo      []byte
}

// Subdivision consumes a parent triangle and inserts its three subdivided
// children.
type Subdivision struct {
	ParentHash   [32]byte
	Children     [3]geometry.Triangle
	OwnerAddress [32]byte
	Fee          geometry.Coord
	Nonce        uint64
	Signature    [64]byte
	PublicKey    []byte
}

// Transaction is the closed tagged sum of the three variants. Exactly one
// of Coinbase, Transfer, Subdivision is non-nil, selected by Tag.
type Transaction struct {
	Tag         Tag
	Coinbase    *Coinbase
	Transfer    *Transfer
	Subdivision *Subdivision
}

// NewCoinbase wraps a Coinbase in a Transaction.
func NewCoinbase(cb Coinbase) Transaction {
	return Transaction{Tag: TagCoinbase, Coinbase: &cb}
}

// NewTransfer wraps a Transfer in a Transaction.
func NewTransfer(tr Transfer) Transaction {
	return Transaction{Tag: TagTransfer, Transfer: &tr}
}

// NewSubdivision wraps a Subdivision in a Transaction.
func NewSubdivision(sd Subdivision) Transaction {
	return Transaction{Tag: TagSubdivision, Subdivision: &sd}
}
