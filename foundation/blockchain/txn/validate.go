package txn

import (
	"github.com/trinitychain/trinitychain/foundation/blockchain/chainerr"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/signature"
)

var zeroAddress [32]byte

// StandaloneValidate runs every check that does not require UTXO state:
// field bounds, variant-specific shape, and signature verification.
func (t Transaction) StandaloneValidate() error {
	switch t.Tag {
	case TagCoinbase:
		return t.Coinbase.standaloneValidate()
	case TagTransfer:
		return t.Transfer.standaloneValidate()
	case TagSubdivision:
		return t.Subdivision.standaloneValidate()
	default:
		return chainerr.New(chainerr.Malformed, "unknown transaction tag")
	}
}

func (cb *Coinbase) standaloneValidate() error {
	if cb == nil {
		return chainerr.New(chainerr.Malformed, "missing coinbase body")
	}
	if cb.Beneficiary == zeroAddress {
		return chainerr.New(chainerr.Malformed, "coinbase beneficiary must be non-zero")
	}
	if !cb.Output.IsValid() {
		return chainerr.New(chainerr.GeometryInvalid, "coinbase output is degenerate")
	}
	return nil
}

func (tr *Transfer) standaloneValidate() error {
	if tr == nil {
		return chainerr.New(chainerr.Malformed, "missing transfer body")
	}
	if tr.Sender == zeroAddress || tr.NewOwner == zeroAddress {
		return chainerr.New(chainerr.Malformed, "transfer sender and new_owner must be non-zero")
	}
	if len(tr.Memo) > MaxMemoBytes {
		return chainerr.New(chainerr.Malformed, "transfer memo exceeds MAX_MEMO_BYTES")
	}
	if tr.Amount < 0 || tr.FeeArea < 0 {
		return chainerr.New(chainerr.Malformed, "transfer amount and fee_area must be non-negative")
	}
	if len(tr.PublicKey) == 0 {
		return chainerr.New(chainerr.SignatureInvalid, "transfer missing public key")
	}

	pub, err := signature.ParsePublicKey(tr.PublicKey)
	if err != nil {
		return chainerr.New(chainerr.SignatureInvalid, "transfer public key does not parse: "+err.Error())
	}

	addr := signature.AddressFromPublicKey(pub)
	if addr != tr.Sender {
		return chainerr.New(chainerr.SignatureInvalid, "hash(public_key) does not equal sender")
	}

	digest := NewTransfer(*tr).SigningDigest()
	if !signature.Verify(digest, tr.Signature, pub) {
		return chainerr.New(chainerr.SignatureInvalid, "transfer signature does not verify")
	}

	return nil
}

func (sd *Subdivision) standaloneValidate() error {
	if sd == nil {
		return chainerr.New(chainerr.Malformed, "missing subdivision body")
	}
	if sd.OwnerAddress == zeroAddress {
		return chainerr.New(chainerr.Malformed, "subdivision owner_address must be non-zero")
	}
	if sd.Fee < 0 {
		return chainerr.New(chainerr.Malformed, "subdivision fee must be non-negative")
	}

	for _, c := range sd.Children {
		if !c.IsValid() {
			return chainerr.New(chainerr.GeometryInvalid, "subdivision child is degenerate")
		}
		if c.ParentHash == nil || *c.ParentHash != sd.ParentHash {
			return chainerr.New(chainerr.GeometryInvalid, "subdivision child does not reference parent_hash")
		}
		if c.Owner != sd.OwnerAddress {
			return chainerr.New(chainerr.GeometryInvalid, "subdivision child owner mismatches owner_address")
		}
	}

	if len(sd.PublicKey) == 0 {
		return chainerr.New(chainerr.SignatureInvalid, "subdivision missing public key")
	}

	pub, err := signature.ParsePublicKey(sd.PublicKey)
	if err != nil {
		return chainerr.New(chainerr.SignatureInvalid, "subdivision public key does not parse: "+err.Error())
	}

	addr := signature.AddressFromPublicKey(pub)
	if addr != sd.OwnerAddress {
		return chainerr.New(chainerr.SignatureInvalid, "hash(public_key) does not equal owner_address")
	}

	digest := NewSubdivision(*sd).SigningDigest()
	if !signature.Verify(digest, sd.Signature, pub) {
		return chainerr.New(chainerr.SignatureInvalid, "subdivision signature does not verify")
	}

	return nil
}

// VerifySubdivisionShape checks that sd.Children vertex-match parent's
// subdivide() bit-exactly and carry the correct depth, given the parent
// triangle from UTXO state. This is stateful (needs the parent), so it is
// kept out of StandaloneValidate and called by the blockchain state
// machine once it has looked the parent up.
func VerifySubdivisionShape(parent geometry.Triangle, sd *Subdivision) error {
	want := parent.Subdivide(sd.OwnerAddress)

	for i := range want {
		if !trianglesVertexEqual(want[i], sd.Children[i]) {
			return chainerr.New(chainerr.GeometryInvalid, "subdivision child does not match parent.subdivide() bit-exactly")
		}
		if sd.Children[i].SubdivisionDepth != parent.SubdivisionDepth+1 {
			return chainerr.New(chainerr.GeometryInvalid, "subdivision child depth does not follow parent")
		}
	}

	return nil
}

func trianglesVertexEqual(a, b geometry.Triangle) bool {
	return a.A.Equal(b.A) && a.B.Equal(b.B) && a.C.Equal(b.C)
}
