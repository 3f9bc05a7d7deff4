package txn

import (
	"crypto/sha256"
	"encoding/binary"
)

// byteBuf is a tiny append-only builder used for the canonical encodings
// below; it keeps the encoding functions readable without pulling in
// bytes.Buffer's io.Writer machinery for what is always a fixed, small
// encoding.
type byteBuf struct {
	b []byte
}

func (w *byteBuf) bytes(p []byte) {
	w.b = append(w.b, p...)
}

func (w *byteBuf) u64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.b = append(w.b, tmp[:]...)
}

func (w *byteBuf) u16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.b = append(w.b, tmp[:]...)
}

// SigningPreimage returns the canonical byte encoding that is hashed and
// signed for Transfer and Subdivision transactions. It excludes the
// signature and public key fields. Coinbase transactions are never signed
// and have no preimage.
func (t Transaction) SigningPreimage() []byte {
	switch t.Tag {
	case TagTransfer:
		return transferPreimage(t.Transfer)
	case TagSubdivision:
		return subdivisionPreimage(t.Subdivision)
	default:
		return nil
	}
}

func transferPreimage(tr *Transfer) []byte {
	var w byteBuf
	w.bytes([]byte("TRANSFER\x00"))
	w.bytes(tr.InputHash[:])
	w.bytes(tr.NewOwner[:])
	w.bytes(tr.Sender[:])
	amt := tr.Amount.Bytes()
	w.bytes(amt[:])
	fee := tr.FeeArea.Bytes()
	w.bytes(fee[:])
	w.u64(tr.Nonce)
	w.u16(uint16(len(tr.Memo)))
	w.bytes(tr.Memo)
	return w.b
}

func subdivisionPreimage(sd *Subdivision) []byte {
	var w byteBuf
	w.bytes([]byte("SUBDIV\x00\x00\x00"))
	w.bytes(sd.ParentHash[:])
	for _, c := range sd.Children {
		h := c.Hash()
		w.bytes(h[:])
	}
	w.bytes(sd.OwnerAddress[:])
	fee := sd.Fee.Bytes()
	w.bytes(fee[:])
	w.u64(sd.Nonce)
	return w.b
}

// SigningDigest returns the SHA-256 of the signing preimage, the value
// that is actually signed.
func (t Transaction) SigningDigest() [32]byte {
	return sha256.Sum256(t.SigningPreimage())
}

// canonicalEncoding returns tag ‖ all fields in a fixed order (Coords as
// little-endian bits, addresses as 32-byte arrays, embedded triangles via
// their canonical hash), used to derive the transaction id.
func (t Transaction) canonicalEncoding() []byte {
	var w byteBuf
	w.b = append(w.b, byte(t.Tag))

	switch t.Tag {
	case TagCoinbase:
		cb := t.Coinbase
		h := cb.Output.Hash()
		w.bytes(h[:])
		w.bytes(cb.Beneficiary[:])
		w.u64(cb.BlockHeight)
		w.u64(cb.ExtraNonce)

	case TagTransfer:
		tr := t.Transfer
		w.bytes(transferPreimage(tr))
		w.bytes(tr.Signature[:])
		w.u16(uint16(len(tr.PublicKey)))
		w.bytes(tr.PublicKey)

	case TagSubdivision:
		sd := t.Subdivision
		w.bytes(subdivisionPreimage(sd))
		w.bytes(sd.Signature[:])
		w.u16(uint16(len(sd.PublicKey)))
		w.bytes(sd.PublicKey)
	}

	return w.b
}

// ID returns the transaction id: the SHA-256 of the canonical encoding.
func (t Transaction) ID() [32]byte {
	return sha256.Sum256(t.canonicalEncoding())
}

// Hash satisfies merkle.Hashable[Transaction].
func (t Transaction) Hash() ([]byte, error) {
	id := t.ID()
	return id[:], nil
}

// Equals satisfies merkle.Hashable[Transaction].
func (t Transaction) Equals(other Transaction) bool {
	return t.ID() == other.ID()
}
