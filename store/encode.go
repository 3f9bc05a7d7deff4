package store

import (
	"encoding/binary"
	"fmt"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
)

// The codecs in this file are a durability concern, distinct from the
// consensus-critical canonical encodings in txn: they round-trip
// every field, including ones (like a triangle's raw vertices) the
// consensus hash deliberately discards.

func encodeCoord(w *[]byte, c geometry.Coord) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(c))
	*w = append(*w, b[:]...)
}

func decodeCoord(b []byte) geometry.Coord {
	return geometry.Coord(binary.LittleEndian.Uint64(b))
}

func encodePoint(w *[]byte, p geometry.Point) {
	encodeCoord(w, p.X)
	encodeCoord(w, p.Y)
}

func decodePoint(b []byte) geometry.Point {
	return geometry.Point{X: decodeCoord(b[0:8]), Y: decodeCoord(b[8:16])}
}

const triangleSize = 16*3 + 32 + 1 + 32 + 1 // A,B,C + Owner + has-parent + ParentHash + depth

func encodeTriangle(w *[]byte, t geometry.Triangle) {
	encodePoint(w, t.A)
	encodePoint(w, t.B)
	encodePoint(w, t.C)
	*w = append(*w, t.Owner[:]...)
	if t.ParentHash != nil {
		*w = append(*w, 1)
		*w = append(*w, t.ParentHash[:]...)
	} else {
		*w = append(*w, 0)
		*w = append(*w, make([]byte, 32)...)
	}
	*w = append(*w, t.SubdivisionDepth)
}

func decodeTriangle(b []byte) (geometry.Triangle, []byte) {
	var t geometry.Triangle
	t.A = decodePoint(b[0:16])
	t.B = decodePoint(b[16:32])
	t.C = decodePoint(b[32:48])
	copy(t.Owner[:], b[48:80])
	hasParent := b[80]
	if hasParent == 1 {
		var ph [32]byte
		copy(ph[:], b[81:113])
		t.ParentHash = &ph
	}
	t.SubdivisionDepth = b[113]
	return t, b[triangleSize:]
}

func appendBytes32(w *[]byte, b [32]byte) { *w = append(*w, b[:]...) }
func appendU64(w *[]byte, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	*w = append(*w, b[:]...)
}
func appendU16(w *[]byte, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	*w = append(*w, b[:]...)
}
func appendBytesWithLen(w *[]byte, p []byte) {
	appendU16(w, uint16(len(p)))
	*w = append(*w, p...)
}

func encodeTransaction(tx txn.Transaction) []byte {
	var w []byte
	w = append(w, byte(tx.Tag))

	switch tx.Tag {
	case txn.TagCoinbase:
		cb := tx.Coinbase
		encodeTriangle(&w, cb.Output)
		appendBytes32(&w, cb.Beneficiary)
		appendU64(&w, cb.BlockHeight)
		appendU64(&w, cb.ExtraNonce)

	case txn.TagTransfer:
		tr := tx.Transfer
		appendBytes32(&w, tr.InputHash)
		appendBytes32(&w, tr.NewOwner)
		appendBytes32(&w, tr.Sender)
		encodeCoord(&w, tr.Amount)
		encodeCoord(&w, tr.FeeArea)
		appendU64(&w, tr.Nonce)
		w = append(w, tr.Signature[:]...)
		appendBytesWithLen(&w, tr.PublicKey)
		appendBytesWithLen(&w, tr.Memo)

	case txn.TagSubdivision:
		sd := tx.Subdivision
		appendBytes32(&w, sd.ParentHash)
		for _, c := range sd.Children {
			encodeTriangle(&w, c)
		}
		appendBytes32(&w, sd.OwnerAddress)
		encodeCoord(&w, sd.Fee)
		appendU64(&w, sd.Nonce)
		w = append(w, sd.Signature[:]...)
		appendBytesWithLen(&w, sd.PublicKey)
	}

	return w
}

func decodeTransaction(b []byte) (txn.Transaction, error) {
	if len(b) == 0 {
		return txn.Transaction{}, fmt.Errorf("decode transaction: empty buffer")
	}
	tag := txn.Tag(b[0])
	b = b[1:]

	switch tag {
	case txn.TagCoinbase:
		var cb txn.Coinbase
		cb.Output, b = decodeTriangle(b)
		copy(cb.Beneficiary[:], b[0:32])
		b = b[32:]
		cb.BlockHeight = binary.LittleEndian.Uint64(b[0:8])
		b = b[8:]
		cb.ExtraNonce = binary.LittleEndian.Uint64(b[0:8])
		return txn.NewCoinbase(cb), nil

	case txn.TagTransfer:
		var tr txn.Transfer
		copy(tr.InputHash[:], b[0:32])
		b = b[32:]
		copy(tr.NewOwner[:], b[0:32])
		b = b[32:]
		copy(tr.Sender[:], b[0:32])
		b = b[32:]
		tr.Amount = decodeCoord(b[0:8])
		b = b[8:]
		tr.FeeArea = decodeCoord(b[0:8])
		b = b[8:]
		tr.Nonce = binary.LittleEndian.Uint64(b[0:8])
		b = b[8:]
		copy(tr.Signature[:], b[0:64])
		b = b[64:]
		pkLen := binary.LittleEndian.Uint16(b[0:2])
		b = b[2:]
		tr.PublicKey = append([]byte(nil), b[:pkLen]...)
		b = b[pkLen:]
		memoLen := binary.LittleEndian.Uint16(b[0:2])
		b = b[2:]
		tr.Memo = append([]byte(nil), b[:memoLen]...)
		tx := txn.NewTransfer(tr)
		if err := validateDecodedTransaction(tx); err != nil {
			return txn.Transaction{}, err
		}
		return tx, nil

	case txn.TagSubdivision:
		var sd txn.Subdivision
		copy(sd.ParentHash[:], b[0:32])
		b = b[32:]
		for i := range sd.Children {
			sd.Children[i], b = decodeTriangle(b)
		}
		copy(sd.OwnerAddress[:], b[0:32])
		b = b[32:]
		sd.Fee = decodeCoord(b[0:8])
		b = b[8:]
		sd.Nonce = binary.LittleEndian.Uint64(b[0:8])
		b = b[8:]
		copy(sd.Signature[:], b[0:64])
		b = b[64:]
		pkLen := binary.LittleEndian.Uint16(b[0:2])
		b = b[2:]
		sd.PublicKey = append([]byte(nil), b[:pkLen]...)
		tx := txn.NewSubdivision(sd)
		if err := validateDecodedTransaction(tx); err != nil {
			return txn.Transaction{}, err
		}
		return tx, nil

	default:
		return txn.Transaction{}, fmt.Errorf("decode transaction: unknown tag %d", tag)
	}
}

func encodeBlock(blk chain.Block) []byte {
	var w []byte
	appendU64(&w, blk.Header.Height)
	appendBytes32(&w, blk.Header.PreviousHash)
	appendU64(&w, uint64(blk.Header.Timestamp))
	appendU64(&w, blk.Header.Difficulty)
	appendU64(&w, blk.Header.Nonce)
	appendBytes32(&w, blk.Header.MerkleRoot)

	appendU64(&w, uint64(len(blk.Transactions)))
	for _, tx := range blk.Transactions {
		appendBytesWithLen32(&w, encodeTransaction(tx))
	}
	return w
}

func appendBytesWithLen32(w *[]byte, p []byte) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(len(p)))
	*w = append(*w, b[:]...)
	*w = append(*w, p...)
}

func decodeBlock(b []byte) (chain.Block, error) {
	var blk chain.Block
	if len(b) < 8+32+8+8+8+32+8 {
		return blk, fmt.Errorf("decode block: buffer too short")
	}
	blk.Header.Height = binary.LittleEndian.Uint64(b[0:8])
	b = b[8:]
	copy(blk.Header.PreviousHash[:], b[0:32])
	b = b[32:]
	blk.Header.Timestamp = int64(binary.LittleEndian.Uint64(b[0:8]))
	b = b[8:]
	blk.Header.Difficulty = binary.LittleEndian.Uint64(b[0:8])
	b = b[8:]
	blk.Header.Nonce = binary.LittleEndian.Uint64(b[0:8])
	b = b[8:]
	copy(blk.Header.MerkleRoot[:], b[0:32])
	b = b[32:]

	count := binary.LittleEndian.Uint64(b[0:8])
	b = b[8:]

	blk.Transactions = make([]txn.Transaction, 0, count)
	for i := uint64(0); i < count; i++ {
		txLen := binary.LittleEndian.Uint32(b[0:4])
		b = b[4:]
		tx, err := decodeTransaction(b[:txLen])
		if err != nil {
			return blk, fmt.Errorf("decode block: transaction %d: %w", i, err)
		}
		blk.Transactions = append(blk.Transactions, tx)
		b = b[txLen:]
	}
	return blk, nil
}
