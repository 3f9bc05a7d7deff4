package store

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
)

func encodeMeta(m chain.Metadata) []byte {
	var w []byte
	appendBytes32(&w, m.TipHash)
	appendU64(&w, m.TipHeight)
	appendU64(&w, m.Difficulty)

	work := m.CumulativeWork
	if work == nil {
		work = new(uint256.Int)
	}
	workBytes := work.Bytes32()
	w = append(w, workBytes[:]...)

	return w
}

func decodeMeta(b []byte) chain.Metadata {
	var m chain.Metadata
	copy(m.TipHash[:], b[0:32])
	m.TipHeight = binary.LittleEndian.Uint64(b[32:40])
	m.Difficulty = binary.LittleEndian.Uint64(b[40:48])
	m.CumulativeWork = new(uint256.Int).SetBytes(b[48:80])
	return m
}
