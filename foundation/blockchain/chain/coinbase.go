package chain

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
)

// rightTriangleForArea deterministically derives a right triangle from
// seed whose area is exactly target: anchor at (f(seed), g(seed)), one leg
// parallel to the x-axis of a fixed unit length, the other leg solved so that half the
// product of the legs equals target exactly. This satisfies spec.md's
// requirement that the coinbase output be reproducible from height and
// extra_nonce and match the reward cap; the exact vertex layout is an
// implementation choice the spec leaves open.
func rightTriangleForArea(seed [32]byte, target geometry.Coord) geometry.Triangle {
	anchorX := geometry.FromInt(int64(binary.LittleEndian.Uint32(seed[0:4])) % 1_000_000)
	anchorY := geometry.FromInt(int64(binary.LittleEndian.Uint32(seed[4:8])) % 1_000_000)

	// Right triangle with a unit-length base leg: area = base*height/2 =
	// height/2 when base == 1, so height := target*2 makes area == target
	// exactly, no rounding.
	height := target.Mul(geometry.FromInt(2))

	a := geometry.Point{X: anchorX, Y: anchorY}
	b := geometry.Point{X: anchorX.Add(geometry.FromInt(1)), Y: anchorY}
	c := geometry.Point{X: anchorX, Y: anchorY.Add(height)}

	return geometry.Triangle{A: a, B: b, C: c}
}

func coinbaseSeed(height uint64, extraNonce uint64) [32]byte {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], height)
	binary.LittleEndian.PutUint64(buf[8:16], extraNonce)
	return sha256.Sum256(buf[:])
}

// buildCoinbase constructs a Coinbase transaction whose output area equals
// exactly reward, anchored deterministically from height and extraNonce,
// retrying with successive extra_nonce values if the resulting triangle's
// canonical hash collides with an existing UTXO.
func buildCoinbase(beneficiary [32]byte, height uint64, reward geometry.Coord, extraNonce uint64, collides func([32]byte) bool) txn.Transaction {
	for {
		seed := coinbaseSeed(height, extraNonce)
		output := rightTriangleForArea(seed, reward)
		output.Owner = beneficiary

		if collides == nil || !collides(output.Hash()) {
			return txn.NewCoinbase(txn.Coinbase{
				Output:      output,
				Beneficiary: beneficiary,
				BlockHeight: height,
				ExtraNonce:  extraNonce,
			})
		}
		extraNonce++
	}
}

func genesisCoinbaseTx(p Params) txn.Transaction {
	return txn.NewCoinbase(txn.Coinbase{
		Output:      p.GenesisOutput,
		Beneficiary: p.GenesisBeneficiary,
		BlockHeight: 0,
		ExtraNonce:  0,
	})
}
