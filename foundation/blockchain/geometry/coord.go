// Package geometry implements the fixed-point points and triangles that
// TrinityChain's UTXO set is built from: area via the Shoelace formula,
// subdivision into three children, and vertex-order-independent hashing.
// Every operation here is integer-only; floating point anywhere in this
// package would be a consensus bug.
package geometry

import (
	"encoding/binary"
	"math/bits"
)

// Coord is a signed fixed-point number with 32 integer bits and 32
// fractional bits (I32F32), stored as the raw 64-bit two's-complement
// representation. All geometric and fee arithmetic uses Coord.
type Coord int64

// fracBits is the number of fractional bits in a Coord.
const fracBits = 32

// FromInt converts a whole number into a Coord.
func FromInt(n int64) Coord {
	return Coord(n << fracBits)
}

// Int truncates a Coord toward negative infinity and returns its integer
// part.
func (c Coord) Int() int64 {
	return int64(c) >> fracBits
}

// Add returns c + other.
func (c Coord) Add(other Coord) Coord {
	return c + other
}

// Sub returns c - other.
func (c Coord) Sub(other Coord) Coord {
	return c - other
}

// Mul returns c * other, computed as a 128-bit product of the two
// magnitudes, shifted right by fracBits and then given the product's sign,
// so the fractional scale is preserved without overflowing a 64-bit
// accumulator. Because the shift is applied to the magnitude, a negative
// product whose discarded fractional bits are non-zero is truncated toward
// zero, not toward negative infinity.
func (c Coord) Mul(other Coord) Coord {
	hi, lo := bits.Mul64(absU64(int64(c)), absU64(int64(other)))
	neg := (c < 0) != (other < 0)

	// Shift the 128-bit product (hi:lo) right by fracBits.
	shifted := shiftRight128(hi, lo, fracBits)
	if neg {
		return Coord(-int64(shifted))
	}
	return Coord(shifted)
}

// Shr returns c shifted right arithmetically by n bits. This is the
// midpoint and area-reduction primitive mandated by consensus: it rounds
// toward negative infinity, unlike a plain division by a power of two.
func (c Coord) Shr(n uint) Coord {
	return Coord(int64(c) >> n)
}

// Abs returns the absolute value of c.
func (c Coord) Abs() Coord {
	if c < 0 {
		return -c
	}
	return c
}

// Bytes returns the little-endian 8-byte encoding of the raw Coord bits.
func (c Coord) Bytes() [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(c))
	return b
}

// FromBytes decodes the little-endian 8-byte encoding produced by Bytes.
func FromBytes(b [8]byte) Coord {
	return Coord(binary.LittleEndian.Uint64(b[:]))
}

func absU64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

// shiftRight128 shifts the 128-bit value (hi:lo) right by n bits (0 < n < 64)
// and returns the low 64 bits of the result, which is sufficient here since
// Coord multiplication never produces a product whose shifted result
// exceeds 64 bits for any value this chain's geometry can legally carry.
func shiftRight128(hi, lo uint64, n uint) uint64 {
	return (hi << (64 - n)) | (lo >> n)
}
