package geometry

import (
	"bytes"
	"crypto/sha256"
)

// Point is a vertex in Coord space. Equality is bit-exact Coord equality.
type Point struct {
	X Coord
	Y Coord
}

// Equal reports whether p and other are the same point, bit-exactly.
func (p Point) Equal(other Point) bool {
	return p.X == other.X && p.Y == other.Y
}

// Hash returns the SHA-256 of the point's little-endian x‖y encoding.
func (p Point) Hash() [32]byte {
	xb := p.X.Bytes()
	yb := p.Y.Bytes()

	var buf [16]byte
	copy(buf[:8], xb[:])
	copy(buf[8:], yb[:])

	return sha256.Sum256(buf[:])
}

// midpoint returns ((p.x+q.x)>>1, (p.y+q.y)>>1) using arithmetic right
// shift, not division by two. This rounds toward negative infinity for
// negative sums, matching the consensus-mandated midpoint rule.
func midpoint(p, q Point) Point {
	return Point{
		X: p.X.Add(q.X).Shr(1),
		Y: p.Y.Add(q.Y).Shr(1),
	}
}

// sortHashes returns the three point hashes sorted ascending
// lexicographically.
func sortHashes(a, b, c [32]byte) [3][32]byte {
	s := [3][32]byte{a, b, c}
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && bytes.Compare(s[j-1][:], s[j][:]) > 0; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
	return s
}
