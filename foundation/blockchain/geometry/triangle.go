package geometry

import "crypto/sha256"

// Triangle is three vertices plus the metadata a UTXO record carries.
// ParentHash is nil for a triangle minted by a Coinbase.
type Triangle struct {
	A, B, C          Point
	Owner            [32]byte
	ParentHash       *[32]byte
	SubdivisionDepth uint8
}

// Area computes the Shoelace area of t: |a.x*(b.y-c.y) + b.x*(c.y-a.y) +
// c.x*(a.y-b.y)| / 2, entirely in Coord arithmetic. The final division by
// two is an arithmetic right shift of one, not a rounding divide.
func (t Triangle) Area() Coord {
	sum := t.A.X.Mul(t.B.Y.Sub(t.C.Y)).
		Add(t.B.X.Mul(t.C.Y.Sub(t.A.Y))).
		Add(t.C.X.Mul(t.A.Y.Sub(t.B.Y)))

	return sum.Abs().Shr(1)
}

// IsValid reports whether t is non-degenerate: all three vertex pairs
// differ and the doubled area (the Shoelace sum before halving) is
// strictly positive.
func (t Triangle) IsValid() bool {
	if t.A.Equal(t.B) || t.B.Equal(t.C) || t.A.Equal(t.C) {
		return false
	}

	sum := t.A.X.Mul(t.B.Y.Sub(t.C.Y)).
		Add(t.B.X.Mul(t.C.Y.Sub(t.A.Y))).
		Add(t.C.X.Mul(t.A.Y.Sub(t.B.Y)))

	return sum.Abs() > 0
}

// Hash returns the canonical, vertex-order-independent hash of t: SHA-256
// over the three point hashes sorted ascending lexicographically.
func (t Triangle) Hash() [32]byte {
	sorted := sortHashes(t.A.Hash(), t.B.Hash(), t.C.Hash())

	var buf [96]byte
	copy(buf[0:32], sorted[0][:])
	copy(buf[32:64], sorted[1][:])
	copy(buf[64:96], sorted[2][:])

	return sha256.Sum256(buf[:])
}

// Subdivide splits t into three children at the edge midpoints, in the
// fixed order (a, m_ab, m_ca), (m_ab, b, m_bc), (m_ca, m_bc, c). Children
// inherit owner from the caller, not from t, and record t's hash as their
// ParentHash with SubdivisionDepth incremented by one.
func (t Triangle) Subdivide(owner [32]byte) [3]Triangle {
	mAB := midpoint(t.A, t.B)
	mBC := midpoint(t.B, t.C)
	mCA := midpoint(t.C, t.A)

	parentHash := t.Hash()
	depth := t.SubdivisionDepth + 1

	mk := func(a, b, c Point) Triangle {
		return Triangle{
			A: a, B: b, C: c,
			Owner:            owner,
			ParentHash:       &parentHash,
			SubdivisionDepth: depth,
		}
	}

	return [3]Triangle{
		mk(t.A, mAB, mCA),
		mk(mAB, t.B, mBC),
		mk(mCA, mBC, t.C),
	}
}
