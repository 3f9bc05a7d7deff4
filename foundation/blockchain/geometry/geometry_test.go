package geometry_test

import (
	"testing"

	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
)

func pt(x, y int64) geometry.Point {
	return geometry.Point{X: geometry.FromInt(x), Y: geometry.FromInt(y)}
}

func TestAreaShoelace(t *testing.T) {
	tri := geometry.Triangle{A: pt(0, 0), B: pt(32, 0), C: pt(0, 32)}

	got := tri.Area()
	want := geometry.FromInt(512)

	if got != want {
		t.Fatalf("got area %v, want %v", got, want)
	}
}

func TestAreaConservationUnderSubdivision(t *testing.T) {
	tri := geometry.Triangle{A: pt(0, 0), B: pt(64, 0), C: pt(0, 64)}

	var owner [32]byte
	children := tri.Subdivide(owner)

	var sum geometry.Coord
	for _, c := range children {
		if !c.IsValid() {
			t.Fatalf("child %+v is degenerate", c)
		}
		sum = sum.Add(c.Area())
	}

	want := tri.Area().Mul(geometry.FromInt(3)).Shr(2)
	if sum != want {
		t.Fatalf("sum of child areas = %v, want %v", sum, want)
	}
}

func TestCanonicalHashInvariantUnderPermutation(t *testing.T) {
	a, b, c := pt(0, 0), pt(32, 0), pt(0, 32)

	perms := [][3]geometry.Point{
		{a, b, c},
		{b, c, a},
		{c, a, b},
		{a, c, b},
		{b, a, c},
		{c, b, a},
	}

	var want [32]byte
	for i, p := range perms {
		tri := geometry.Triangle{A: p[0], B: p[1], C: p[2]}
		h := tri.Hash()
		if i == 0 {
			want = h
			continue
		}
		if h != want {
			t.Fatalf("permutation %d produced a different hash", i)
		}
	}
}

func TestDegenerateTriangleInvalid(t *testing.T) {
	tri := geometry.Triangle{A: pt(0, 0), B: pt(0, 0), C: pt(5, 5)}
	if tri.IsValid() {
		t.Fatal("expected degenerate triangle to be invalid")
	}
}

func TestSubdivisionMidpointRoundsTowardNegativeInfinity(t *testing.T) {
	// -1 + 0 = -1, arithmetic shift right by 1 => -1 (rounds toward -inf),
	// not 0 as an unsigned average would give.
	tri := geometry.Triangle{A: pt(-1, 0), B: pt(0, 0), C: pt(0, 5)}

	var owner [32]byte
	children := tri.Subdivide(owner)

	gotX := children[0].B.X.Int()
	if gotX != -1 {
		t.Fatalf("midpoint x = %d, want -1", gotX)
	}
}
