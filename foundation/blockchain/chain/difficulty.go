package chain

import (
	"github.com/holiman/uint256"

	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
)

// maxTarget is the easiest allowed target: 2^248-1, leaving the top byte of
// the 256-bit space always zero so difficulty 1 never produces a target
// that overflows on the divisions below.
var maxTarget = func() *uint256.Int {
	one := uint256.NewInt(1)
	shifted := new(uint256.Int).Lsh(one, 248)
	return new(uint256.Int).Sub(shifted, one)
}()

// target returns MAX_TARGET / difficulty as a 256-bit integer. difficulty
// is clamped to at least 1: a zero divisor is a configuration error, never
// a valid consensus state.
func target(difficulty uint64) *uint256.Int {
	if difficulty == 0 {
		difficulty = 1
	}
	d := uint256.NewInt(difficulty)
	return new(uint256.Int).Div(maxTarget, d)
}

// hashMeetsTarget reports whether hash, read as a big-endian 256-bit
// integer, is strictly less than target(difficulty).
func hashMeetsTarget(hash [32]byte, difficulty uint64) bool {
	h := new(uint256.Int).SetBytes(hash[:])
	return h.Lt(target(difficulty))
}

// work returns MAX_TARGET / target(difficulty), the per-block contribution
// to cumulative work used to rank competing chains.
func work(difficulty uint64) *uint256.Int {
	t := target(difficulty)
	if t.IsZero() {
		return new(uint256.Int).Set(maxTarget)
	}
	return new(uint256.Int).Div(maxTarget, t)
}

// cumulativeWork sums work(difficulty) over headers in order.
func cumulativeWork(headers []BlockHeader) *uint256.Int {
	total := new(uint256.Int)
	for _, h := range headers {
		total = total.Add(total, work(h.Difficulty))
	}
	return total
}

// retarget computes the next difficulty from the timestamps bracketing a
// DIFFICULTY_WINDOW-block window, entirely in integer/Coord arithmetic:
// no floating point anywhere in this path.
func retarget(p Params, oldDifficulty uint64, windowStartTimestamp, windowEndTimestamp int64) uint64 {
	actual := windowEndTimestamp - windowStartTimestamp
	if actual <= 0 {
		actual = 1
	}
	expected := int64(p.DifficultyWindow) * p.TargetBlockTime

	// adjustment, as a Coord, is expected/actual computed via a single
	// fixed-point division: (expected << 32) / actual.
	adjustment := geometry.Coord((expected << 32) / actual)

	quarter := geometry.FromInt(1).Shr(2)
	four := geometry.FromInt(4)
	if adjustment < quarter {
		adjustment = quarter
	}
	if adjustment > four {
		adjustment = four
	}

	scaled := geometry.FromInt(int64(oldDifficulty)).Mul(adjustment)

	// Round half toward positive infinity: add 0.5 then truncate toward
	// negative infinity, which for a non-negative value is round-half-up.
	rounded := scaled.Add(geometry.Coord(1) << 31).Int()

	if rounded < int64(p.MinDifficulty) {
		return p.MinDifficulty
	}
	return uint64(rounded)
}

// recomputeDifficulty replays retargeting over headers from genesis and
// returns the difficulty the block following headers[len(headers)-1] must
// declare. Used after a reorg truncates the header chain, where the
// difficulty in effect at the new tip can no longer be read off c.difficulty
// directly.
func recomputeDifficulty(p Params, headers []BlockHeader) uint64 {
	difficulty := p.MinDifficulty
	for _, h := range headers {
		if h.Height == 0 {
			continue
		}
		window := p.DifficultyWindow
		if window == 0 || (h.Height+1)%window != 0 || h.Height+1 < window {
			continue
		}
		windowStartHeight := h.Height + 1 - window
		start := headers[windowStartHeight]
		difficulty = retarget(p, difficulty, start.Timestamp, h.Timestamp)
	}
	return difficulty
}
