package chain

import (
	"crypto/sha256"

	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
)

// Params is the set of consensus constants frozen for a network at genesis.
// Two sets exist because the source material carries two conflicting
// TARGET_BLOCK_TIME/DIFFICULTY_WINDOW pairs; Main is the one this chain
// actually runs, Fast exists so tests can exercise retargeting without
// mining thousands of blocks.
type Params struct {
	InitialReward       geometry.Coord
	HalvingInterval     uint64
	TargetBlockTime     int64
	DifficultyWindow    uint64
	MinDifficulty       uint64
	MaxSubdivisionDepth uint8
	MaxTxsPerBlock      uint32
	MaxMemoBytes        uint16

	GenesisTimestamp   int64
	GenesisBeneficiary [32]byte
	GenesisOutput      geometry.Triangle
}

// genesisSeed is hashed to derive the bit-exact genesis coinbase vertices,
// making genesis reproducible from a fixed string rather than a literal
// hardcoded triangle.
const genesisSeed = "trinitychain-genesis-coinbase-v1"

// Main returns the production parameter set: 60-second blocks, a
// 2016-block retarget window, the defaults spec.md §6 names.
func Main() Params {
	reward := geometry.FromInt(1000)
	seed := sha256.Sum256([]byte(genesisSeed))

	var beneficiary [32]byte
	copy(beneficiary[:], seed[:])

	output := rightTriangleForArea(seed, reward)
	output.Owner = beneficiary

	return Params{
		InitialReward:       reward,
		HalvingInterval:     210_000,
		TargetBlockTime:     60,
		DifficultyWindow:    2016,
		MinDifficulty:       1,
		MaxSubdivisionDepth: 64,
		MaxTxsPerBlock:      50_000,
		MaxMemoBytes:        256,
		GenesisTimestamp:    1_700_000_000,
		GenesisBeneficiary:  beneficiary,
		GenesisOutput:       output,
	}
}

// Fast returns a parameter set with a 10-second block time and a 10-block
// retarget window, matching the source's other constant set, kept alive
// for tests that exercise spec.md §8 scenario 6 without mining thousands
// of real blocks.
func Fast() Params {
	p := Main()
	p.TargetBlockTime = 10
	p.DifficultyWindow = 10
	return p
}

// Genesis returns the height-0 block for p: previous_hash all zero, a
// single coinbase minting GenesisOutput to GenesisBeneficiary.
func (p Params) Genesis() Block {
	cb := genesisCoinbaseTx(p)
	txs := []txn.Transaction{cb}

	root, err := computeMerkleRoot(txs)
	if err != nil {
		panic("genesis merkle root: " + err.Error())
	}

	return Block{
		Header: BlockHeader{
			Height:       0,
			PreviousHash: [32]byte{},
			Timestamp:    p.GenesisTimestamp,
			Difficulty:   p.MinDifficulty,
			Nonce:        0,
			MerkleRoot:   root,
		},
		Transactions: txs,
	}
}

// BlockReward returns INITIAL_REWARD >> (height / HALVING_INTERVAL), zero
// once the shift count reaches 64.
func (p Params) BlockReward(height uint64) geometry.Coord {
	halvings := height / p.HalvingInterval
	if halvings >= 64 {
		return 0
	}
	return p.InitialReward.Shr(uint(halvings))
}
