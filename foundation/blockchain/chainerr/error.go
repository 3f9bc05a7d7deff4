// Package chainerr defines the error taxonomy shared by every consensus
// package. It has full support for errors.Is and errors.As, so a caller can
// check against a specific kind without string matching.
package chainerr

// ErrorKind identifies a semantic class of consensus failure.
type ErrorKind string

// Error satisfies the error interface and prints the kind name.
func (k ErrorKind) Error() string {
	return string(k)
}

// These constants enumerate the error taxonomy.
const (
	// Malformed indicates a decode-boundary failure: bad size, bad tag,
	// an out-of-range field. Rejected at parse time and never propagated
	// past it.
	Malformed = ErrorKind("Malformed")

	// GeometryInvalid indicates a degenerate triangle or a subdivision
	// whose children do not match the parent's midpoints bit-exactly.
	GeometryInvalid = ErrorKind("GeometryInvalid")

	// SignatureInvalid indicates a preimage mismatch, a bad curve point,
	// or a public key that does not hash to the claimed address.
	SignatureInvalid = ErrorKind("SignatureInvalid")

	// UtxoMissing indicates a referenced input_hash or parent_hash is not
	// present in the UTXO set. The transaction may become admissible
	// later, e.g. after a reorg.
	UtxoMissing = ErrorKind("UtxoMissing")

	// UtxoConflict indicates a double-spend, either within the mempool or
	// within a single block's transaction list.
	UtxoConflict = ErrorKind("UtxoConflict")

	// PowInsufficient indicates the block hash is not below the target
	// implied by its difficulty.
	PowInsufficient = ErrorKind("PowInsufficient")

	// ChainLink indicates a wrong previous_hash or a height that does not
	// follow the current tip.
	ChainLink = ErrorKind("ChainLink")

	// TimestampInvalid indicates a block timestamp below the median of
	// the last eleven blocks, or too far in the future.
	TimestampInvalid = ErrorKind("TimestampInvalid")

	// RewardExceeded indicates the coinbase output area exceeds the
	// block reward plus collected fees.
	RewardExceeded = ErrorKind("RewardExceeded")

	// ReorgFailed indicates a side chain failed to apply during a reorg;
	// the state machine must fully revert to the pre-reorg chain.
	ReorgFailed = ErrorKind("ReorgFailed")

	// PersistenceError indicates a storage write failed. It is the only
	// fatal kind: the writer must refuse further mutation until the
	// store is healthy again.
	PersistenceError = ErrorKind("PersistenceError")
)

// RuleError identifies a specific violation of one of the ErrorKind
// classes above. It has full support for errors.Is and errors.As via Unwrap.
type RuleError struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints a human-readable message.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying ErrorKind so errors.Is(err, chainerr.UtxoMissing)
// works against a wrapped RuleError.
func (e RuleError) Unwrap() error {
	return e.Err
}

// New creates a RuleError of the given kind with the given description.
// Callers check the kind with errors.Is(err, chainerr.SomeKind).
func New(kind ErrorKind, desc string) error {
	return RuleError{Err: kind, Description: desc}
}
