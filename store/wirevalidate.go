package store

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
)

// wireValidator bounds-checks the variable-length fields of a transaction
// pulled back off disk, the one untrusted-bytes boundary this package has:
// a corrupted or truncated record can still decode into well-formed Go
// values with implausible lengths, and those should fail here rather than
// propagate into chain state.
var wireValidator = validator.New()

type transferWire struct {
	PublicKey []byte `validate:"required,min=33,max=65"`
	Memo      []byte `validate:"max=256"`
}

type subdivisionWire struct {
	PublicKey []byte `validate:"required,min=33,max=65"`
}

func validateDecodedTransaction(tx txn.Transaction) error {
	switch tx.Tag {
	case txn.TagTransfer:
		w := transferWire{PublicKey: tx.Transfer.PublicKey, Memo: tx.Transfer.Memo}
		if err := wireValidator.Struct(w); err != nil {
			return fmt.Errorf("decode transaction: transfer: %w", err)
		}
	case txn.TagSubdivision:
		w := subdivisionWire{PublicKey: tx.Subdivision.PublicKey}
		if err := wireValidator.Struct(w); err != nil {
			return fmt.Errorf("decode transaction: subdivision: %w", err)
		}
	}
	return nil
}
