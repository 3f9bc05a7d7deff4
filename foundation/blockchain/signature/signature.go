// Package signature provides helper functions for signing and verifying
// transaction preimages and for deriving addresses from public keys.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"
)

// Sign signs the 32-byte digest with the given private key and returns the
// compact 64-byte [R‖S] signature the wire format carries. The recovery bit
// go-ethereum's crypto.Sign appends is discarded: TrinityChain transactions
// always carry the signer's public key alongside the signature, so a
// verifier never needs to recover it from the signature itself.
func Sign(digest [32]byte, privateKey *ecdsa.PrivateKey) ([64]byte, error) {
	var sig [64]byte

	full, err := crypto.Sign(digest[:], privateKey)
	if err != nil {
		return sig, err
	}

	copy(sig[:], full[:64])
	return sig, nil
}

// Verify reports whether sig is a valid signature of digest under
// publicKey.
func Verify(digest [32]byte, sig [64]byte, publicKey *ecdsa.PublicKey) bool {
	pubBytes := crypto.FromECDSAPub(publicKey)
	return crypto.VerifySignature(pubBytes, digest[:], sig[:])
}

// PublicKeyBytes returns the uncompressed 65-byte encoding of publicKey,
// the canonical byte form transactions carry on the wire.
func PublicKeyBytes(publicKey *ecdsa.PublicKey) []byte {
	return crypto.FromECDSAPub(publicKey)
}

// ParsePublicKey decodes the uncompressed 65-byte encoding produced by
// PublicKeyBytes.
func ParsePublicKey(b []byte) (*ecdsa.PublicKey, error) {
	return crypto.UnmarshalPubkey(b)
}

// AddressFromPublicKey derives the 32-byte address consensus treats as
// opaque: the SHA-256 of the public key's uncompressed byte encoding.
func AddressFromPublicKey(publicKey *ecdsa.PublicKey) [32]byte {
	return sha256.Sum256(PublicKeyBytes(publicKey))
}

// GenerateKey creates a new secp256k1 private key suitable for signing
// TrinityChain transactions.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}
