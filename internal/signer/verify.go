package signer

import (
	"crypto/ed25519"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/R3E-Network/solana_layer/internal/codec"
	"github.com/R3E-Network/solana_layer/internal/errors"
)

// VerifyResult reports whether a signature checked out. A false Valid is a
// successful verification outcome, not an error.
type VerifyResult struct {
	Valid     bool
	PublicKey ed25519.PublicKey
	Message   []byte
}

// ParsePublicKey decodes a base58 public key and requires it to be a valid
// compressed Edwards25519 point.
func ParsePublicKey(pubkeyEncoded string) (ed25519.PublicKey, error) {
	raw, err := codec.DecodeBase58Fixed(pubkeyEncoded, PublicKeySize)
	if err != nil {
		return nil, errors.InvalidPublicKey(err)
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return nil, errors.InvalidPublicKey(fmt.Errorf("%w: %v", errors.ErrInvalidKeyMaterial, err))
	}
	return ed25519.PublicKey(raw), nil
}

// ParseSignature decodes a base64 64-byte signature.
func ParseSignature(signatureEncoded string) ([]byte, error) {
	sig, err := codec.DecodeBase64Fixed(signatureEncoded, SignatureSize)
	if err != nil {
		return nil, errors.InvalidSignatureEncoding(err)
	}
	return sig, nil
}

// Verify checks signatureEncoded over message under pubkeyEncoded. Only
// malformed input is an error; a signature that fails the Ed25519 check
// yields Valid=false.
func Verify(pubkeyEncoded string, message []byte, signatureEncoded string) (*VerifyResult, error) {
	pub, err := ParsePublicKey(pubkeyEncoded)
	if err != nil {
		return nil, err
	}
	sig, err := ParseSignature(signatureEncoded)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		Valid:     ed25519.Verify(pub, message, sig),
		PublicKey: pub,
		Message:   message,
	}, nil
}
