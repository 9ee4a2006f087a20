// Package signer produces and checks detached Ed25519 signatures over
// arbitrary messages using wire-encoded keys.
package signer

import (
	"crypto/ed25519"
	"crypto/subtle"

	"github.com/R3E-Network/solana_layer/internal/codec"
	"github.com/R3E-Network/solana_layer/internal/errors"
)

const (
	SecretKeySize = ed25519.PrivateKeySize
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

// SignResult is a detached signature plus the signer's public key.
type SignResult struct {
	Signature []byte
	PublicKey ed25519.PublicKey
	Message   []byte
}

// SignatureBase64 returns the signature in its wire encoding.
func (r *SignResult) SignatureBase64() string {
	return codec.EncodeBase64(r.Signature)
}

// PublicKeyBase58 returns the public key in its wire encoding.
func (r *SignResult) PublicKeyBase58() string {
	return codec.EncodeBase58(r.PublicKey)
}

// ParseSecretKey decodes a base58 seed||public secret key and checks that the
// embedded public key is the one derived from the seed.
func ParseSecretKey(secretEncoded string) (ed25519.PrivateKey, error) {
	raw, err := codec.DecodeBase58Fixed(secretEncoded, SecretKeySize)
	switch {
	case errors.Is(err, errors.ErrInvalidLength):
		return nil, errors.InvalidKeyLength("Secret key must be 64 bytes", err)
	case err != nil:
		return nil, errors.InvalidEncoding("Invalid secret key", err)
	}

	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if subtle.ConstantTimeCompare(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) != 1 {
		return nil, errors.InvalidKeyMaterial("Failed to parse keypair",
			errors.New("public key does not match secret seed"))
	}
	return derived, nil
}

// Sign signs message with the base58-encoded 64-byte secret key.
func Sign(secretEncoded string, message []byte) (*SignResult, error) {
	secret, err := ParseSecretKey(secretEncoded)
	if err != nil {
		return nil, err
	}

	return &SignResult{
		Signature: ed25519.Sign(secret, message),
		PublicKey: secret.Public().(ed25519.PublicKey),
		Message:   message,
	}, nil
}
