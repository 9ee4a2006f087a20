package instruction

import (
	"github.com/R3E-Network/solana_layer/internal/codec"
)

// PublicKeySize is the size of an account identifier.
const PublicKeySize = 32

// PublicKey is a 32-byte account identifier.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes a base58 account identifier. Any decoded length
// other than 32 is rejected.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := codec.DecodeBase58Fixed(s, PublicKeySize)
	if err != nil {
		return pk, err
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustPublicKey is ParsePublicKey for compile-time constants.
func MustPublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic("instruction: bad public key constant " + s + ": " + err.Error())
	}
	return pk
}

func (pk PublicKey) String() string {
	return codec.EncodeBase58(pk[:])
}

func (pk PublicKey) Bytes() []byte {
	return pk[:]
}
