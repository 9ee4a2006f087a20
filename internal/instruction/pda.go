package instruction

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

const pdaMarker = "ProgramDerivedAddress"

// ErrNoViableBump is returned when every bump seed yields an on-curve address.
var ErrNoViableBump = errors.New("unable to find a viable program address bump seed")

// IsOnCurve reports whether b is a valid compressed Edwards25519 point.
// Program derived addresses must not be.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress derives the address for seeds under programID. It
// fails when the hash lands on the curve.
func CreateProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, error) {
	var pda PublicKey
	if len(seeds) > MaxSeeds {
		return pda, fmt.Errorf("too many seeds: %d > %d", len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return pda, fmt.Errorf("seed length %d exceeds %d", len(seed), MaxSeedLength)
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	copy(pda[:], h.Sum(nil))
	if IsOnCurve(pda[:]) {
		return PublicKey{}, fmt.Errorf("derived address is on the ed25519 curve")
	}
	return pda, nil
}

// FindProgramAddress searches bump seeds from 255 down and returns the first
// off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		pda, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return pda, uint8(bump), nil
		}
	}
	return PublicKey{}, 0, ErrNoViableBump
}

// FindAssociatedTokenAddress returns the associated token account that holds
// mint tokens for wallet.
func FindAssociatedTokenAddress(wallet, mint PublicKey) (PublicKey, error) {
	pda, _, err := FindProgramAddress(
		[][]byte{wallet[:], TokenProgramID[:], mint[:]},
		AssociatedTokenAccountProgramID,
	)
	return pda, err
}
