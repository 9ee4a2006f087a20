// Package instruction builds unsigned Solana instruction descriptors: the
// target program, the ordered account list with signer/writable flags, and the
// serialized instruction data. Nothing here signs or submits a transaction.
package instruction

import (
	"github.com/R3E-Network/solana_layer/internal/codec"
	"github.com/R3E-Network/solana_layer/internal/errors"
)

// Well-known program and sysvar addresses.
var (
	SystemProgramID                 = MustPublicKey("11111111111111111111111111111111")
	TokenProgramID                  = MustPublicKey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenAccountProgramID = MustPublicKey("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SysvarRentPubkey                = MustPublicKey("SysvarRent111111111111111111111111111111111")
)

// AccountMeta is one entry of an instruction's account list. Order matters:
// programs address accounts by position.
type AccountMeta struct {
	PublicKey  PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is an unsigned instruction descriptor.
type Instruction struct {
	ProgramID PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// AccountKeys returns the base58 account identifiers in order.
func (ix *Instruction) AccountKeys() []string {
	keys := make([]string, len(ix.Accounts))
	for i, acct := range ix.Accounts {
		keys[i] = acct.PublicKey.String()
	}
	return keys
}

// DataBase64 returns the instruction data in its wire encoding.
func (ix *Instruction) DataBase64() string {
	return codec.EncodeBase64(ix.Data)
}

// parseAccount decodes field, reporting failures as InvalidAccount with the
// given client-facing message.
func parseAccount(field, message, value string) (PublicKey, error) {
	pk, err := ParsePublicKey(value)
	if err != nil {
		return pk, errors.InvalidAccount(field, message, err)
	}
	return pk, nil
}
