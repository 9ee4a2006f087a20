package instruction

import (
	"encoding/binary"
	"fmt"

	"github.com/R3E-Network/solana_layer/internal/errors"
)

// SPL Token instruction discriminants (single byte).
const (
	tokenInitializeMint uint8 = 0
	tokenTransfer       uint8 = 3
	tokenMintTo         uint8 = 7
)

// NewInitializeMint builds an SPL Token InitializeMint with no freeze
// authority. Layout: tag, decimals, mint authority, COption<Pubkey> (0 = None).
func NewInitializeMint(mint, mintAuthority PublicKey, decimals uint8) *Instruction {
	data := make([]byte, 0, 2+PublicKeySize+1)
	data = append(data, tokenInitializeMint, decimals)
	data = append(data, mintAuthority[:]...)
	data = append(data, 0)

	return &Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: mint, IsSigner: false, IsWritable: true},
			{PublicKey: SysvarRentPubkey, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}
}

// NewMintTo builds an SPL Token MintTo of amount base units into destination.
func NewMintTo(mint, destination, authority PublicKey, amount uint64) *Instruction {
	return &Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: mint, IsSigner: false, IsWritable: true},
			{PublicKey: destination, IsSigner: false, IsWritable: true},
			{PublicKey: authority, IsSigner: true, IsWritable: false},
		},
		Data: amountData(tokenMintTo, amount),
	}
}

// NewTokenTransfer builds an SPL Token Transfer between two token accounts.
func NewTokenTransfer(source, destination, owner PublicKey, amount uint64) *Instruction {
	return &Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: source, IsSigner: false, IsWritable: true},
			{PublicKey: destination, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: false},
		},
		Data: amountData(tokenTransfer, amount),
	}
}

func amountData(tag uint8, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = tag
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// InitializeMint parses base58 identifiers and builds NewInitializeMint.
func InitializeMint(mint, mintAuthority string, decimals uint8) (*Instruction, error) {
	mintKey, err := parseAccount("mint", "Invalid mint pubkey", mint)
	if err != nil {
		return nil, err
	}
	authorityKey, err := parseAccount("mintAuthority", "Invalid mint authority pubkey", mintAuthority)
	if err != nil {
		return nil, err
	}
	return NewInitializeMint(mintKey, authorityKey, decimals), nil
}

// MintTo parses base58 identifiers and builds NewMintTo.
func MintTo(mint, destination, authority string, amount uint64) (*Instruction, error) {
	mintKey, err := parseAccount("mint", "Invalid mint pubkey", mint)
	if err != nil {
		return nil, err
	}
	destinationKey, err := parseAccount("destination", "Invalid destination pubkey", destination)
	if err != nil {
		return nil, err
	}
	authorityKey, err := parseAccount("authority", "Invalid authority pubkey", authority)
	if err != nil {
		return nil, err
	}
	return NewMintTo(mintKey, destinationKey, authorityKey, amount), nil
}

// TokenTransfer moves amount of mint from owner's associated token account to
// destination's associated token account.
func TokenTransfer(owner, destination, mint string, amount uint64) (*Instruction, error) {
	ownerKey, err := parseAccount("owner", "Invalid owner pubkey", owner)
	if err != nil {
		return nil, err
	}
	destinationKey, err := parseAccount("destination", "Invalid destination pubkey", destination)
	if err != nil {
		return nil, err
	}
	mintKey, err := parseAccount("mint", "Invalid mint pubkey", mint)
	if err != nil {
		return nil, err
	}

	source, err := FindAssociatedTokenAddress(ownerKey, mintKey)
	if err != nil {
		return nil, errors.Internal("Failed to derive token account", fmt.Errorf("source: %w", err))
	}
	target, err := FindAssociatedTokenAddress(destinationKey, mintKey)
	if err != nil {
		return nil, errors.Internal("Failed to derive token account", fmt.Errorf("destination: %w", err))
	}
	return NewTokenTransfer(source, target, ownerKey, amount), nil
}
