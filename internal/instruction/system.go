package instruction

import (
	"encoding/binary"
)

// systemTransfer is the System program's transfer discriminant (u32 LE).
const systemTransfer uint32 = 2

// NewTransfer builds a System program transfer of lamports from from to to.
// The data layout is the u32 discriminant followed by the u64 amount.
func NewTransfer(from, to PublicKey, lamports uint64) *Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], systemTransfer)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return &Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			{PublicKey: from, IsSigner: true, IsWritable: true},
			{PublicKey: to, IsSigner: false, IsWritable: true},
		},
		Data: data,
	}
}

// Transfer parses base58 account identifiers and builds a native transfer.
// from is validated before to. No balance or existence checks are made and a
// zero amount is valid.
func Transfer(from, to string, lamports uint64) (*Instruction, error) {
	fromKey, err := parseAccount("from", "Invalid sender pubkey", from)
	if err != nil {
		return nil, err
	}
	toKey, err := parseAccount("to", "Invalid recipient pubkey", to)
	if err != nil {
		return nil, err
	}
	return NewTransfer(fromKey, toKey, lamports), nil
}
