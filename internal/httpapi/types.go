package httpapi

import (
	"fmt"
	"strings"

	"github.com/R3E-Network/solana_layer/internal/instruction"
)

type keypairResponse struct {
	Pubkey string `json:"pubkey"`
	Secret string `json:"secret"`
}

// Request fields are pointers so an absent field is distinguishable from a
// zero value.
type signMessageRequest struct {
	Message *string `json:"message"`
	Secret  *string `json:"secret"`
}

func (r *signMessageRequest) Validate() error {
	return required(field{"message", r.Message != nil}, field{"secret", r.Secret != nil})
}

type signMessageResponse struct {
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
	Message   string `json:"message"`
}

type verifyMessageRequest struct {
	Message   *string `json:"message"`
	Signature *string `json:"signature"`
	Pubkey    *string `json:"pubkey"`
}

func (r *verifyMessageRequest) Validate() error {
	return required(field{"message", r.Message != nil}, field{"signature", r.Signature != nil}, field{"pubkey", r.Pubkey != nil})
}

type verifyMessageResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Pubkey  string `json:"pubkey"`
}

type sendSolRequest struct {
	From     *string `json:"from"`
	To       *string `json:"to"`
	Lamports *uint64 `json:"lamports"`
}

func (r *sendSolRequest) Validate() error {
	return required(field{"from", r.From != nil}, field{"to", r.To != nil}, field{"lamports", r.Lamports != nil})
}

type sendSolResponse struct {
	ProgramID       string   `json:"program_id"`
	Accounts        []string `json:"accounts"`
	InstructionData string   `json:"instruction_data"`
}

type createTokenRequest struct {
	MintAuthority *string `json:"mintAuthority"`
	Mint          *string `json:"mint"`
	Decimals      *uint8  `json:"decimals"`
}

func (r *createTokenRequest) Validate() error {
	return required(field{"mintAuthority", r.MintAuthority != nil}, field{"mint", r.Mint != nil}, field{"decimals", r.Decimals != nil})
}

type mintTokenRequest struct {
	Mint        *string `json:"mint"`
	Destination *string `json:"destination"`
	Authority   *string `json:"authority"`
	Amount      *uint64 `json:"amount"`
}

func (r *mintTokenRequest) Validate() error {
	return required(field{"mint", r.Mint != nil}, field{"destination", r.Destination != nil},
		field{"authority", r.Authority != nil}, field{"amount", r.Amount != nil})
}

type sendTokenRequest struct {
	Destination *string `json:"destination"`
	Mint        *string `json:"mint"`
	Owner       *string `json:"owner"`
	Amount      *uint64 `json:"amount"`
}

func (r *sendTokenRequest) Validate() error {
	return required(field{"destination", r.Destination != nil}, field{"mint", r.Mint != nil},
		field{"owner", r.Owner != nil}, field{"amount", r.Amount != nil})
}

type field struct {
	name    string
	present bool
}

func required(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

type accountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

type tokenInstructionResponse struct {
	ProgramID       string        `json:"program_id"`
	Accounts        []accountMeta `json:"accounts"`
	InstructionData string        `json:"instruction_data"`
}

// sendTokenAccount keeps the camelCase shape clients of /send/token expect.
type sendTokenAccount struct {
	Pubkey   string `json:"pubkey"`
	IsSigner bool   `json:"isSigner"`
}

type sendTokenResponse struct {
	ProgramID       string             `json:"program_id"`
	Accounts        []sendTokenAccount `json:"accounts"`
	InstructionData string             `json:"instruction_data"`
}

func newTokenInstructionResponse(ix *instruction.Instruction) tokenInstructionResponse {
	accounts := make([]accountMeta, len(ix.Accounts))
	for i, acct := range ix.Accounts {
		accounts[i] = accountMeta{
			Pubkey:     acct.PublicKey.String(),
			IsSigner:   acct.IsSigner,
			IsWritable: acct.IsWritable,
		}
	}
	return tokenInstructionResponse{
		ProgramID:       ix.ProgramID.String(),
		Accounts:        accounts,
		InstructionData: ix.DataBase64(),
	}
}

func newSendTokenResponse(ix *instruction.Instruction) sendTokenResponse {
	accounts := make([]sendTokenAccount, len(ix.Accounts))
	for i, acct := range ix.Accounts {
		accounts[i] = sendTokenAccount{Pubkey: acct.PublicKey.String(), IsSigner: acct.IsSigner}
	}
	return sendTokenResponse{
		ProgramID:       ix.ProgramID.String(),
		Accounts:        accounts,
		InstructionData: ix.DataBase64(),
	}
}
