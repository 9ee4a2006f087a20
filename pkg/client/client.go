// Package client is a typed Go client for the Solana gateway HTTP API.
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/R3E-Network/solana_layer/internal/httputil"
)

// APIError is returned when the gateway answers with a failure envelope.
type APIError = httputil.APIError

// Config configures a Client.
type Config struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
	MaxRetries  int
	HTTPClient  *http.Client
}

// Client calls the gateway endpoints.
type Client struct {
	http *httputil.ServiceClient
}

func New(cfg Config) *Client {
	return &Client{http: httputil.NewServiceClient(httputil.ServiceClientConfig{
		BaseURL:     cfg.BaseURL,
		BearerToken: cfg.BearerToken,
		Timeout:     cfg.Timeout,
		MaxRetries:  cfg.MaxRetries,
		HTTPClient:  cfg.HTTPClient,
	})}
}

// WithTraceID tags requests made with ctx so gateway logs can be correlated.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return httputil.WithTraceID(ctx, traceID)
}

type Keypair struct {
	Pubkey string `json:"pubkey"`
	Secret string `json:"secret"`
}

type Signature struct {
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
	Message   string `json:"message"`
}

type Verification struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Pubkey  string `json:"pubkey"`
}

// SolTransfer is the native transfer instruction; Accounts are base58 keys
// in instruction order.
type SolTransfer struct {
	ProgramID       string   `json:"program_id"`
	Accounts        []string `json:"accounts"`
	InstructionData string   `json:"instruction_data"`
}

type AccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// TokenInstruction is returned by CreateToken and MintToken.
type TokenInstruction struct {
	ProgramID       string        `json:"program_id"`
	Accounts        []AccountMeta `json:"accounts"`
	InstructionData string        `json:"instruction_data"`
}

type TokenTransferAccount struct {
	Pubkey   string `json:"pubkey"`
	IsSigner bool   `json:"isSigner"`
}

type TokenTransfer struct {
	ProgramID       string                 `json:"program_id"`
	Accounts        []TokenTransferAccount `json:"accounts"`
	InstructionData string                 `json:"instruction_data"`
}

type Health struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) GenerateKeypair(ctx context.Context) (*Keypair, error) {
	var out Keypair
	if err := c.post(ctx, "/keypair", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignMessage(ctx context.Context, message, secret string) (*Signature, error) {
	var out Signature
	req := map[string]string{"message": message, "secret": secret}
	if err := c.post(ctx, "/message/sign", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyMessage(ctx context.Context, message, signature, pubkey string) (*Verification, error) {
	var out Verification
	req := map[string]string{"message": message, "signature": signature, "pubkey": pubkey}
	if err := c.post(ctx, "/message/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendSol(ctx context.Context, from, to string, lamports uint64) (*SolTransfer, error) {
	var out SolTransfer
	req := map[string]any{"from": from, "to": to, "lamports": lamports}
	if err := c.post(ctx, "/send/sol", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateToken(ctx context.Context, mintAuthority, mint string, decimals uint8) (*TokenInstruction, error) {
	var out TokenInstruction
	req := map[string]any{"mintAuthority": mintAuthority, "mint": mint, "decimals": decimals}
	if err := c.post(ctx, "/token/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MintToken(ctx context.Context, mint, destination, authority string, amount uint64) (*TokenInstruction, error) {
	var out TokenInstruction
	req := map[string]any{"mint": mint, "destination": destination, "authority": authority, "amount": amount}
	if err := c.post(ctx, "/token/mint", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendToken(ctx context.Context, destination, mint, owner string, amount uint64) (*TokenTransfer, error) {
	var out TokenTransfer
	req := map[string]any{"destination": destination, "mint": mint, "owner": owner, "amount": amount}
	if err := c.post(ctx, "/send/token", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	resp, err := c.http.Get(ctx, "/health")
	if err != nil {
		return nil, err
	}
	var out Health
	if err := httputil.DecodeEnvelope(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.http.Post(ctx, path, body)
	if err != nil {
		return err
	}
	return httputil.DecodeEnvelope(resp, out)
}
