package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/solana_layer/internal/httpapi"
	"github.com/R3E-Network/solana_layer/internal/metrics"
	"github.com/R3E-Network/solana_layer/pkg/testutil"
)

func newGateway(t *testing.T) *Client {
	t.Helper()

	logger, _ := testutil.NewLogger("error")

	srv := httptest.NewServer(httpapi.New(httpapi.Options{
		ServiceName: "solana-gateway",
		Version:     "test",
		Logger:      logger,
		Metrics:     metrics.New(),
	}))
	t.Cleanup(srv.Close)

	return New(Config{BaseURL: srv.URL, MaxRetries: 1})
}

func TestClient_SignVerifyRoundTrip(t *testing.T) {
	c := newGateway(t)
	ctx := WithTraceID(context.Background(), "client-test")

	kp, err := c.GenerateKeypair(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, kp.Pubkey)

	sig, err := c.SignMessage(ctx, "Hello, Solana!", kp.Secret)
	require.NoError(t, err)
	assert.Equal(t, kp.Pubkey, sig.PublicKey)
	assert.Equal(t, "Hello, Solana!", sig.Message)

	ok, err := c.VerifyMessage(ctx, "Hello, Solana!", sig.Signature, kp.Pubkey)
	require.NoError(t, err)
	assert.True(t, ok.Valid)

	bad, err := c.VerifyMessage(ctx, "Hello, Solana?", sig.Signature, kp.Pubkey)
	require.NoError(t, err)
	assert.False(t, bad.Valid)
}

func TestClient_Instructions(t *testing.T) {
	c := newGateway(t)
	ctx := context.Background()

	from, err := c.GenerateKeypair(ctx)
	require.NoError(t, err)
	to, err := c.GenerateKeypair(ctx)
	require.NoError(t, err)
	mint, err := c.GenerateKeypair(ctx)
	require.NoError(t, err)

	transfer, err := c.SendSol(ctx, from.Pubkey, to.Pubkey, 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{from.Pubkey, to.Pubkey}, transfer.Accounts)
	assert.Equal(t, "AgAAAOgDAAAAAAAA", transfer.InstructionData)

	created, err := c.CreateToken(ctx, from.Pubkey, mint.Pubkey, 9)
	require.NoError(t, err)
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", created.ProgramID)
	require.Len(t, created.Accounts, 2)
	assert.True(t, created.Accounts[0].IsWritable)

	minted, err := c.MintToken(ctx, mint.Pubkey, to.Pubkey, from.Pubkey, 1000000)
	require.NoError(t, err)
	assert.Equal(t, "B0BCDwAAAAAA", minted.InstructionData)

	sent, err := c.SendToken(ctx, to.Pubkey, mint.Pubkey, from.Pubkey, 1)
	require.NoError(t, err)
	require.Len(t, sent.Accounts, 3)
	assert.Equal(t, from.Pubkey, sent.Accounts[2].Pubkey)
	assert.True(t, sent.Accounts[2].IsSigner)
}

func TestClient_FailureEnvelope(t *testing.T) {
	c := newGateway(t)

	_, err := c.SendSol(context.Background(), "bad!", "bad!", 1)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid sender pubkey", apiErr.Message)
}

func TestClient_Health(t *testing.T) {
	c := newGateway(t)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
}
