package keypair

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/solana_layer/internal/codec"
)

// RFC 8032 section 7.1, TEST 1.
const (
	rfcSeedHex   = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	rfcPublicHex = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestFromSeed_DerivesRFC8032PublicKey(t *testing.T) {
	kp, err := FromSeed(mustHex(t, rfcSeedHex))
	require.NoError(t, err)

	assert.Equal(t, rfcPublicHex, hex.EncodeToString(kp.PublicKey))
	assert.Len(t, kp.SecretKey, SecretKeySize)
	assert.Equal(t, mustHex(t, rfcSeedHex), []byte(kp.SecretKey[:SeedSize]))
	assert.Equal(t, []byte(kp.PublicKey), []byte(kp.SecretKey[SeedSize:]))
}

func TestFromSeed_RejectsWrongSize(t *testing.T) {
	_, err := FromSeed(make([]byte, 31))
	assert.Error(t, err)
}

func TestGenerator_DeterministicSource(t *testing.T) {
	seed := mustHex(t, rfcSeedHex)
	g := NewGenerator(bytes.NewReader(seed))

	kp := g.Generate()
	assert.Equal(t, rfcPublicHex, hex.EncodeToString(kp.PublicKey))

	secret, err := codec.DecodeBase58(kp.SecretBase58())
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	public, err := codec.DecodeBase58(kp.PublicBase58())
	require.NoError(t, err)
	assert.Equal(t, []byte(kp.PublicKey), public)
}

func TestGenerator_ConsumesExactlySeedBytes(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte{7}, SeedSize*2))
	g := NewGenerator(src)

	g.Generate()
	assert.Equal(t, SeedSize, src.Len())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerator_PanicsOnRandomnessFailure(t *testing.T) {
	g := NewGenerator(failingReader{})
	assert.Panics(t, func() { g.Generate() })
}

func TestGenerator_OnFatalCalledFirst(t *testing.T) {
	var got error
	g := NewGenerator(failingReader{}).OnFatal(func(err error) { got = err })

	assert.Panics(t, func() { g.Generate() })
	require.Error(t, got)
	assert.Contains(t, got.Error(), "entropy exhausted")
}

func TestGenerator_DefaultSourceConcurrent(t *testing.T) {
	var g Generator

	const n = 32
	keys := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kp := g.Generate()
			msg := []byte("concurrent")
			if !ed25519.Verify(kp.PublicKey, msg, ed25519.Sign(kp.SecretKey, msg)) {
				t.Errorf("keypair %d does not sign/verify", i)
			}
			keys[i] = kp.PublicBase58()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate public key %s", k)
		seen[k] = true
	}
}
