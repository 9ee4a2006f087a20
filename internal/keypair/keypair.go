// Package keypair generates Ed25519 signing keypairs in the wire format used by
// Solana tooling: a base58 32-byte public key and a base58 64-byte secret key
// holding seed||public.
package keypair

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/R3E-Network/solana_layer/internal/codec"
)

const (
	SeedSize      = ed25519.SeedSize
	PublicKeySize = ed25519.PublicKeySize
	SecretKeySize = ed25519.PrivateKeySize
)

// Keypair is an Ed25519 keypair. SecretKey is seed||public.
type Keypair struct {
	PublicKey ed25519.PublicKey
	SecretKey ed25519.PrivateKey
}

// PublicBase58 returns the base58 public key.
func (k *Keypair) PublicBase58() string {
	return codec.EncodeBase58(k.PublicKey)
}

// SecretBase58 returns the base58 64-byte secret key.
func (k *Keypair) SecretBase58() string {
	return codec.EncodeBase58(k.SecretKey)
}

// FromSeed derives the keypair for a 32-byte seed.
func FromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	secret := ed25519.NewKeyFromSeed(seed)
	return &Keypair{
		PublicKey: secret.Public().(ed25519.PublicKey),
		SecretKey: secret,
	}, nil
}

// Generator draws keypairs from a randomness source. The zero value and
// NewGenerator(nil) use crypto/rand.Reader, which is safe for concurrent use.
// Custom sources must be safe for concurrent use as well.
type Generator struct {
	rand  io.Reader
	fatal func(error)
}

func NewGenerator(randReader io.Reader) *Generator {
	return &Generator{rand: randReader}
}

// OnFatal installs the handler invoked when the randomness source fails. The
// gateway uses it to terminate the process; without one Generate panics.
func (g *Generator) OnFatal(fn func(error)) *Generator {
	g.fatal = fn
	return g
}

// Generate returns a fresh keypair. A failing randomness source is a process
// level fault, never a per-request error.
func (g *Generator) Generate() *Keypair {
	randReader := g.source()

	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(randReader, seed); err != nil {
		err = fmt.Errorf("keypair: randomness source failed: %w", err)
		if g != nil && g.fatal != nil {
			g.fatal(err)
		}
		panic(err)
	}

	kp, err := FromSeed(seed)
	if err != nil {
		panic(fmt.Sprintf("keypair: derive: %v", err))
	}
	return kp
}

func (g *Generator) source() io.Reader {
	if g == nil || g.rand == nil {
		return rand.Reader
	}
	return g.rand
}
