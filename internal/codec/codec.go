// Package codec converts between raw bytes and the textual encodings used on
// the wire: base58 for keys and account identifiers, base64 for signatures and
// instruction data.
package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/R3E-Network/solana_layer/internal/errors"
)

// EncodeBase58 encodes b with the Bitcoin base58 alphabet.
func EncodeBase58(b []byte) string {
	return base58.Encode(b)
}

// DecodeBase58 decodes s. The empty string and characters outside the
// alphabet are rejected with errors.ErrInvalidEncoding.
func DecodeBase58(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty base58 string", errors.ErrInvalidEncoding)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidEncoding, err)
	}
	return b, nil
}

// MaxBase58Len is an upper bound on the encoded length of size bytes:
// 44 for a 32-byte key, 88 for a 64-byte secret.
func MaxBase58Len(size int) int {
	// log(256)/log(58) < 1.366
	return (size*1366 + 999) / 1000
}

// DecodeBase58Fixed decodes s and requires exactly size bytes. Strings longer
// than MaxBase58Len(size) are rejected before decoding, since base58 decoding
// is quadratic in the input length.
func DecodeBase58Fixed(s string, size int) ([]byte, error) {
	if limit := MaxBase58Len(size); len(s) > limit {
		return nil, fmt.Errorf("%w: encoded length %d exceeds %d", errors.ErrInvalidLength, len(s), limit)
	}
	b, err := DecodeBase58(s)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errors.ErrInvalidLength, len(b), size)
	}
	return b, nil
}

// EncodeBase64 encodes b as padded standard base64.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 decodes padded standard base64. Missing padding, URL-safe
// characters and trailing garbage are rejected.
func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidEncoding, err)
	}
	return b, nil
}

// DecodeBase64Fixed decodes s and requires exactly size bytes.
func DecodeBase64Fixed(s string, size int) ([]byte, error) {
	b, err := DecodeBase64(s)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errors.ErrInvalidLength, len(b), size)
	}
	return b, nil
}
