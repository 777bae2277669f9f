// Package aeskit implements the symmetric session-key side of the
// handshake: AES key generation/parsing and ECB-mode, zero-padded block
// encryption and decryption.
//
// The block transform itself comes from crypto/aes (the AES primitive is
// assumed infrastructure here exactly the way math/big is the assumed
// arbitrary-precision primitive for rsakex); what this package owns is the
// key lifecycle and the ECB chaining loop, which the standard library
// deliberately does not provide (crypto/cipher ships CBC/CTR/GCM, not
// ECB). The chaining shape mirrors wedkarz02-aes256's EncryptECB/DecryptECB
// loop over fixed-size blocks.
package aeskit

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// BlockSize is the AES block size in bytes.
const BlockSize = aes.BlockSize // 16

// ErrInvalidKeyLength is returned when a key's byte length does not decode
// to 128, 192 or 256 bits.
var ErrInvalidKeyLength = errors.New("aeskit: key length must be 16, 24 or 32 bytes")

// Key is a symmetric AES key of 128, 192 or 256 bits. It exclusively owns
// its raw key bytes and the derived block-cipher state.
type Key struct {
	bits  int
	raw   []byte
	block cipher.Block
}

// Bits returns the key size in bits (128, 192 or 256).
func (k *Key) Bits() int { return k.bits }

// Raw returns the raw key bytes.
func (k *Key) Raw() []byte {
	out := make([]byte, len(k.raw))
	copy(out, k.raw)
	return out
}

// String serializes the key as lowercase hexadecimal without leading
// zeros: the raw bytes interpreted as a big-endian big-integer.
func (k *Key) String() string {
	return new(big.Int).SetBytes(k.raw).Text(16)
}

// Fingerprint returns a short hex identifier for the key, derived with
// blake2b-256 over its raw bytes. Debug/trace use only; see
// rsakex.PublicKey.Fingerprint for the RSA-side counterpart.
func (k *Key) Fingerprint() string {
	sum := blake2b.Sum256(k.raw)
	return fmt.Sprintf("%x", sum[:8])
}

func newKey(raw []byte) (*Key, error) {
	bits := len(raw) * 8
	switch bits {
	case 128, 192, 256:
	default:
		return nil, fmt.Errorf("%w: got %d bytes (%d bits)", ErrInvalidKeyLength, len(raw), bits)
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("aeskit: constructing block cipher: %w", err)
	}
	return &Key{bits: bits, raw: raw, block: block}, nil
}

// Generate draws bits/8 uniform random bytes from crypto/rand and
// constructs the corresponding AES key. bits must be 128, 192 or 256.
func Generate(bits int) (*Key, error) {
	switch bits {
	case 128, 192, 256:
	default:
		return nil, fmt.Errorf("%w: requested %d bits", ErrInvalidKeyLength, bits)
	}
	raw := make([]byte, bits/8)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("aeskit: generating key material: %w", err)
	}
	return newKey(raw)
}

// Parse decodes a lowercase hex string produced by Key.String: the string
// is converted via a big-integer to a big-endian byte sequence, and the
// cipher variant is selected from the resulting byte length. Any length
// other than 16, 24 or 32 bytes is a parse error.
//
// Note that, like the serialization it inverts, this loses any leading
// zero bytes the original key material had: a key whose first byte(s) are
// zero round-trips to a shorter byte sequence. This is an inherited
// limitation of big-integer-based serialization, not fixed here.
func Parse(hexStr string) (*Key, error) {
	i, ok := new(big.Int).SetString(hexStr, 16)
	if !ok {
		return nil, fmt.Errorf("aeskit: malformed hex key %q", hexStr)
	}
	return newKey(i.Bytes())
}
