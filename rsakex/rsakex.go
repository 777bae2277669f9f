// Package rsakex implements the RSA key-generation and message-transform
// engine used by the handshake: candidate-prime generation via Miller-Rabin,
// (e, d, n) derivation, and the encrypt/decrypt transform over individual
// big-integer messages.
//
// It deliberately reimplements RSA on top of bigmath and math/big rather
// than using crypto/rsa, the way mmussomele-crypto/rsa.go and
// bastionzero-keysplitting/rsa.go build their own RSA cores on math/big:
// the point of this package is the arithmetic itself, not a production
// cipher.
package rsakex

import (
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// ErrKeyInvalid flags a triple that failed the round-trip validity
// predicate. No function in this package returns it: GenerateChecked has
// no retry budget and loops until a valid triple is found. It is there for
// callers composing their own retry policy around GenerateUnchecked.
var ErrKeyInvalid = errors.New("rsakex: key pair fails round-trip validity predicate")

// ErrParsePublicKey is returned when a serialized public key cannot be
// decoded.
var ErrParsePublicKey = errors.New("rsakex: malformed public key")

// probeMessage is the canonical probe value (m = 2) used by the checked
// generator's validity predicate.
var probeMessage = big.NewInt(2)

// KeyPair is an RSA identity: the triple (e, d, n). It exclusively owns
// its three big integers.
type KeyPair struct {
	e, d, n *big.Int
}

// Public returns the public-key view (e, n) derived from kp.
func (kp *KeyPair) Public() *PublicKey {
	return &PublicKey{e: kp.e, n: kp.n}
}

// Private returns the private-key view (d, n). The returned value is a
// non-owning, weak reference: it shares kp's big integers directly and
// must not be used after kp is discarded. This mirrors the convention of
// handing back plain struct views that borrow from their originating
// environment rather than copying it.
func (kp *KeyPair) Private() *PrivateKey {
	return &PrivateKey{d: kp.d, n: kp.n}
}

// Valid reports whether the round-trip validity predicate holds for the
// canonical probe value m = 2: (m^e mod n)^d mod n == m.
func (kp *KeyPair) Valid() bool {
	c := new(big.Int).Exp(probeMessage, kp.e, kp.n)
	m := new(big.Int).Exp(c, kp.d, kp.n)
	return m.Cmp(probeMessage) == 0
}

// PublicKey is the public-key view (e, n) of an RSA identity.
type PublicKey struct {
	e, n *big.Int
}

// E returns the public exponent.
func (p *PublicKey) E() *big.Int { return new(big.Int).Set(p.e) }

// N returns the modulus.
func (p *PublicKey) N() *big.Int { return new(big.Int).Set(p.n) }

// MaxMessageSize returns the largest number of plaintext bytes that can be
// encrypted directly under this key without risking a numeric value >= n:
// (bits(n) - 1) / 8 bytes.
func (p *PublicKey) MaxMessageSize() int {
	return (p.n.BitLen() - 1) / 8
}

// String serializes the public key as "<n> <e>", the wire format used by
// the RSA: frame during the key-exchange phase.
func (p *PublicKey) String() string {
	return fmt.Sprintf("%s %s", p.n.String(), p.e.String())
}

// Fingerprint returns a short hex identifier for the key, derived with
// blake2b-256 over its serialized form. It exists purely for debug/trace
// output (see handshake.Config.Trace) and plays no role in the protocol.
func (p *PublicKey) Fingerprint() string {
	sum := blake2b.Sum256([]byte(p.String()))
	return fmt.Sprintf("%x", sum[:8])
}

// ParsePublicKey decodes the "<n> <e>" wire format produced by String.
func ParsePublicKey(s string) (*PublicKey, error) {
	var nStr, eStr string
	if _, err := fmt.Sscanf(s, "%s %s", &nStr, &eStr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsePublicKey, err)
	}
	n, ok := new(big.Int).SetString(nStr, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad modulus %q", ErrParsePublicKey, nStr)
	}
	e, ok := new(big.Int).SetString(eStr, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad exponent %q", ErrParsePublicKey, eStr)
	}
	return &PublicKey{e: e, n: n}, nil
}

// PrivateKey is the private-key view (d, n) of an RSA identity. It is a
// non-owning view over a KeyPair's big integers; see KeyPair.Private.
type PrivateKey struct {
	d, n *big.Int
}

// D returns the private exponent.
func (p *PrivateKey) D() *big.Int { return new(big.Int).Set(p.d) }

// N returns the modulus.
func (p *PrivateKey) N() *big.Int { return new(big.Int).Set(p.n) }
