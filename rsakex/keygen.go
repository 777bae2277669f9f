package rsakex

import (
	cryptoRand "crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/lfalcao/comsec/bigmath"
)

// DefaultMillerRabinRounds is the witness count used in production key
// generation paths (k = 128).
const DefaultMillerRabinRounds = 128

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// genOptions configures key generation; see KeyGenOption.
type genOptions struct {
	rounds int
	rng    io.Reader
}

// KeyGenOption customizes GenerateChecked/GenerateUnchecked. When no
// option is given, generation uses DefaultMillerRabinRounds witnesses and
// crypto/rand.Reader, the production-grade defaults.
type KeyGenOption func(*genOptions)

// WithMillerRabinRounds overrides the witness count used for primality
// testing of candidate primes.
func WithMillerRabinRounds(k int) KeyGenOption {
	return func(o *genOptions) { o.rounds = k }
}

// WithRandSource overrides the random source used for candidate generation.
// Production code should never need this; it exists so deterministic tests
// can generate small keys quickly without weakening crypto/rand.Reader for
// everyone else, the same seam mmussomele-crypto/rand and
// bastionzero-keysplitting/rsa.go expose.
func WithRandSource(r io.Reader) KeyGenOption {
	return func(o *genOptions) { o.rng = r }
}

func resolveOptions(opts []KeyGenOption) genOptions {
	o := genOptions{rounds: DefaultMillerRabinRounds, rng: cryptoRand.Reader}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GenerateUnchecked produces an RSA key pair of the given total key size
// (bits, the bit-length of n) without verifying the round-trip validity
// predicate. It is labeled unsafe at the API surface: callers that need a
// guaranteed-valid triple should use GenerateChecked instead.
func GenerateUnchecked(bits int, opts ...KeyGenOption) (*KeyPair, error) {
	o := resolveOptions(opts)
	return generate(bits, o)
}

// GenerateChecked produces an RSA key pair of the given total key size,
// retrying generation until the round-trip validity predicate holds for
// the canonical probe value m = 2. bits must be at least 8.
func GenerateChecked(bits int, opts ...KeyGenOption) (*KeyPair, error) {
	o := resolveOptions(opts)
	for {
		kp, err := generate(bits, o)
		if err != nil {
			return nil, err
		}
		if kp.Valid() {
			return kp, nil
		}
	}
}

func generate(bits int, o genOptions) (*KeyPair, error) {
	if bits < 8 {
		return nil, fmt.Errorf("rsakex: key size must be at least 8 bits, got %d", bits)
	}

	for {
		p, err := randomProbablePrime(bits/2, o)
		if err != nil {
			return nil, err
		}
		q, err := randomProbablePrime(bits/2, o)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)

		p1 := new(big.Int).Sub(p, one)
		q1 := new(big.Int).Sub(q, one)
		gcdPQ := new(big.Int).GCD(nil, nil, p1, q1)
		lambda := new(big.Int).Div(new(big.Int).Mul(p1, q1), gcdPQ) // lcm(p-1, q-1)

		e, err := chooseExponent(lambda, o)
		if err != nil {
			return nil, err
		}
		d, ok := bigmath.ModInverse(e, lambda)
		if !ok {
			// gcd(e, lambda) != 1 by construction of chooseExponent; this
			// path is unreachable outside of an adversarial rng.
			continue
		}

		return &KeyPair{e: e, d: d, n: n}, nil
	}
}

// randomProbablePrime draws a bitLength-bit candidate with the top and
// bottom bits forced to 1 (ensuring both the expected magnitude and
// oddness), retrying until Miller-Rabin with o.rounds witnesses accepts
// it.
func randomProbablePrime(bitLength int, o genOptions) (*big.Int, error) {
	if bitLength < 2 {
		bitLength = 2
	}
	numBytes := (bitLength + 7) / 8
	excess := uint(numBytes*8 - bitLength)
	for {
		buf := make([]byte, numBytes)
		if _, err := io.ReadFull(o.rng, buf); err != nil {
			return nil, fmt.Errorf("rsakex: reading random candidate: %w", err)
		}
		if excess > 0 {
			buf[0] &= 0xFF >> excess
		}

		cand := new(big.Int).SetBytes(buf)
		cand.SetBit(cand, bitLength-1, 1) // force top bit: expected magnitude
		cand.SetBit(cand, 0, 1)           // force bottom bit: odd

		if bigmath.IsProbablePrime(cand, o.rounds) {
			return cand, nil
		}
	}
}

// chooseExponent picks e uniformly in (1, lambda) until gcd(e, lambda) = 1.
func chooseExponent(lambda *big.Int, o genOptions) (*big.Int, error) {
	upper := new(big.Int).Sub(lambda, two)
	if upper.Sign() <= 0 {
		return nil, fmt.Errorf("rsakex: modulus too small to choose an exponent")
	}
	for {
		e, err := cryptoRand.Int(o.rng, upper)
		if err != nil {
			return nil, fmt.Errorf("rsakex: choosing exponent: %w", err)
		}
		e.Add(e, two) // e in [2, lambda-1]

		g := new(big.Int).GCD(nil, nil, e, lambda)
		if g.Cmp(one) == 0 {
			return e, nil
		}
	}
}
