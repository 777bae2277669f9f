package handshake

// Config carries the handshake's tunable parameters: RSA and AES key
// sizes, the Miller-Rabin witness count, and the two nonce lengths used
// in the clear-text and RSA-wrapped challenge phases. It generalizes the
// single `bits int` constructor parameter pattern Tomsons-go-srp/srp.go
// uses for its prime-field selection.
type Config struct {
	// RSABits is the total bit-length of each side's RSA modulus.
	RSABits int
	// AESBits is the bit-length of the session key delivered at the end
	// of the handshake (128, 192 or 256).
	AESBits int
	// MillerRabinRounds is the witness count used when generating RSA
	// candidate primes.
	MillerRabinRounds int
	// ClearNonceLen is the byte length of the clear-text liveness nonce
	// (n1).
	ClearNonceLen int
	// ChallengeNonceLen is the byte length of the RSA-wrapped challenge
	// nonces (n2, n3).
	ChallengeNonceLen int

	// Trace, if non-nil, is invoked at each protocol step transition
	// (clear-text begin, key exchange, challenge sent/verified, key
	// delivered) with a short event name and optional key/value fields.
	// It is purely observational: nothing about control flow depends on
	// it, so a caller who wants visibility into the handshake supplies
	// one and everyone else pays nothing. This is the module's only
	// concession to logging — no logging library is wired in, since no
	// reference handshake/cipher core logs from inside that layer
	// itself either.
	Trace func(event string, fields ...any)
}

// DefaultConfig returns the production parameters: RSA 512 bits, AES 256
// bits, k=128 Miller-Rabin rounds, a 4-byte clear-text nonce and 16-byte
// challenge nonces.
func DefaultConfig() Config {
	return Config{
		RSABits:           512,
		AESBits:           256,
		MillerRabinRounds: 128,
		ClearNonceLen:     4,
		ChallengeNonceLen: 16,
	}
}

func (c Config) trace(event string, fields ...any) {
	if c.Trace != nil {
		c.Trace(event, fields...)
	}
}
