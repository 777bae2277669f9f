package rsakex

import "math/big"

// Message is a tagged big-integer value in one of two states: decrypted
// (holding a plaintext big-integer) or encrypted (holding a ciphertext
// big-integer). Encrypt and Decrypt are idempotent: applying Encrypt to an
// already-encrypted message, or Decrypt to an already-decrypted message,
// returns the receiver unchanged.
type Message struct {
	value     *big.Int
	encrypted bool
}

// NewPlaintext constructs a decrypted message from raw plaintext bytes,
// interpreted as a big-endian big-integer.
func NewPlaintext(b []byte) *Message {
	return &Message{value: new(big.Int).SetBytes(b), encrypted: false}
}

// NewPlaintextInt constructs a decrypted message directly from a
// big-integer value.
func NewPlaintextInt(v *big.Int) *Message {
	return &Message{value: new(big.Int).Set(v), encrypted: false}
}

// NewCiphertextInt constructs an encrypted message directly from a
// big-integer ciphertext value, e.g. one parsed off the wire.
func NewCiphertextInt(v *big.Int) *Message {
	return &Message{value: new(big.Int).Set(v), encrypted: true}
}

// IsEncrypted reports whether m currently holds ciphertext.
func (m *Message) IsEncrypted() bool { return m.encrypted }

// Int returns the message's current numeric value, whichever state it is
// in.
func (m *Message) Int() *big.Int { return new(big.Int).Set(m.value) }

// Bytes returns the message's current value as big-endian bytes. It is
// only meaningful to interpret the result as application plaintext once
// the message is decrypted; callers that need text should go through a
// fallible UTF-8 decode of this byte slice, kept separate from the
// transform itself.
func (m *Message) Bytes() []byte { return m.value.Bytes() }

// String returns the decimal representation of the message's current
// value, the wire serialization used for RSA ciphertext lines.
func (m *Message) String() string { return m.value.String() }

// Encrypt transforms a decrypted message into its ciphertext,
// msg^e mod n, under pub. Applying Encrypt to an already-encrypted message
// is a no-op.
func (m *Message) Encrypt(pub *PublicKey) *Message {
	if m.encrypted {
		return m
	}
	c := new(big.Int).Exp(m.value, pub.e, pub.n)
	return &Message{value: c, encrypted: true}
}

// Decrypt transforms an encrypted message into its plaintext, msg^d mod n,
// under priv. Applying Decrypt to an already-decrypted message is a no-op.
func (m *Message) Decrypt(priv *PrivateKey) *Message {
	if !m.encrypted {
		return m
	}
	p := new(big.Int).Exp(m.value, priv.d, priv.n)
	return &Message{value: p, encrypted: false}
}
