package handshake

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/lfalcao/comsec/aeskit"
	"github.com/lfalcao/comsec/rsakex"
)

// RunServer drives the responding side of the handshake over rw and
// returns the negotiated AES session manager, as delivered by the client.
func RunServer(rw io.ReadWriter, cfg Config) (*aeskit.Manager, error) {
	br := bufio.NewReader(rw)

	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) == 2 && fields[0] == tokenComBegin {
		n1 := fields[1]
		cfg.trace("clear_begin", "nonce", n1)
		if err := writeLine(rw, n1+"\n"); err != nil {
			return nil, err
		}
		cfg.trace("clear_ok")
	} else {
		// protocol gap: a malformed liveness frame gets no echo and no
		// error back — the server silently moves on to the next step,
		// leaving the client's own echo check to stall waiting on a
		// reply that never comes. Reproduced from unsecure::server_ack,
		// which returns Ok(()) on mismatch rather than writing back or
		// erroring.
		cfg.trace("clear_begin_malformed", "line", line)
	}

	ownKP, err := rsakex.GenerateChecked(cfg.RSABits, rsakex.WithMillerRabinRounds(cfg.MillerRabinRounds))
	if err != nil {
		return nil, fmt.Errorf("handshake: generating RSA key pair: %w", err)
	}
	ownPub := ownKP.Public()
	cfg.trace("rsa_generated", "fingerprint", ownPub.Fingerprint())

	peerLine, err := readLine(br)
	if err != nil {
		return nil, err
	}
	peerPub, err := parseRSAFrame(peerLine)
	if err != nil {
		return nil, err
	}
	cfg.trace("rsa_exchanged", "peer_fingerprint", peerPub.Fingerprint())

	if err := writeLine(rw, fmt.Sprintf("%s:%s\n", tokenRSA, ownPub.String())); err != nil {
		return nil, err
	}

	ownPriv := ownKP.Private()

	challenge, err := readRSALine(br, ownPriv)
	if err != nil {
		return nil, err
	}
	cFields := strings.Fields(challenge)
	if len(cFields) == 2 && cFields[0] == tokenSecopBegin {
		n2 := cFields[1]
		cfg.trace("challenge_received", "nonce", n2)

		n3, err := randomNonce(cfg.ChallengeNonceLen)
		if err != nil {
			return nil, err
		}
		if err := writeRSALine(rw, peerPub, fmt.Sprintf("%s %s", n2, n3)); err != nil {
			return nil, err
		}

		echo, err := readRSALine(br, ownPriv)
		if err != nil {
			return nil, err
		}
		if echo != n3 {
			return nil, fmt.Errorf("%w: challenge response %q, want %q", ErrProtocol, echo, n3)
		}
		if err := writeRSALine(rw, peerPub, tokenSuccess); err != nil {
			return nil, err
		}
		cfg.trace("challenge_ok")
	} else {
		// protocol gap: mirrors the clear-text phase above — a malformed
		// challenge frame gets no response and no error back. Reproduced
		// from secure::server_ack, which returns Ok(false) on mismatch
		// without writing back, rather than an explicit error frame.
		cfg.trace("challenge_malformed", "line", challenge)
	}

	keyLine, err := readRSALine(br, ownPriv)
	if err != nil {
		return nil, err
	}
	prefix, hexKey, ok := strings.Cut(keyLine, ":")
	if !ok || prefix != tokenAESKey {
		return nil, fmt.Errorf("%w: expected %q frame, got %q", ErrProtocol, tokenAESKey, keyLine)
	}
	aesKey, err := aeskit.Parse(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	cfg.trace("aes_key_received", "fingerprint", aesKey.Fingerprint())

	return aeskit.NewManager(aesKey), nil
}
