package handshake

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/lfalcao/comsec/aeskit"
	"github.com/lfalcao/comsec/rsakex"
)

// RunClient drives the initiating side of the handshake over rw and
// returns the negotiated AES session manager. It blocks until the
// handshake completes or fails; cfg's zero value is not usable, callers
// should start from DefaultConfig.
func RunClient(rw io.ReadWriter, cfg Config) (*aeskit.Manager, error) {
	br := bufio.NewReader(rw)

	n1, err := randomNonce(cfg.ClearNonceLen)
	if err != nil {
		return nil, err
	}
	cfg.trace("clear_begin", "nonce", n1)
	if err := writeLine(rw, fmt.Sprintf("%s %s\n", tokenComBegin, n1)); err != nil {
		return nil, err
	}
	echo, err := readLine(br)
	if err != nil {
		return nil, err
	}
	if echo != n1 {
		return nil, fmt.Errorf("%w: liveness echo %q, want %q", ErrProtocol, echo, n1)
	}
	cfg.trace("clear_ok")

	ownKP, err := rsakex.GenerateChecked(cfg.RSABits, rsakex.WithMillerRabinRounds(cfg.MillerRabinRounds))
	if err != nil {
		return nil, fmt.Errorf("handshake: generating RSA key pair: %w", err)
	}
	ownPub := ownKP.Public()
	cfg.trace("rsa_generated", "fingerprint", ownPub.Fingerprint())

	if err := writeLine(rw, fmt.Sprintf("%s:%s\n", tokenRSA, ownPub.String())); err != nil {
		return nil, err
	}
	peerLine, err := readLine(br)
	if err != nil {
		return nil, err
	}
	peerPub, err := parseRSAFrame(peerLine)
	if err != nil {
		return nil, err
	}
	cfg.trace("rsa_exchanged", "peer_fingerprint", peerPub.Fingerprint())

	ownPriv := ownKP.Private()

	n2, err := randomNonce(cfg.ChallengeNonceLen)
	if err != nil {
		return nil, err
	}
	if err := writeRSALine(rw, peerPub, fmt.Sprintf("%s %s", tokenSecopBegin, n2)); err != nil {
		return nil, err
	}
	cfg.trace("challenge_sent", "nonce", n2)

	reply, err := readRSALine(br, ownPriv)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(reply)
	if len(fields) != 2 || fields[0] != n2 {
		return nil, fmt.Errorf("%w: challenge echo %q, want n2=%q", ErrProtocol, reply, n2)
	}
	n3 := fields[1]

	if err := writeRSALine(rw, peerPub, n3); err != nil {
		return nil, err
	}
	status, err := readRSALine(br, ownPriv)
	if err != nil {
		return nil, err
	}
	if status != tokenSuccess {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrProtocol, tokenSuccess, status)
	}
	cfg.trace("challenge_ok")

	aesKey, err := aeskit.Generate(cfg.AESBits)
	if err != nil {
		return nil, fmt.Errorf("handshake: generating AES key: %w", err)
	}
	mgr := aeskit.NewManager(aesKey)
	if err := writeRSALine(rw, peerPub, fmt.Sprintf("%s:%s", tokenAESKey, aesKey.String())); err != nil {
		return nil, err
	}
	cfg.trace("aes_key_sent", "fingerprint", aesKey.Fingerprint())

	return mgr, nil
}
