package streamio

import (
	"fmt"
	"io"

	"github.com/lfalcao/comsec/aeskit"
)

// AESWriter is a one-way adapter: it encrypts each Write's full buffer
// into AES-ECB blocks and writes them to the underlying sink.
type AESWriter struct {
	mgr  *aeskit.Manager
	sink io.Writer
}

// NewAESWriter constructs an AESWriter using mgr's key, writing to sink.
func NewAESWriter(mgr *aeskit.Manager, sink io.Writer) *AESWriter {
	return &AESWriter{mgr: mgr, sink: sink}
}

// Write encrypts buf into zero-padded 16-byte blocks and writes all block
// bytes to the sink, returning len(buf) on success.
func (w *AESWriter) Write(buf []byte) (int, error) {
	for _, block := range w.mgr.Encrypt(buf) {
		if _, err := w.sink.Write(block); err != nil {
			return 0, fmt.Errorf("streamio: writing AES block: %w", err)
		}
	}
	return len(buf), nil
}

// AESReader is a one-way adapter: each Read pulls exactly one 16-byte
// block from the source, decrypts it, appends it to an internal queue,
// and then drains the queue into the caller's buffer up to either
// len(buf) bytes or a zero byte, whichever comes first. The zero byte
// terminates the transfer without being copied: it is the convention the
// writer's zero-padding creates for short messages, and it means this
// adapter cannot transport binary data containing embedded NUL bytes
// without its own framing layer above it.
type AESReader struct {
	mgr   *aeskit.Manager
	src   io.Reader
	queue []byte
}

// NewAESReader constructs an AESReader using mgr's key, reading from src.
func NewAESReader(mgr *aeskit.Manager, src io.Reader) *AESReader {
	return &AESReader{mgr: mgr, src: src}
}

// Read reads exactly one ciphertext block from the source (returning 0
// immediately if that read yields no bytes), decrypts it into the
// internal queue, and drains up to len(buf) bytes or until the
// zero-terminator, whichever comes first.
func (r *AESReader) Read(buf []byte) (int, error) {
	block := make([]byte, aeskit.BlockSize)
	n, err := io.ReadFull(r.src, block)
	if n == 0 {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("streamio: reading AES block: %w", err)
	}

	r.queue = append(r.queue, r.mgr.DecryptBlock(block)...)

	i := 0
	for i < len(buf) && i < len(r.queue) {
		if r.queue[i] == 0 {
			r.queue = r.queue[i+1:]
			return i, nil
		}
		buf[i] = r.queue[i]
		i++
	}
	r.queue = r.queue[i:]
	return i, nil
}
