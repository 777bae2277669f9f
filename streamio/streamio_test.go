package streamio

import (
	"bytes"
	"testing"

	"github.com/lfalcao/comsec/aeskit"
	"github.com/lfalcao/comsec/rsakex"
)

func TestRSAStreamRoundTrip(t *testing.T) {
	kp, err := rsakex.GenerateChecked(32)
	if err != nil {
		t.Fatalf("GenerateChecked: %v", err)
	}
	pub, priv := kp.Public(), kp.Private()

	var wire bytes.Buffer
	w := NewRSAWriter(pub, &wire)

	msg := []byte("Hello, World!")
	for len(msg) > 0 {
		n, err := w.Write(msg)
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		msg = msg[n:]
	}

	r := NewRSAReader(priv, &wire)
	got := make([]byte, 0, 32)
	buf := make([]byte, 8)
	for {
		n, err := r.Read(buf)
		got = append(got, buf[:n]...)
		if err != nil {
			break
		}
	}
	if string(got) != "Hello, World!" {
		t.Fatalf("round trip = %q, want %q", got, "Hello, World!")
	}
}

func TestRSAWriterChunksAtMaxMessageSize(t *testing.T) {
	kp, err := rsakex.GenerateChecked(32)
	if err != nil {
		t.Fatalf("GenerateChecked: %v", err)
	}
	pub := kp.Public()
	var wire bytes.Buffer
	w := NewRSAWriter(pub, &wire)

	big := make([]byte, pub.MaxMessageSize()*3)
	for i := range big {
		big[i] = byte('a' + i%26)
	}
	n, err := w.Write(big)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != pub.MaxMessageSize() {
		t.Fatalf("Write consumed %d bytes, want exactly max message size %d", n, pub.MaxMessageSize())
	}
}

func TestAESStreamRoundTrip(t *testing.T) {
	key, err := aeskit.Generate(128)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	mgr := aeskit.NewManager(key)

	var wire bytes.Buffer
	w := NewAESWriter(mgr, &wire)
	if _, err := w.Write([]byte("Hello World")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if wire.Len() == 0 || bytes.Equal(wire.Bytes(), []byte("Hello World")) {
		t.Fatalf("ciphertext must be non-empty and not equal plaintext")
	}

	r := NewAESReader(mgr, &wire)
	buf := make([]byte, 32)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "Hello World" {
		t.Fatalf("Read = %q, want %q", buf[:n], "Hello World")
	}
}

func TestAESReaderZeroInitialRead(t *testing.T) {
	key, err := aeskit.Generate(128)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	mgr := aeskit.NewManager(key)
	r := NewAESReader(mgr, &bytes.Buffer{})
	buf := make([]byte, 16)
	n, err := r.Read(buf)
	if n != 0 {
		t.Fatalf("Read on empty source returned n=%d, want 0", n)
	}
	if err == nil {
		t.Fatalf("Read on empty source should return an error (EOF)")
	}
}
