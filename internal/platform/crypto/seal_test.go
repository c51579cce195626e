package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSealRoundTrip(t *testing.T) {
	key := hex.EncodeToString(bytes.Repeat([]byte{0x42}, 32))
	svc, err := New(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected service to be configured")
	}

	plain := []byte("eyJhbGciOiJIUzI1NiJ9.token")
	sealed, err := svc.Seal(plain)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if bytes.Equal(sealed, plain) {
		t.Fatal("sealed value must differ from plaintext")
	}

	opened, err := svc.Open(sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("round trip mismatch: got %q", opened)
	}
}

func TestSealPassthroughWithoutKey(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Configured() {
		t.Fatal("expected unconfigured service")
	}
	sealed, err := svc.Seal([]byte("token"))
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if string(sealed) != "token" {
		t.Fatalf("expected passthrough, got %q", sealed)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New(hex.EncodeToString([]byte("short"))); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestOpenRejectsTamperedValue(t *testing.T) {
	key := hex.EncodeToString(bytes.Repeat([]byte{0x07}, 32))
	svc, err := New(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sealed, err := svc.Seal([]byte("token"))
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := svc.Open(sealed); err == nil {
		t.Fatal("expected error for tampered value")
	}
}
