package crypto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := New(strings.Repeat("0f", 32))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected service to be configured")
	}
	plain := []byte(`[{"employeeId":"EMP001","compensation":85000}]`)
	sealed, err := svc.Encrypt(plain)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, []byte("EMP001")) {
		t.Fatal("expected sealed value to hide plaintext")
	}
	opened, err := svc.Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("expected %s, got %s", plain, opened)
	}
}

func TestBase64Key(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	if _, err := New(key); err != nil {
		t.Fatalf("expected base64 key to be accepted, got %v", err)
	}
}

func TestRejectsShortKey(t *testing.T) {
	if _, err := New("short"); !errors.Is(err, ErrKeyLength) {
		t.Fatalf("expected key length error, got %v", err)
	}
}

func TestUnconfiguredPassThrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	value := []byte("plain")
	sealed, _ := svc.Encrypt(value)
	if !bytes.Equal(sealed, value) {
		t.Fatal("expected pass-through when unconfigured")
	}
}

func TestDecryptTamperedFails(t *testing.T) {
	svc, _ := New(strings.Repeat("0f", 32))
	sealed, _ := svc.Encrypt([]byte("payload"))
	sealed[len(sealed)-1] ^= 0xff
	if _, err := svc.Decrypt(sealed); err == nil {
		t.Fatal("expected tampered ciphertext to fail")
	}
	if _, err := svc.Decrypt([]byte{1}); !errors.Is(err, ErrCiphertextShort) {
		t.Fatalf("expected short ciphertext error, got %v", err)
	}
}
