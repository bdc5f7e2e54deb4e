package token

import (
	"errors"
	"strings"
	"testing"
)

var (
	keyA = []byte("0123456789abcdef0123456789abcdef")
	keyB = []byte("fedcba9876543210fedcba9876543210")
)

func TestSignUnsign(t *testing.T) {
	t.Parallel()

	s, err := NewSigner(32, keyA)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	signed := s.Sign("abc.def")
	if !strings.HasPrefix(signed, "abc.def.") {
		t.Fatalf("unexpected signed form %q", signed)
	}
	got, err := s.Unsign(signed)
	if err != nil {
		t.Fatalf("Unsign: %v", err)
	}
	if got != "abc.def" {
		t.Fatalf("Unsign = %q, want %q", got, "abc.def")
	}
}

func TestUnsign_Rejects(t *testing.T) {
	t.Parallel()

	s, err := NewSigner(32, keyA)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	signed := s.Sign("session-id")

	other, err := NewSigner(32, keyB)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	cases := map[string]string{
		"empty":          "",
		"no separator":   "session-id",
		"empty mac":      "session-id.",
		"leading dot":    ".abc",
		"tampered value": "session-iD" + signed[len("session-id"):],
		"not base64":     "session-id.%%%",
		"other key":      other.Sign("session-id"),
	}
	for name, in := range cases {
		if _, err := s.Unsign(in); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("%s: expected ErrBadSignature, got %v", name, err)
		}
	}
}

func TestRotation(t *testing.T) {
	t.Parallel()

	old, err := NewSigner(32, keyA)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	rotated, err := NewSigner(32, keyB, keyA)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	if _, err := rotated.Unsign(old.Sign("v")); err != nil {
		t.Fatalf("rotated signer should accept old signature: %v", err)
	}
	if _, err := old.Unsign(rotated.Sign("v")); err == nil {
		t.Fatalf("old signer should not accept new primary key")
	}
}

func TestNewSigner_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewSigner(32); !errors.Is(err, ErrKeyMissing) {
		t.Fatalf("expected ErrKeyMissing, got %v", err)
	}
	if _, err := NewSigner(32, []byte("short")); !errors.Is(err, ErrKeyTooShort) {
		t.Fatalf("expected ErrKeyTooShort, got %v", err)
	}
}

func TestParseKeys(t *testing.T) {
	t.Parallel()

	keys := ParseKeys(" one , ,two,")
	if len(keys) != 2 || string(keys[0]) != "one" || string(keys[1]) != "two" {
		t.Fatalf("ParseKeys = %q", keys)
	}
	if ParseKeys("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestNewOpaque(t *testing.T) {
	t.Parallel()

	a, err := NewOpaque(32)
	if err != nil {
		t.Fatalf("NewOpaque: %v", err)
	}
	b, err := NewOpaque(32)
	if err != nil {
		t.Fatalf("NewOpaque: %v", err)
	}
	if len(a) != 43 {
		t.Fatalf("len = %d, want 43", len(a))
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
}
