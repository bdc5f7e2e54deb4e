package session

import (
	"bytes"
	"errors"
	"testing"
)

func TestCodec_SealOpen(t *testing.T) {
	t.Parallel()

	c, err := NewCodec(testStoreKey)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	in := Data{
		Identity: "01J0000000000000000000000A",
		Flash:    map[string][]string{"success": {"Welcome back!"}},
		ReturnTo: "/flights/42",
	}

	blob, err := c.Seal("sid-1", in)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(blob, []byte("Welcome back!")) || bytes.Contains(blob, []byte(in.Identity)) {
		t.Fatalf("sealed payload leaks plaintext")
	}

	out, err := c.Open("sid-1", blob)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if out.Identity != in.Identity || out.ReturnTo != in.ReturnTo || out.Flash["success"][0] != "Welcome back!" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestCodec_Rejects(t *testing.T) {
	t.Parallel()

	c, err := NewCodec(testStoreKey)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	other, err := NewCodec([]byte("a completely different store secret"))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	blob, err := c.Seal("sid-1", Data{Identity: "u"})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0xff

	cases := map[string]func() error{
		"other id":  func() error { _, err := c.Open("sid-2", blob); return err },
		"other key": func() error { _, err := other.Open("sid-1", blob); return err },
		"tampered":  func() error { _, err := c.Open("sid-1", tampered); return err },
		"short":     func() error { _, err := c.Open("sid-1", blob[:10]); return err },
	}
	for name, fn := range cases {
		if err := fn(); !errors.Is(err, errUndecodable) {
			t.Fatalf("%s: err = %v, want errUndecodable", name, err)
		}
	}

	if _, err := NewCodec(nil); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
