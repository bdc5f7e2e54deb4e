package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

var b64 = base64.RawURLEncoding

// Signer produces and checks HMAC-SHA256 signatures over string values.
type Signer struct {
	keys [][]byte
}

// NewSigner requires at least one key and every key to be minBytes long.
func NewSigner(minBytes int, keys ...[]byte) (*Signer, error) {
	if len(keys) == 0 {
		return nil, ErrKeyMissing
	}
	out := make([][]byte, 0, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, fmt.Errorf("key %d: %w", i, ErrKeyMissing)
		}
		if len(k) < minBytes {
			return nil, fmt.Errorf("key %d: %w", i, ErrKeyTooShort)
		}
		out = append(out, append([]byte(nil), k...))
	}
	return &Signer{keys: out}, nil
}

// ParseKeys splits a comma separated secret list, dropping blanks.
func ParseKeys(raw string) [][]byte {
	var keys [][]byte
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			keys = append(keys, []byte(p))
		}
	}
	return keys
}

func (s *Signer) Sign(value string) string {
	return value + "." + b64.EncodeToString(mac(s.keys[0], value))
}

// Unsign returns the value carried by signed when any key verifies it.
func (s *Signer) Unsign(signed string) (string, error) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 || i == len(signed)-1 {
		return "", ErrBadSignature
	}
	value := signed[:i]
	got, err := b64.DecodeString(signed[i+1:])
	if err != nil {
		return "", ErrBadSignature
	}
	for _, k := range s.keys {
		if hmac.Equal(got, mac(k, value)) {
			return value, nil
		}
	}
	return "", ErrBadSignature
}

func mac(key []byte, value string) []byte {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(value))
	return m.Sum(nil)
}

// NewOpaque returns n random bytes encoded as unpadded base64url.
func NewOpaque(n int) (string, error) {
	if n <= 0 {
		n = 32
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("token: read random: %w", err)
	}
	return b64.EncodeToString(buf), nil
}
