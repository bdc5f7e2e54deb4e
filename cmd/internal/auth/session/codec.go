package session

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const codecInfo = "avian session payload v1"

// Codec seals session payloads with XChaCha20-Poly1305. The session ID is
// bound as additional data, so a blob copied under another ID fails to open.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives the payload key from secret with HKDF-SHA256.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("session: empty store secret")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(codecInfo)), key); err != nil {
		return nil, fmt.Errorf("session: derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("session: cipher: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Seal encodes d as JSON and encrypts it. Output is nonce || ciphertext.
func (c *Codec) Seal(id string, d Data) ([]byte, error) {
	plain, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("session: marshal: %w", err)
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("session: nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plain, []byte(id)), nil
}

// Open reverses Seal.
func (c *Codec) Open(id string, blob []byte) (Data, error) {
	ns := c.aead.NonceSize()
	if len(blob) < ns+c.aead.Overhead() {
		return Data{}, errUndecodable
	}
	plain, err := c.aead.Open(nil, blob[:ns], blob[ns:], []byte(id))
	if err != nil {
		return Data{}, errUndecodable
	}
	var d Data
	if err := json.Unmarshal(plain, &d); err != nil {
		return Data{}, errUndecodable
	}
	return d, nil
}
