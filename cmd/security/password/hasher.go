package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKiB  uint32 = 8 * 1024
	maxMemoryKiB  uint32 = 1024 * 1024
	maxIterations uint32 = 20
	minSaltLength uint32 = 8
	maxSaltLength uint32 = 64
	minKeyLength  uint32 = 16
	maxKeyLength  uint32 = 128
)

// Hasher hashes and verifies passwords with a fixed Config.
// It is safe for concurrent use.
type Hasher struct {
	cfg   Config
	dummy string
}

// NewHasher validates cfg and precomputes the decoy hash used by VerifyDummy.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	h := &Hasher{cfg: cfg}

	decoy := make([]byte, 24)
	if _, err := io.ReadFull(rand.Reader, decoy); err != nil {
		return nil, fmt.Errorf("decoy: %w", err)
	}
	dummy, err := h.encode(base64.RawStdEncoding.EncodeToString(decoy))
	if err != nil {
		return nil, err
	}
	h.dummy = dummy
	return h, nil
}

func (h *Hasher) Config() Config { return h.cfg }

// Hash applies the password policy and returns a PHC encoded Argon2id hash.
func (h *Hasher) Hash(password string) (string, error) {
	if err := h.cfg.Validate(password); err != nil {
		return "", err
	}
	return h.encode(password)
}

func (h *Hasher) encode(password string) (string, error) {
	p := h.cfg.Params
	salt := make([]byte, p.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.MemoryKiB,
		p.Iterations,
		p.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash.
// A malformed hash or one whose cost exceeds twice the configured cost yields
// ErrInvalidHash.
func (h *Hasher) Verify(encodedHash, password string) (bool, error) {
	ph, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}
	if !h.affordable(ph) {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey([]byte(password), ph.salt, ph.iterations, ph.memoryKiB, ph.parallelism, uint32(len(ph.key))) // #nosec G115 -- bounded by parsePHC.
	return subtle.ConstantTimeCompare(key, ph.key) == 1, nil
}

// VerifyDummy spends the same work as a real Verify against a hash that
// never matches. Callers use it when no account exists for a login name.
func (h *Hasher) VerifyDummy(password string) {
	_, _ = h.Verify(h.dummy, password)
}

// NeedsRehash reports whether encodedHash was produced with weaker parameters
// than the current config.
func (h *Hasher) NeedsRehash(encodedHash string) bool {
	ph, err := parsePHC(encodedHash)
	if err != nil {
		return true
	}
	p := h.cfg.Params
	return ph.memoryKiB < p.MemoryKiB ||
		ph.iterations < p.Iterations ||
		ph.parallelism < p.Parallelism ||
		uint32(len(ph.key)) != p.KeyLength // #nosec G115 -- bounded by parsePHC.
}

func (h *Hasher) affordable(ph phc) bool {
	limits := h.cfg.Params
	return ph.memoryKiB <= limits.MemoryKiB*2 &&
		ph.iterations <= limits.Iterations*2 &&
		ph.parallelism <= limits.Parallelism*2
}
