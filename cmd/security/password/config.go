package password

import (
	"fmt"
	"runtime"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls which passwords may be hashed at registration time.
type Policy struct {
	MinLength      int
	MaxLength      int
	RejectVeryWeak bool
}

type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns interactive-login parameters (64 MiB, 3 passes).
func DefaultConfig() Config {
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4].
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength:      8,
			MaxLength:      256,
			RejectVeryWeak: true,
		},
	}
}

// Check reports whether the config can produce and verify hashes.
func (c Config) Check() error {
	p := c.Params
	switch {
	case p.MemoryKiB < minMemoryKiB || p.MemoryKiB > maxMemoryKiB:
		return fmt.Errorf("%w: memory %d KiB out of range [%d..%d]", ErrInvalidConfig, p.MemoryKiB, minMemoryKiB, maxMemoryKiB)
	case p.Iterations < 1 || p.Iterations > maxIterations:
		return fmt.Errorf("%w: iterations %d out of range [1..%d]", ErrInvalidConfig, p.Iterations, maxIterations)
	case p.Parallelism < 1:
		return fmt.Errorf("%w: parallelism must be >= 1", ErrInvalidConfig)
	case p.SaltLength < minSaltLength || p.SaltLength > maxSaltLength:
		return fmt.Errorf("%w: salt length %d out of range [%d..%d]", ErrInvalidConfig, p.SaltLength, minSaltLength, maxSaltLength)
	case p.KeyLength < minKeyLength || p.KeyLength > maxKeyLength:
		return fmt.Errorf("%w: key length %d out of range [%d..%d]", ErrInvalidConfig, p.KeyLength, minKeyLength, maxKeyLength)
	}
	if c.Policy.MinLength < 1 || c.Policy.MinLength > c.Policy.MaxLength {
		return fmt.Errorf("%w: min_len(%d) max_len(%d)", ErrInvalidConfig, c.Policy.MinLength, c.Policy.MaxLength)
	}
	return nil
}
