package session

import (
	"fmt"
	"net/http"
	"time"
)

// Config controls cookie issuance, lifetime and store access.
type Config struct {
	CookieName string
	CookiePath string
	// CookieSecure sets the Secure attribute. It is off by default so that
	// plain-HTTP development works; deployments behind TLS should enable it.
	CookieSecure bool
	SameSite     http.SameSite

	// TTL is the absolute session lifetime, counted from creation.
	TTL time.Duration
	// TouchAfter is the minimum interval between two touches of an
	// unmodified session.
	TouchAfter time.Duration
	// StoreTimeout bounds every backend call.
	StoreTimeout time.Duration

	// IDBytes is the amount of randomness in a session ID.
	IDBytes int
}

func DefaultConfig() Config {
	return Config{
		CookieName:   "sesh",
		CookiePath:   "/",
		CookieSecure: false,
		SameSite:     http.SameSiteLaxMode,
		TTL:          7 * 24 * time.Hour,
		TouchAfter:   24 * time.Hour,
		StoreTimeout: 3 * time.Second,
		IDBytes:      32,
	}
}

func (c Config) Validate() error {
	switch {
	case c.CookieName == "":
		return fmt.Errorf("%w: empty cookie name", ErrConfig)
	case c.TTL <= 0:
		return fmt.Errorf("%w: ttl must be positive", ErrConfig)
	case c.TouchAfter < 0:
		return fmt.Errorf("%w: touch_after must not be negative", ErrConfig)
	case c.TouchAfter >= c.TTL:
		return fmt.Errorf("%w: touch_after (%s) must be shorter than ttl (%s)", ErrConfig, c.TouchAfter, c.TTL)
	case c.StoreTimeout <= 0:
		return fmt.Errorf("%w: store timeout must be positive", ErrConfig)
	case c.IDBytes < 16:
		return fmt.Errorf("%w: id_bytes must be >= 16", ErrConfig)
	}
	return nil
}
