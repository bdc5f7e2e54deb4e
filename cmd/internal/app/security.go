package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"avian/cmd/security/token"
)

const minSecretBytes = 32

// ValidateSecurityConfig fails startup on missing or weak secrets and on
// backend settings that cannot work. An insecure session cookie is allowed
// but logged.
func ValidateSecurityConfig(cfg Config, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	if _, err := token.NewSigner(minSecretBytes, cfg.SessionKeys()...); err != nil {
		switch {
		case errors.Is(err, token.ErrKeyMissing):
			return errors.New("security policy: AVIAN_SESSION_SECRET is missing")
		case errors.Is(err, token.ErrKeyTooShort):
			return fmt.Errorf("security policy: every AVIAN_SESSION_SECRET key must be at least %d bytes", minSecretBytes)
		default:
			return err
		}
	}
	switch {
	case cfg.StoreSecret == "":
		return errors.New("security policy: AVIAN_STORE_SECRET is missing")
	case len(cfg.StoreSecret) < minSecretBytes:
		return fmt.Errorf("security policy: AVIAN_STORE_SECRET must be at least %d bytes", minSecretBytes)
	}

	switch cfg.SessionBackend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("config: unknown AVIAN_SESSION_BACKEND %q", cfg.SessionBackend)
	}
	switch cfg.UserBackend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("config: unknown AVIAN_USER_BACKEND %q", cfg.UserBackend)
	}
	if cfg.NeedsDB() && cfg.DatabaseURL == "" {
		return errors.New("config: postgres backend selected but AVIAN_DATABASE_URL is not set")
	}
	if cfg.LoginPath != "" && !strings.HasPrefix(cfg.LoginPath, "/") {
		return fmt.Errorf("config: AVIAN_LOGIN_PATH must start with /, got %q", cfg.LoginPath)
	}
	if err := cfg.Session().Validate(); err != nil {
		return err
	}

	if !cfg.CookieSecure {
		log.Warn("security.cookie.insecure",
			"cookie", cfg.SessionCookie,
			"hint", "set AVIAN_COOKIE_SECURE=true when serving over TLS",
		)
	}
	if cfg.Production() && cfg.SessionBackend == BackendMemory {
		log.Warn("security.sessions.in_memory", "hint", "sessions are lost on restart and not shared between instances")
	}
	return nil
}
