package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("AVIAN_DATABASE_URL", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":3000" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.SessionCookie != "sesh" || cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("cookie = %q ttl = %s", cfg.SessionCookie, cfg.SessionTTL)
	}
	if cfg.CookieSecure {
		t.Fatalf("CookieSecure defaults to true")
	}
	if cfg.SessionBackend != BackendMemory || cfg.UserBackend != BackendMemory {
		t.Fatalf("backends = %q/%q", cfg.SessionBackend, cfg.UserBackend)
	}
	if cfg.NeedsDB() {
		t.Fatalf("NeedsDB without a database url")
	}
	if cfg.LoginPath != "/login" || cfg.MetricsNamespace != "avian" {
		t.Fatalf("login path = %q namespace = %q", cfg.LoginPath, cfg.MetricsNamespace)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("AVIAN_DATABASE_URL", "postgres://avian@localhost/avian")
	t.Setenv("AVIAN_SESSION_BACKEND", "Redis")
	t.Setenv("AVIAN_COOKIE_SECURE", "true")
	t.Setenv("AVIAN_SESSION_TTL", "48h")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.SessionBackend != BackendRedis || cfg.UserBackend != BackendPostgres {
		t.Fatalf("backends = %q/%q", cfg.SessionBackend, cfg.UserBackend)
	}
	s := cfg.Session()
	if !s.CookieSecure || s.TTL != 48*time.Hour {
		t.Fatalf("session config = %+v", s)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("AVIAN_SESSION_COOKIE=crumb\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("AVIAN_ENV", "development")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SessionCookie != "crumb" {
		t.Fatalf("SessionCookie = %q", cfg.SessionCookie)
	}

	t.Setenv("AVIAN_ENV", "production")
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SessionCookie != "sesh" {
		t.Fatalf("production read the env file: cookie = %q", cfg.SessionCookie)
	}
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
}

func TestLoadConfigUnreadableEnvFile(t *testing.T) {
	t.Setenv("AVIAN_ENV", "development")

	// A directory exists but cannot be read as a dotenv file.
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatalf("LoadConfig accepted an unreadable env file")
	}
}
