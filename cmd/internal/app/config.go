package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"avian/cmd/internal/auth/session"
	"avian/cmd/security/token"

	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config contains all runtime configuration. Values come from the
// environment and, outside production, an optional .env file.
type Config struct {
	Env       string `mapstructure:"AVIAN_ENV"`
	HTTPAddr  string `mapstructure:"AVIAN_HTTP_ADDR"`
	Port      string `mapstructure:"PORT"`
	LogLevel  string `mapstructure:"AVIAN_LOG_LEVEL"`
	LogFormat string `mapstructure:"AVIAN_LOG_FORMAT"`

	ReadHeaderTimeout time.Duration `mapstructure:"AVIAN_HTTP_READ_HEADER_TIMEOUT"`
	ReadTimeout       time.Duration `mapstructure:"AVIAN_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `mapstructure:"AVIAN_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `mapstructure:"AVIAN_HTTP_IDLE_TIMEOUT"`
	ShutdownTimeout   time.Duration `mapstructure:"AVIAN_HTTP_SHUTDOWN_TIMEOUT"`
	MaxHeaderBytes    int           `mapstructure:"AVIAN_HTTP_MAX_HEADER_BYTES"`

	DatabaseURL        string `mapstructure:"AVIAN_DATABASE_URL"`
	DBMaxConns         int32  `mapstructure:"AVIAN_DB_MAX_CONNS"`
	DBMinConns         int32  `mapstructure:"AVIAN_DB_MIN_CONNS"`
	MigrateOnStart     bool   `mapstructure:"AVIAN_MIGRATE_ON_START"`
	ReadinessRequireDB bool   `mapstructure:"AVIAN_READINESS_REQUIRE_DB"`

	SessionBackend string `mapstructure:"AVIAN_SESSION_BACKEND"`
	UserBackend    string `mapstructure:"AVIAN_USER_BACKEND"`

	RedisAddr     string `mapstructure:"AVIAN_REDIS_ADDR"`
	RedisPassword string `mapstructure:"AVIAN_REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"AVIAN_REDIS_DB"`

	SessionSecret     string        `mapstructure:"AVIAN_SESSION_SECRET"`
	StoreSecret       string        `mapstructure:"AVIAN_STORE_SECRET"`
	SessionCookie     string        `mapstructure:"AVIAN_SESSION_COOKIE"`
	SessionTTL        time.Duration `mapstructure:"AVIAN_SESSION_TTL"`
	SessionTouchAfter time.Duration `mapstructure:"AVIAN_SESSION_TOUCH_AFTER"`
	SessionSweepEvery time.Duration `mapstructure:"AVIAN_SESSION_SWEEP_INTERVAL"`
	StoreTimeout      time.Duration `mapstructure:"AVIAN_STORE_TIMEOUT"`
	CookieSecure      bool          `mapstructure:"AVIAN_COOKIE_SECURE"`
	TrustProxy        bool          `mapstructure:"AVIAN_TRUST_PROXY"`

	StaticDir        string `mapstructure:"AVIAN_STATIC_DIR"`
	LoginPath        string `mapstructure:"AVIAN_LOGIN_PATH"`
	MetricsNamespace string `mapstructure:"AVIAN_METRICS_NAMESPACE"`
}

// LoadConfig reads envFile (ignored when missing or when AVIAN_ENV is
// production), then the environment, and fills defaults.
func LoadConfig(envFile string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	if envFile != "" && !isProduction(os.Getenv("AVIAN_ENV")) {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
		}
	}

	def := session.DefaultConfig()
	v.SetDefault("AVIAN_ENV", "development")
	v.SetDefault("AVIAN_HTTP_ADDR", "")
	v.SetDefault("PORT", "3000")
	v.SetDefault("AVIAN_LOG_LEVEL", "info")
	v.SetDefault("AVIAN_LOG_FORMAT", "json")
	v.SetDefault("AVIAN_HTTP_READ_HEADER_TIMEOUT", "5s")
	v.SetDefault("AVIAN_HTTP_READ_TIMEOUT", "15s")
	v.SetDefault("AVIAN_HTTP_WRITE_TIMEOUT", "15s")
	v.SetDefault("AVIAN_HTTP_IDLE_TIMEOUT", "60s")
	v.SetDefault("AVIAN_HTTP_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("AVIAN_HTTP_MAX_HEADER_BYTES", 1<<20)
	v.SetDefault("AVIAN_DATABASE_URL", "")
	v.SetDefault("AVIAN_DB_MAX_CONNS", 10)
	v.SetDefault("AVIAN_DB_MIN_CONNS", 0)
	v.SetDefault("AVIAN_MIGRATE_ON_START", false)
	v.SetDefault("AVIAN_READINESS_REQUIRE_DB", false)
	v.SetDefault("AVIAN_SESSION_BACKEND", "")
	v.SetDefault("AVIAN_USER_BACKEND", "")
	v.SetDefault("AVIAN_REDIS_ADDR", "localhost:6379")
	v.SetDefault("AVIAN_REDIS_PASSWORD", "")
	v.SetDefault("AVIAN_REDIS_DB", 0)
	v.SetDefault("AVIAN_SESSION_SECRET", "")
	v.SetDefault("AVIAN_STORE_SECRET", "")
	v.SetDefault("AVIAN_SESSION_COOKIE", def.CookieName)
	v.SetDefault("AVIAN_SESSION_TTL", def.TTL.String())
	v.SetDefault("AVIAN_SESSION_TOUCH_AFTER", def.TouchAfter.String())
	v.SetDefault("AVIAN_SESSION_SWEEP_INTERVAL", "1h")
	v.SetDefault("AVIAN_STORE_TIMEOUT", def.StoreTimeout.String())
	v.SetDefault("AVIAN_COOKIE_SECURE", false)
	v.SetDefault("AVIAN_TRUST_PROXY", false)
	v.SetDefault("AVIAN_STATIC_DIR", "public")
	v.SetDefault("AVIAN_LOGIN_PATH", "/login")
	v.SetDefault("AVIAN_METRICS_NAMESPACE", "avian")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":" + strings.TrimPrefix(strings.TrimSpace(cfg.Port), ":")
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.SessionBackend = backendOrDefault(cfg.SessionBackend, cfg.DatabaseURL)
	cfg.UserBackend = backendOrDefault(cfg.UserBackend, cfg.DatabaseURL)
	return cfg, nil
}

func backendOrDefault(backend, dsn string) string {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend != "" {
		return backend
	}
	if dsn != "" {
		return BackendPostgres
	}
	return BackendMemory
}

func isProduction(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "production")
}

func (c Config) Production() bool { return isProduction(c.Env) }

// NeedsDB reports whether any backend requires the Postgres pool.
func (c Config) NeedsDB() bool {
	return c.SessionBackend == BackendPostgres || c.UserBackend == BackendPostgres
}

// SessionKeys returns the cookie signing keys, newest first.
func (c Config) SessionKeys() [][]byte { return token.ParseKeys(c.SessionSecret) }

func (c Config) Session() session.Config {
	sc := session.DefaultConfig()
	sc.CookieName = c.SessionCookie
	sc.CookieSecure = c.CookieSecure
	sc.TTL = c.SessionTTL
	sc.TouchAfter = c.SessionTouchAfter
	sc.StoreTimeout = c.StoreTimeout
	return sc
}
