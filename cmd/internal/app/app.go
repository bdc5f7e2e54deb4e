// Package app wires the avian server runtime: config, logging, stores, the
// session pipeline and the HTTP server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"avian/cmd/identity"
	authapi "avian/cmd/internal/auth/api"
	"avian/cmd/internal/auth/authn"
	"avian/cmd/internal/auth/session"
	"avian/cmd/internal/auth/strategy"
	"avian/cmd/internal/db"
	"avian/cmd/internal/db/migrate"
	"avian/cmd/internal/flights"
	"avian/cmd/internal/metrics"
	"avian/cmd/internal/web"
	"avian/cmd/security/password"
	"avian/cmd/security/token"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App owns the backing stores and the HTTP handler tree.
type App struct {
	cfg Config
	log Logger

	pool  *pgxpool.Pool
	redis *redis.Client

	sessionStore session.Store
	users        identity.Store
	hasher       *password.Hasher
	metrics      *metrics.Collector
	pipeline     *web.Pipeline

	handler http.Handler
}

type options struct {
	sessionStore session.Store
	users        identity.Store
	flights      flights.Store
	password     *password.Config
}

type Option func(*options)

// WithSessionStore replaces the backend chosen by AVIAN_SESSION_BACKEND.
func WithSessionStore(s session.Store) Option { return func(o *options) { o.sessionStore = s } }

// WithUserStore replaces the backend chosen by AVIAN_USER_BACKEND.
func WithUserStore(s identity.Store) Option { return func(o *options) { o.users = s } }

func WithFlightStore(s flights.Store) Option { return func(o *options) { o.flights = s } }

// WithPasswordConfig overrides the argon2id cost parameters.
func WithPasswordConfig(c password.Config) Option { return func(o *options) { o.password = &c } }

// New validates cfg, opens the configured backends and assembles the
// request pipeline. Close releases what New opened.
func New(ctx context.Context, cfg Config, log Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	if err := ValidateSecurityConfig(cfg, log); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, log: log}
	if err := a.openBackends(ctx, o); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.assemble(o); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openBackends(ctx context.Context, o options) error {
	cfg := a.cfg

	if cfg.NeedsDB() && (o.sessionStore == nil || o.users == nil || o.flights == nil) {
		if cfg.MigrateOnStart {
			if err := migrate.Run(cfg.DatabaseURL, migrate.Up); err != nil {
				return err
			}
			a.log.Info("db.migrated")
		}
		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		a.pool = pool
		a.log.Info("db.enabled.postgres")
	}

	switch {
	case o.sessionStore != nil:
		a.sessionStore = o.sessionStore
	case cfg.SessionBackend == BackendPostgres:
		st, err := session.NewPostgresStore(a.pool, db.Schema)
		if err != nil {
			return err
		}
		a.sessionStore = st
	case cfg.SessionBackend == BackendRedis:
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		st, err := session.NewRedisStore(a.redis, "")
		if err != nil {
			return err
		}
		a.sessionStore = st
	default:
		a.sessionStore = session.NewMemoryStore()
	}
	a.log.Info("session.store", "backend", cfg.SessionBackend)

	switch {
	case o.users != nil:
		a.users = o.users
	case cfg.UserBackend == BackendPostgres:
		st, err := identity.NewPostgresStore(a.pool, identity.WithSchema(db.Schema))
		if err != nil {
			return err
		}
		a.users = st
	default:
		a.users = identity.NewMemoryStore()
	}
	return nil
}

func (a *App) assemble(o options) error {
	cfg := a.cfg

	pcfg := password.DefaultConfig()
	if o.password != nil {
		pcfg = *o.password
	}
	hasher, err := password.NewHasher(pcfg)
	if err != nil {
		return err
	}
	a.hasher = hasher
	a.metrics = metrics.New(metrics.WithNamespace(cfg.MetricsNamespace))

	signer, err := token.NewSigner(minSecretBytes, cfg.SessionKeys()...)
	if err != nil {
		return err
	}
	codec, err := session.NewCodec([]byte(cfg.StoreSecret))
	if err != nil {
		return err
	}
	sessions, err := session.NewManager(a.sessionStore, codec, signer, cfg.Session(),
		session.WithLogger(a.log),
		session.WithObserver(a.metrics),
	)
	if err != nil {
		return err
	}

	local, err := strategy.NewLocal(a.users, hasher, a.log)
	if err != nil {
		return err
	}
	authCfg := authapi.DefaultConfig()
	if cfg.LoginPath != "" {
		authCfg.LoginPath = cfg.LoginPath
	}
	authCfg.TrustProxy = cfg.TrustProxy

	auth, err := authn.New(sessions, strategy.NewRegistry(local), authn.NewUserSerializer(a.users),
		authn.WithLogger(a.log),
		authn.WithObserver(a.metrics),
		authn.WithLoginPath(authCfg.LoginPath),
	)
	if err != nil {
		return err
	}

	flightStore := o.flights
	if flightStore == nil {
		if cfg.UserBackend == BackendPostgres {
			if flightStore, err = flights.NewPostgresStore(a.pool, db.Schema); err != nil {
				return err
			}
		} else {
			flightStore = flights.NewMemoryStore()
		}
	}

	renderer := web.JSONRenderer{}
	rt := web.NewRouter("/", a.metrics)
	flights.NewHandler(flightStore, renderer, auth.RequireAuthenticated, authn.CurrentUser).Register(rt)

	authHandler, err := authapi.NewHandler(a.log, authCfg, auth, a.users, hasher, renderer)
	if err != nil {
		return err
	}
	authHandler.Register(rt)

	a.pipeline = web.NewPipeline(
		web.NewInterceptor(sessions, renderer, "/", a.log, a.metrics),
		rt.Serve,
		a.log,
		web.Sessions(sessions),
		auth.Stage(),
		web.Enrich(auth.LoginPath(), authn.CurrentUser),
	)
	a.handler = a.routes(a.pipeline)
	a.log.Info("pipeline.ready", "stages", a.pipeline.Stages())
	return nil
}

// Handler returns the root handler with logging and security headers.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves HTTP until ctx is done or the listener fails, then shuts down
// gracefully and closes the backends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"env", a.cfg.Env,
		"session_backend", a.cfg.SessionBackend,
		"user_backend", a.cfg.UserBackend,
	)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go a.sweepSessions(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

// Close releases the database pool and the redis client.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("redis.close.fail", "err", err)
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

type expiredSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// sweepSessions prunes expired rows from stores that do not expire keys on
// their own.
func (a *App) sweepSessions(ctx context.Context) {
	sw, ok := a.sessionStore.(expiredSweeper)
	if !ok || a.cfg.SessionSweepEvery <= 0 {
		return
	}
	t := time.NewTicker(a.cfg.SessionSweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := sw.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				a.log.Warn("session.sweep.fail", "err", err)
				continue
			}
			if n > 0 {
				a.log.Info("session.sweep", "deleted", n)
			}
		}
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
