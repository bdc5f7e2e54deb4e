package authn

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"avian/cmd/identity"
	"avian/cmd/internal/auth/session"
	"avian/cmd/internal/auth/strategy"
	"avian/cmd/internal/web"
)

const (
	DefaultLoginPath = "/login"

	// SignInRequiredMessage is flashed by RequireAuthenticated.
	SignInRequiredMessage = "You must be signed in first!"
)

var ErrNoSession = errors.New("authn: request has no session")

// Login outcomes reported to the Observer.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

type Observer interface {
	ObserveLogin(strategy, result string)
}

type Middleware struct {
	sessions   *session.Manager
	strategies *strategy.Registry
	serializer Serializer
	log        *slog.Logger
	observer   Observer
	loginPath  string
}

type Option func(*Middleware)

func WithLogger(l *slog.Logger) Option {
	return func(m *Middleware) {
		if l != nil {
			m.log = l
		}
	}
}

func WithObserver(o Observer) Option { return func(m *Middleware) { m.observer = o } }

func WithLoginPath(p string) Option {
	return func(m *Middleware) {
		if p != "" {
			m.loginPath = p
		}
	}
}

func New(sessions *session.Manager, strategies *strategy.Registry, serializer Serializer, opts ...Option) (*Middleware, error) {
	if sessions == nil || strategies == nil || serializer == nil {
		return nil, errors.New("authn: sessions, strategies and serializer are required")
	}
	m := &Middleware{
		sessions:   sessions,
		strategies: strategies,
		serializer: serializer,
		log:        slog.Default(),
		loginPath:  DefaultLoginPath,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Middleware) LoginPath() string { return m.loginPath }

// Stage resolves the session identity reference. A reference to a user that
// no longer exists is cleared and the request continues anonymous.
func (m *Middleware) Stage() web.Stage {
	return web.Stage{
		Name: "auth",
		Wrap: func(next web.HandlerFunc) web.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) error {
				a := &requestAuth{state: Anonymous}
				if s, ok := session.FromContext(r.Context()); ok {
					if err := m.resolve(r.Context(), s, a); err != nil {
						return err
					}
				}
				return next(w, r.WithContext(withAuth(r.Context(), a)))
			}
		},
	}
}

func (m *Middleware) resolve(ctx context.Context, s *session.Session, a *requestAuth) error {
	ref := s.Identity()
	if ref == "" {
		return nil
	}
	p, err := m.serializer.Deserialize(ctx, ref)
	if err != nil {
		return err
	}
	if p == nil {
		m.log.Info("auth.session.stale_identity", "ref", ref)
		s.ClearIdentity()
		return nil
	}
	a.state = Authenticated
	a.user = p
	return nil
}

// Login verifies c with the named strategy. On success the session moves to
// a new ID carrying the identity reference; the pipeline persists it before
// the response is released. strategy.ErrAuthFailure leaves the request
// Anonymous.
func (m *Middleware) Login(r *http.Request, strategyName string, c strategy.Credentials) (identity.Principal, error) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return identity.Principal{}, ErrNoSession
	}
	strat, err := m.strategies.Get(strategyName)
	if err != nil {
		return identity.Principal{}, err
	}

	p, err := strat.Authenticate(r.Context(), c)
	if err != nil {
		if errors.Is(err, strategy.ErrAuthFailure) {
			m.observe(strategyName, ResultFailure)
			m.log.Info("auth.login.rejected", "strategy", strategyName)
		} else {
			m.observe(strategyName, ResultError)
		}
		return identity.Principal{}, err
	}

	ref, err := m.serializer.Serialize(p)
	if err != nil {
		m.observe(strategyName, ResultError)
		return identity.Principal{}, err
	}
	if err := m.sessions.Regenerate(r.Context(), s); err != nil {
		m.observe(strategyName, ResultError)
		return identity.Principal{}, err
	}
	s.SetIdentity(ref)

	if a := authFrom(r.Context()); a != nil {
		a.state = Authenticated
		a.user = &p
	}
	m.observe(strategyName, ResultSuccess)
	m.log.Info("auth.login.ok", "strategy", strategyName, "user_id", p.ID)
	return p, nil
}

// Logout drops the identity. Logging out an anonymous request is a no-op.
func (m *Middleware) Logout(r *http.Request) error {
	if a := authFrom(r.Context()); a != nil {
		a.state = Anonymous
		a.user = nil
	}
	s, ok := session.FromContext(r.Context())
	if !ok || s.Identity() == "" {
		return nil
	}
	s.ClearIdentity()
	return m.sessions.Regenerate(r.Context(), s)
}

// RequireAuthenticated sends anonymous requests to the login page with an
// error flash.
func (m *Middleware) RequireAuthenticated(next web.HandlerFunc) web.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		if StateOf(r) != Authenticated {
			web.Flash(r, web.FlashError, SignInRequiredMessage)
			web.Redirect(w, r, m.loginPath)
			return nil
		}
		return next(w, r)
	}
}

func (m *Middleware) observe(strategyName, result string) {
	if m.observer != nil {
		m.observer.ObserveLogin(strategyName, result)
	}
}
