package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"avian/cmd/security/token"
)

// Observer receives the outcome of every backend call.
type Observer interface {
	ObserveStoreOp(op string, d time.Duration, err error)
}

// Manager loads, creates and persists sessions on top of a Store.
type Manager struct {
	store    Store
	codec    *Codec
	signer   *token.Signer
	cfg      Config
	log      *slog.Logger
	observer Observer
	now      func() time.Time
}

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(store Store, codec *Codec, signer *token.Signer, cfg Config, opts ...Option) (*Manager, error) {
	if store == nil || codec == nil || signer == nil {
		return nil, errors.New("session: store, codec and signer are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		store:  store,
		codec:  codec,
		signer: signer,
		cfg:    cfg,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

func (m *Manager) Config() Config { return m.cfg }

// New creates an unsaved session with a fresh ID and absolute expiry.
func (m *Manager) New() (*Session, error) {
	id, err := token.NewOpaque(m.cfg.IDBytes)
	if err != nil {
		return nil, err
	}
	now := m.now().UTC()
	return &Session{
		ID:        id,
		CreatedAt: now,
		TouchedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
		fresh:     true,
		issue:     true,
	}, nil
}

// Load resolves the signed cookie value to a session. A missing, forged,
// expired or undecodable session yields a new one; only backend failures
// return an error.
func (m *Manager) Load(ctx context.Context, cookieValue string) (*Session, error) {
	if cookieValue == "" {
		return m.New()
	}
	id, err := m.signer.Unsign(cookieValue)
	if err != nil {
		m.log.Debug("session.cookie.rejected", "err", err)
		return m.New()
	}

	var rec *Record
	err = m.call(ctx, "load", func(ctx context.Context) error {
		var err error
		rec, err = m.store.Load(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rec == nil || !m.now().Before(rec.ExpiresAt) {
		return m.New()
	}

	data, err := m.codec.Open(id, rec.Data)
	if err != nil {
		m.log.Warn("session.payload.undecodable", "err", err)
		return m.New()
	}

	return &Session{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		TouchedAt: rec.TouchedAt,
		ExpiresAt: rec.ExpiresAt,
		data:      data,
	}, nil
}

// LoadRequest loads the session named by the request cookie.
func (m *Manager) LoadRequest(r *http.Request) (*Session, error) {
	var value string
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		value = c.Value
	}
	return m.Load(r.Context(), value)
}

// Save persists s and marks it clean.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	blob, err := m.codec.Seal(s.ID, s.data)
	if err != nil {
		return err
	}
	now := m.now().UTC()
	rec := Record{
		ID:        s.ID,
		Data:      blob,
		CreatedAt: s.CreatedAt,
		TouchedAt: now,
		ExpiresAt: s.ExpiresAt,
	}
	if err := m.call(ctx, "save", func(ctx context.Context) error { return m.store.Save(ctx, rec) }); err != nil {
		return err
	}
	s.TouchedAt = now
	s.fresh = false
	s.dirty = false
	return nil
}

// Touch refreshes the last-touch time of s without rewriting its payload.
// It is a no-op, reported as false, until TouchAfter has passed since the
// previous touch.
func (m *Manager) Touch(ctx context.Context, s *Session) (bool, error) {
	now := m.now().UTC()
	if now.Sub(s.TouchedAt) < m.cfg.TouchAfter {
		return false, nil
	}
	if err := m.call(ctx, "touch", func(ctx context.Context) error { return m.store.Touch(ctx, s.ID, now) }); err != nil {
		return false, err
	}
	s.TouchedAt = now
	return true, nil
}

// Commit saves a new or modified session and touches an unmodified one.
func (m *Manager) Commit(ctx context.Context, s *Session) error {
	if s.fresh || s.dirty {
		return m.Save(ctx, s)
	}
	_, err := m.Touch(ctx, s)
	return err
}

// Regenerate moves the payload of s to a new ID with a fresh lifetime and
// deletes the old record. The caller commits s afterwards.
func (m *Manager) Regenerate(ctx context.Context, s *Session) error {
	next, err := m.New()
	if err != nil {
		return err
	}
	if !s.fresh {
		old := s.ID
		if err := m.call(ctx, "delete", func(ctx context.Context) error { return m.store.Delete(ctx, old) }); err != nil {
			return err
		}
	}
	next.data = s.data
	next.dirty = true
	*s = *next
	return nil
}

// Cookie returns the cookie naming s.
func (m *Manager) Cookie(s *Session) *http.Cookie {
	c := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    m.signer.Sign(s.ID),
		Path:     m.cfg.CookiePath,
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: m.cfg.SameSite,
	}
	if left := s.ExpiresAt.Sub(m.now()); left > 0 {
		c.MaxAge = int(left / time.Second)
	}
	return c
}

// WriteCookie sets the session cookie on w when the client lacks it.
func (m *Manager) WriteCookie(w http.ResponseWriter, s *Session) {
	if !s.issue {
		return
	}
	http.SetCookie(w, m.Cookie(s))
	s.issue = false
}

func (m *Manager) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.StoreTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	if m.observer != nil {
		m.observer.ObserveStoreOp(op, time.Since(start), err)
	}
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}
	return nil
}
