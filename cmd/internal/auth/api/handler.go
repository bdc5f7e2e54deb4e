package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"avian/cmd/identity"
	"avian/cmd/internal/auth/authn"
	"avian/cmd/internal/auth/session"
	"avian/cmd/internal/auth/strategy"
	"avian/cmd/internal/web"
	"avian/cmd/security/password"
)

// Flash texts shown by the auth endpoints.
const (
	MsgLoginOK        = "Welcome back!"
	MsgLoginFailed    = "Invalid username or password."
	MsgLogoutOK       = "Goodbye!"
	MsgRegisterOK     = "Welcome to Avian!"
	MsgUsernameTaken  = "That username is already taken."
	MsgInvalidRequest = "Please fill in both username and password."
)

// Handler serves the login, logout and registration forms.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	auth     *authn.Middleware
	users    identity.Store
	hasher   *password.Hasher
	renderer web.Renderer
}

func NewHandler(log *slog.Logger, cfg Config, auth *authn.Middleware, users identity.Store, hasher *password.Hasher, renderer web.Renderer) (*Handler, error) {
	if auth == nil || users == nil || hasher == nil {
		return nil, errors.New("authapi: auth, users and hasher are required")
	}
	if log == nil {
		log = slog.Default()
	}
	if renderer == nil {
		renderer = web.JSONRenderer{}
	}
	return &Handler{
		log:      log,
		cfg:      cfg.normalized(),
		auth:     auth,
		users:    users,
		hasher:   hasher,
		renderer: renderer,
	}, nil
}

// Register wires the auth routes onto rt.
func (h *Handler) Register(rt *web.Router) {
	rt.Get(h.cfg.LoginPath, h.handleLoginPage)
	rt.Post(h.cfg.LoginPath, h.handleLogin)
	rt.Get(h.cfg.LogoutPath, h.handleLogout)
	rt.Post(h.cfg.LogoutPath, h.handleLogout)
	rt.Get(h.cfg.RegisterPath, h.handleRegisterPage)
	rt.Post(h.cfg.RegisterPath, h.handleRegister)
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) error {
	return h.renderer.Render(w, r, http.StatusOK, "users/login", nil)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) error {
	form, err := decodeForm(w, r, h.cfg.MaxBodyBytes)
	if err != nil {
		h.audit(r, "login.failed", "reason", "bad_form")
		return h.rejectLogin(w, r)
	}

	p, err := h.auth.Login(r, h.cfg.Strategy, strategy.Credentials{Username: form.Username, Secret: form.Password})
	switch {
	case errors.Is(err, strategy.ErrAuthFailure):
		h.audit(r, "login.failed", "username", form.Username)
		return h.rejectLogin(w, r)
	case err != nil:
		return err
	}
	h.audit(r, "login.success", "user_id", p.ID)

	dest := h.cfg.HomePath
	if s, ok := session.FromContext(r.Context()); ok {
		if rt := s.TakeReturnTo(); rt != "" && localPath(rt) {
			dest = rt
		}
	}
	web.Flash(r, web.FlashSuccess, MsgLoginOK)
	web.Redirect(w, r, dest)
	return nil
}

func (h *Handler) rejectLogin(w http.ResponseWriter, r *http.Request) error {
	web.Flash(r, web.FlashError, MsgLoginFailed)
	web.Redirect(w, r, h.cfg.LoginPath)
	return nil
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) error {
	user := authn.CurrentUser(r)
	if err := h.auth.Logout(r); err != nil {
		return err
	}
	if user != nil {
		h.audit(r, "logout", "user_id", user.ID)
	}
	web.Flash(r, web.FlashSuccess, MsgLogoutOK)
	web.Redirect(w, r, h.cfg.HomePath)
	return nil
}

func (h *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) error {
	return h.renderer.Render(w, r, http.StatusOK, "users/register", nil)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) error {
	form, err := decodeForm(w, r, h.cfg.MaxBodyBytes)
	if err != nil || form.Username == "" || form.Password == "" {
		return h.rejectRegister(w, r, MsgInvalidRequest)
	}
	if err := identity.ValidateUsername(form.Username); err != nil {
		var oe identity.OpError
		if errors.As(err, &oe) && oe.Msg != "" {
			return h.rejectRegister(w, r, capitalize(oe.Msg)+".")
		}
		return h.rejectRegister(w, r, MsgInvalidRequest)
	}
	if err := h.hasher.Config().Validate(form.Password); err != nil {
		return h.rejectRegister(w, r, passwordMessage(err))
	}

	hash, err := h.hasher.Hash(form.Password)
	if err != nil {
		return err
	}
	u, err := h.users.CreateUser(r.Context(), identity.CreateUserInput{
		Username:     form.Username,
		PasswordHash: hash,
		Now:          time.Now().UTC(),
	})
	switch {
	case identity.IsConflict(err):
		return h.rejectRegister(w, r, MsgUsernameTaken)
	case err != nil:
		return err
	}
	h.audit(r, "register", "user_id", u.ID)

	if _, err := h.auth.Login(r, h.cfg.Strategy, strategy.Credentials{Username: form.Username, Secret: form.Password}); err != nil {
		return err
	}
	web.Flash(r, web.FlashSuccess, MsgRegisterOK)
	web.Redirect(w, r, h.cfg.LandingPath)
	return nil
}

func (h *Handler) rejectRegister(w http.ResponseWriter, r *http.Request, msg string) error {
	web.Flash(r, web.FlashError, msg)
	web.Redirect(w, r, h.cfg.RegisterPath)
	return nil
}

func passwordMessage(err error) string {
	switch {
	case errors.Is(err, password.ErrPasswordTooShort):
		return "Password is too short."
	case errors.Is(err, password.ErrPasswordTooLong):
		return "Password is too long."
	case errors.Is(err, password.ErrWeakPassword):
		return "Password is too easy to guess."
	default:
		return MsgInvalidRequest
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
