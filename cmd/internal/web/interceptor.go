package web

import (
	"errors"
	"log/slog"
	"net/http"

	"avian/cmd/internal/auth/session"
)

// GenericErrorMessage is the only error text clients ever see.
const GenericErrorMessage = "Oh No, Something Went Wrong!"

// Observer receives pipeline events for metrics.
type Observer interface {
	ObserveIntercepted(kind string)
	ObserveFallback()
}

// Interceptor is the last-resort handler for errors and panics raised
// anywhere in the pipeline.
type Interceptor struct {
	sessions *session.Manager
	renderer Renderer
	log      *slog.Logger
	observer Observer
	home     string
}

func NewInterceptor(sessions *session.Manager, renderer Renderer, home string, log *slog.Logger, observer Observer) *Interceptor {
	if log == nil {
		log = slog.Default()
	}
	if renderer == nil {
		renderer = JSONRenderer{}
	}
	return &Interceptor{
		sessions: sessions,
		renderer: renderer,
		log:      log,
		observer: observer,
		home:     home,
	}
}

// handle logs err, queues the generic error flash and redirects home. It
// never fails: if the flash cannot be stored the redirect still happens.
func (ic *Interceptor) handle(w http.ResponseWriter, r *http.Request, sc *scope, err error) {
	kind := errorKind(err)
	attrs := []any{"kind", kind, "method", r.Method, "path", r.URL.Path, "err", err.Error()}
	if id := RequestID(r.Context()); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		attrs = append(attrs, "stack", string(pe.Stack))
	}
	ic.log.Error("http.request.intercepted", attrs...)
	if ic.observer != nil {
		ic.observer.ObserveIntercepted(kind)
	}

	if ic.atHome(r) {
		// Redirecting home would only fail again.
		ic.renderFallback(w, r)
		return
	}

	ic.flash(w, r, sc)
	Redirect(w, r, ic.home)
}

func (ic *Interceptor) flash(w http.ResponseWriter, r *http.Request, sc *scope) {
	if ic.sessions == nil {
		return
	}
	s := sc.session
	if s == nil {
		fresh, err := ic.sessions.New()
		if err != nil {
			ic.log.Error("http.intercept.flash_failed", "err", err)
			return
		}
		s = fresh
	}
	s.AddFlash(FlashError, GenericErrorMessage)
	if err := ic.sessions.Commit(r.Context(), s); err != nil {
		ic.log.Warn("http.intercept.flash_failed", "err", err)
		return
	}
	ic.sessions.WriteCookie(w, s)
}

func (ic *Interceptor) atHome(r *http.Request) bool {
	return r.URL.Path == ic.home && (r.Method == http.MethodGet || r.Method == http.MethodHead)
}

func (ic *Interceptor) renderFallback(w http.ResponseWriter, r *http.Request) {
	v := &View{Error: []string{GenericErrorMessage}}
	r = r.WithContext(withView(r.Context(), v))
	if err := ic.renderer.Render(w, r, http.StatusServiceUnavailable, "error", nil); err != nil {
		ic.log.Error("http.intercept.render_failed", "err", err)
		http.Error(w, GenericErrorMessage, http.StatusServiceUnavailable)
	}
}

func errorKind(err error) string {
	var pe *PanicError
	switch {
	case errors.As(err, &pe):
		return "panic"
	case session.IsStoreError(err):
		return "session_store"
	default:
		return "unhandled"
	}
}
