package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router is the pipeline's terminal stage: a chi router whose handlers
// return errors, with every unmatched request redirected home.
type Router struct {
	mux      chi.Router
	home     string
	observer Observer
}

func NewRouter(home string, observer Observer) *Router {
	rt := &Router{mux: chi.NewRouter(), home: home, observer: observer}
	rt.mux.NotFound(rt.fallback)
	rt.mux.MethodNotAllowed(rt.fallback)
	return rt
}

func (rt *Router) Get(pattern string, h HandlerFunc)  { rt.mux.Get(pattern, Handle(h)) }
func (rt *Router) Post(pattern string, h HandlerFunc) { rt.mux.Post(pattern, Handle(h)) }

// Route registers a sub-router on pattern, as chi.Router.Route does.
func (rt *Router) Route(pattern string, fn func(r *Router)) {
	rt.mux.Route(pattern, func(sub chi.Router) {
		fn(&Router{mux: sub, home: rt.home, observer: rt.observer})
	})
}

// Serve is the terminal HandlerFunc for a Pipeline.
func (rt *Router) Serve(w http.ResponseWriter, r *http.Request) error {
	rt.mux.ServeHTTP(w, r)
	if sc := scopeFrom(r.Context()); sc != nil {
		return sc.routed
	}
	return nil
}

// fallback answers every request no route matched, whatever its method.
func (rt *Router) fallback(w http.ResponseWriter, r *http.Request) {
	if rt.observer != nil {
		rt.observer.ObserveFallback()
	}
	Redirect(w, r, rt.home)
}

// Handle adapts a HandlerFunc to chi. The returned error travels back to the
// pipeline through the request scope.
func Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			if sc := scopeFrom(r.Context()); sc != nil {
				sc.routed = err
				return
			}
			panic(err)
		}
	}
}
