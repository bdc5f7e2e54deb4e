package app

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// routes mounts the probes, metrics and static assets outside the session
// pipeline; every other request goes through it.
func (a *App) routes(pipeline http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/readyz", a.handleReady)
	r.Handle("/metrics", a.metrics.Handler())

	if dir := a.cfg.StaticDir; dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(dir))))
		} else {
			a.log.Info("static.disabled", "dir", dir)
		}
	}

	r.Handle("/*", pipeline)

	return WithSecurityHeaders(WithRequestLogging(r, a.log), a.cfg.CookieSecure)
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.cfg.ReadinessRequireDB && a.pool == nil {
		http.Error(w, "db not configured", http.StatusServiceUnavailable)
		return
	}
	if a.pool != nil {
		if err := PingDB(r.Context(), a.pool, dbTimeout(a.cfg)); err != nil {
			a.log.Info("readyz.db.not_ready", "err", err)
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(r.Context()).Err(); err != nil {
			a.log.Info("readyz.redis.not_ready", "err", err)
			http.Error(w, "redis not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready\n"))
}
