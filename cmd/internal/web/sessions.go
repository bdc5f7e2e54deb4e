package web

import (
	"net/http"

	"avian/cmd/internal/auth/session"
)

// Sessions loads the request session before the rest of the pipeline runs
// and commits it afterwards. A store failure aborts the request.
func Sessions(m *session.Manager) Stage {
	return Stage{
		Name: "session",
		Wrap: func(next HandlerFunc) HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) error {
				s, err := m.LoadRequest(r)
				if err != nil {
					return err
				}
				if sc := scopeFrom(r.Context()); sc != nil {
					sc.session = s
				}
				r = r.WithContext(session.NewContext(r.Context(), s))

				if err := next(w, r); err != nil {
					return err
				}
				if err := m.Commit(r.Context(), s); err != nil {
					return err
				}
				m.WriteCookie(w, s)
				return nil
			}
		},
	}
}
