package web

import (
	"context"
	"net/http"

	"avian/cmd/identity"
	"avian/cmd/internal/auth/session"
)

// View is the per-request data every page can render.
type View struct {
	CurrentUser *identity.Principal `json:"currentUser"`
	Success     []string            `json:"success"`
	Error       []string            `json:"error"`
}

type viewKey struct{}

// ViewFrom returns the enrichment results for the request.
func ViewFrom(ctx context.Context) View {
	v, _ := ctx.Value(viewKey{}).(*View)
	if v == nil {
		return View{}
	}
	return *v
}

// Enrich records the return-to path for every request except loginPath,
// exposes the current user and drains both flash queues into the View.
func Enrich(loginPath string, currentUser func(*http.Request) *identity.Principal) Stage {
	return Stage{
		Name: "enrich",
		Wrap: func(next HandlerFunc) HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) error {
				v := &View{}
				if s, ok := session.FromContext(r.Context()); ok {
					if r.URL.Path != loginPath {
						s.SetReturnTo(r.URL.RequestURI())
					}
					v.Success = s.Flashes(FlashSuccess)
					v.Error = s.Flashes(FlashError)
				}
				if currentUser != nil {
					v.CurrentUser = currentUser(r)
				}
				return next(w, r.WithContext(withView(r.Context(), v)))
			}
		},
	}
}

func withView(ctx context.Context, v *View) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}
