package web

import (
	"net/http"

	"avian/cmd/internal/auth/session"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash queues msg for the next page the client sees. It reports false when
// the request has no session.
func Flash(r *http.Request, category, msg string) bool {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return false
	}
	s.AddFlash(category, msg)
	return true
}
