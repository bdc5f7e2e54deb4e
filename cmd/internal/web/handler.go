package web

import "net/http"

// HandlerFunc is a pipeline handler. A non-nil error is handed to the
// Interceptor; the handler must not have written a response in that case.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Middleware wraps the rest of the pipeline.
type Middleware func(next HandlerFunc) HandlerFunc

// Stage is a named pipeline step.
type Stage struct {
	Name string
	Wrap Middleware
}

// Redirect answers with a 302 to url.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}
