package web

import (
	"encoding/json"
	"net/http"
)

// Renderer writes a named page. data is page specific; the View from the
// enrichment stage is always available to it through the request.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) error
}

// JSONRenderer renders pages as JSON documents.
type JSONRenderer struct{}

type page struct {
	Page string `json:"page"`
	View View   `json:"view"`
	Data any    `json:"data,omitempty"`
}

func (JSONRenderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) error {
	body, err := json.Marshal(page{Page: name, View: ViewFrom(r.Context()), Data: data})
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}
