package web

import (
	"bytes"
	"net/http"
)

// bufferedWriter holds a response until the pipeline decides to release it.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header)}
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(code int) {
	if b.status == 0 {
		b.status = code
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// reset discards everything written so far.
func (b *bufferedWriter) reset() {
	b.header = make(http.Header)
	b.status = 0
	b.body.Reset()
}

func (b *bufferedWriter) flushTo(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = v
	}
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(b.body.Bytes())
	return err
}
