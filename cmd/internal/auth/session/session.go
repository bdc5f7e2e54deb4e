package session

import (
	"context"
	"time"
)

// Data is the persisted payload of a session.
type Data struct {
	Identity string              `json:"identity,omitempty"`
	Flash    map[string][]string `json:"flash,omitempty"`
	ReturnTo string              `json:"return_to,omitempty"`
}

// Session is the per-request view of a stored session. It is not safe for
// concurrent use; the pipeline owns it for the lifetime of one request.
type Session struct {
	ID        string
	CreatedAt time.Time
	TouchedAt time.Time
	ExpiresAt time.Time

	data Data

	fresh bool
	dirty bool
	// issue is set while the client does not yet hold a cookie for ID.
	issue bool
}

// IsNew reports whether the session has never been persisted.
func (s *Session) IsNew() bool { return s.fresh }

// Modified reports whether the payload changed since it was loaded or saved.
func (s *Session) Modified() bool { return s.dirty }

// NeedsCookie reports whether the response must carry a cookie for ID.
func (s *Session) NeedsCookie() bool { return s.issue }

// Identity returns the serialized identity reference, or "" when anonymous.
func (s *Session) Identity() string { return s.data.Identity }

func (s *Session) SetIdentity(ref string) {
	if s.data.Identity == ref {
		return
	}
	s.data.Identity = ref
	s.dirty = true
}

func (s *Session) ClearIdentity() { s.SetIdentity("") }

// AddFlash appends msg to the queue for category.
func (s *Session) AddFlash(category, msg string) {
	if s.data.Flash == nil {
		s.data.Flash = make(map[string][]string)
	}
	s.data.Flash[category] = append(s.data.Flash[category], msg)
	s.dirty = true
}

// Flashes drains and returns the queue for category in insertion order.
func (s *Session) Flashes(category string) []string {
	msgs := s.data.Flash[category]
	if len(msgs) == 0 {
		return nil
	}
	delete(s.data.Flash, category)
	if len(s.data.Flash) == 0 {
		s.data.Flash = nil
	}
	s.dirty = true
	return msgs
}

func (s *Session) ReturnTo() string { return s.data.ReturnTo }

func (s *Session) SetReturnTo(path string) {
	if s.data.ReturnTo == path {
		return
	}
	s.data.ReturnTo = path
	s.dirty = true
}

// TakeReturnTo returns the recorded return-to path and clears it.
func (s *Session) TakeReturnTo() string {
	p := s.data.ReturnTo
	s.SetReturnTo("")
	return p
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request session, if the session stage ran.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
