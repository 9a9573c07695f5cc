package session

import (
	"context"
	"maps"
)

// Values holds the data stored in a session.
type Values map[string]string

// Clone returns a copy of v that shares no state with it.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}

// Session is the server-side state for one browser.
type Session struct {
	ID     string
	Values Values
	IsNew  bool
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *Session) Set(key, value string) {
	if s.Values == nil {
		s.Values = Values{}
	}
	s.Values[key] = value
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *Session) Delete(key string) {
	delete(s.Values, key)
}

// Clear removes every key from the session.
func (s *Session) Clear() {
	clear(s.Values)
}

// Len returns the number of stored keys.
func (s *Session) Len() int {
	return len(s.Values)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by [Manager.Middleware].
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
