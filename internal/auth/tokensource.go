package auth

import (
	"sync"

	"golang.org/x/oauth2"
)

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports every token that
// differs from the last one it saw, so refreshed tokens can be persisted.
type refreshableTokenSource struct {
	mu       sync.Mutex
	source   oauth2.TokenSource
	last     string
	callback func(*oauth2.Token)
}

func (s *refreshableTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()

	if changed && s.callback != nil {
		s.callback(tok)
	}
	return tok, nil
}
