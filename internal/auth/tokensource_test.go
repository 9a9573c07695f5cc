package auth

import (
	"errors"
	"testing"

	"golang.org/x/oauth2"
)

// stubTokenSource implements [oauth2.TokenSource] for testing
type stubTokenSource struct {
	token *oauth2.Token
	err   error
}

func (s *stubTokenSource) Token() (*oauth2.Token, error) {
	return s.token, s.err
}

func TestRefreshableTokenSource(t *testing.T) {
	t.Run("skips callback for the cached token", func(t *testing.T) {
		calls := 0
		source := &refreshableTokenSource{
			source:   &stubTokenSource{token: &oauth2.Token{AccessToken: "cached"}},
			last:     "cached",
			callback: func(*oauth2.Token) { calls++ },
		}

		tok, err := source.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tok.AccessToken != "cached" {
			t.Errorf("expected cached token, got %s", tok.AccessToken)
		}
		if calls != 0 {
			t.Errorf("expected no callback, got %d calls", calls)
		}
	})

	t.Run("calls callback when token changes", func(t *testing.T) {
		var captured []string
		stub := &stubTokenSource{token: &oauth2.Token{AccessToken: "token1"}}
		source := &refreshableTokenSource{
			source:   stub,
			last:     "token0",
			callback: func(tok *oauth2.Token) { captured = append(captured, tok.AccessToken) },
		}

		source.Token()
		source.Token()
		stub.token = &oauth2.Token{AccessToken: "token2"}
		source.Token()

		if len(captured) != 2 {
			t.Fatalf("expected 2 callbacks, got %d", len(captured))
		}
		if captured[0] != "token1" || captured[1] != "token2" {
			t.Errorf("unexpected tokens %v", captured)
		}
	})

	t.Run("handles nil callback", func(t *testing.T) {
		source := &refreshableTokenSource{source: &stubTokenSource{token: &oauth2.Token{AccessToken: "x"}}}

		tok, err := source.Token()
		if err != nil {
			t.Fatalf("expected no error with nil callback, got %v", err)
		}
		if tok.AccessToken != "x" {
			t.Error("expected token to be returned despite nil callback")
		}
	})

	t.Run("propagates source errors", func(t *testing.T) {
		wantErr := errors.New("token source error")
		source := &refreshableTokenSource{
			source:   &stubTokenSource{err: wantErr},
			callback: func(*oauth2.Token) { t.Error("callback should not be called on error") },
		}

		tok, err := source.Token()
		if !errors.Is(err, wantErr) {
			t.Errorf("expected source error, got %v", err)
		}
		if tok != nil {
			t.Error("expected nil token on error")
		}
	})
}
