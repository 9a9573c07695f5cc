package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/desertthunder/toplist/internal/shared"
)

// stateKey holds the pending authorization request's state parameter.
const stateKey = "oauth_state"

// HandleCallback exchanges an authorization code and caches the resulting token,
// replacing any previous one.
func (g *Gate) HandleCallback(ctx context.Context, cache *TokenCache, code string) error {
	if code == "" {
		return shared.ErrMissingCode
	}

	tok, err := g.config.Exchange(g.withClient(ctx), code)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrExchangeFailed, err)
	}

	return cache.Store(NewTokenRecord(tok, g.scope()))
}

// NewState generates a state parameter for an authorization request and remembers it in kv.
func NewState(kv KV) string {
	state := shared.GenerateID()
	kv.Set(stateKey, state)
	return state
}

// VerifyState checks got against the remembered state and forgets it, so each state
// is accepted at most once.
func VerifyState(kv KV, got string) error {
	want, ok := kv.Get(stateKey)
	kv.Delete(stateKey)

	if !ok || want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return shared.ErrInvalidState
	}
	return nil
}
