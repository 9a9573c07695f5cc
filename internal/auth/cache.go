package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/toplist/internal/shared"
	"golang.org/x/oauth2"
)

// tokenKey is the only session key the token cache uses.
const tokenKey = "token_info"

// KV is the key-value capability the token cache needs from a session.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// TokenRecord is the cached access/refresh token pair.
type TokenRecord struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope,omitempty"`
}

// NewTokenRecord converts an oauth2 token. scope is used when the token response
// carries no scope of its own.
func NewTokenRecord(t *oauth2.Token, scope string) *TokenRecord {
	if s, ok := t.Extra("scope").(string); ok && s != "" {
		scope = s
	}
	return &TokenRecord{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresAt:    t.Expiry,
		Scope:        scope,
	}
}

// OAuth2 converts the record back to an oauth2 token.
func (r *TokenRecord) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		Expiry:       r.ExpiresAt,
	}
}

// ExpiresWithin reports whether the record expires before now+d. A zero expiry never expires.
func (r *TokenRecord) ExpiresWithin(now time.Time, d time.Duration) bool {
	if r.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(r.ExpiresAt)
}

// TokenCache stores at most one [TokenRecord] in a [KV].
type TokenCache struct {
	kv KV
}

// NewTokenCache wraps kv, typically the request's session.
func NewTokenCache(kv KV) *TokenCache {
	return &TokenCache{kv: kv}
}

// Token returns the cached record, or nil when none is cached.
func (c *TokenCache) Token() (*TokenRecord, error) {
	raw, ok := c.kv.Get(tokenKey)
	if !ok || raw == "" {
		return nil, nil
	}

	var rec TokenRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidToken, err)
	}
	return &rec, nil
}

// Store replaces the cached record.
func (c *TokenCache) Store(rec *TokenRecord) error {
	if rec == nil || rec.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrInvalidToken)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	c.kv.Set(tokenKey, string(data))
	return nil
}

// Clear drops the cached record.
func (c *TokenCache) Clear() {
	c.kv.Delete(tokenKey)
}
