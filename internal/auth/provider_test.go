package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// mapKV is a [KV] backed by a plain map.
type mapKV map[string]string

func (m mapKV) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapKV) Set(key, value string) { m[key] = value }
func (m mapKV) Delete(key string) { delete(m, key) }

// fakeProvider is a token endpoint that accepts code "abc123" and refresh token
// "good-refresh", rejects "revoked" and fails with 503 for "flaky".
type fakeProvider struct {
	*httptest.Server
	calls atomic.Int32
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.calls.Add(1)

		if id, secret, ok := r.BasicAuth(); !ok || id != "client-id" || secret != "client-secret" {
			writeOAuthError(w, http.StatusUnauthorized, "invalid_client")
			return
		}
		if err := r.ParseForm(); err != nil {
			writeOAuthError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			if r.PostForm.Get("code") != "abc123" {
				writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
				return
			}
			writeToken(w, "access-from-code", "refresh-from-code")
		case "refresh_token":
			switch r.PostForm.Get("refresh_token") {
			case "good-refresh":
				writeToken(w, "access-refreshed", "")
			case "flaky":
				writeOAuthError(w, http.StatusServiceUnavailable, "temporarily_unavailable")
			default:
				writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
			}
		default:
			writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type")
		}
	}))
	t.Cleanup(p.Close)
	return p
}

func writeToken(w http.ResponseWriter, access, refresh string) {
	body := map[string]any{
		"access_token": access,
		"token_type":   "Bearer",
		"expires_in":   3600,
		"scope":        "user-top-read",
	}
	if refresh != "" {
		body["refresh_token"] = refresh
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func writeOAuthError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code})
}

func newTestGate(t *testing.T, tokenURL string) *Gate {
	t.Helper()
	g, err := NewGate(GateOpts{
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		RedirectURI:   "http://localhost:5000/callback",
		AuthURL:       "https://accounts.example.com/authorize",
		TokenURL:      tokenURL,
		RefreshLeeway: time.Minute,
		HTTPClient:    &http.Client{Timeout: 5 * time.Second},
	})
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}
	return g
}
