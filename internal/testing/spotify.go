package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

const (
	FakeClientID     = "client-id"
	FakeClientSecret = "client-secret"
	// FakeCode is the only authorization code the fake provider accepts.
	FakeCode = "abc123"
)

// FakeArtist is an artist served by [FakeSpotify]. An empty Image omits the images list.
type FakeArtist struct {
	Name  string
	Image string
}

// FakeTrack is a track served by [FakeSpotify].
type FakeTrack struct {
	Name    string
	Artists []string
	Image   string
}

// FakeSpotify serves the accounts token endpoint under /api/token and the top items
// endpoints under /v1/me/top.
type FakeSpotify struct {
	*httptest.Server

	Artists []FakeArtist
	Tracks  []FakeTrack

	TokenCalls atomic.Int32
	APICalls   atomic.Int32
	// FailAPI makes the top items endpoints answer 500.
	FailAPI atomic.Bool

	mu        sync.Mutex
	issued    map[string]bool
	lastQuery map[string]string
}

// NewFakeSpotify starts a fake provider that is closed when the test ends.
func NewFakeSpotify(t *testing.T) *FakeSpotify {
	t.Helper()
	f := &FakeSpotify{issued: map[string]bool{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", f.token)
	mux.HandleFunc("GET /v1/me/top/artists", f.authorized(f.topArtists))
	mux.HandleFunc("GET /v1/me/top/tracks", f.authorized(f.topTracks))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// TokenURL is the fake token endpoint.
func (f *FakeSpotify) TokenURL() string { return f.URL + "/api/token" }

// AuthURL is the fake authorization endpoint. Nothing is served there; tests only
// inspect redirects to it.
func (f *FakeSpotify) AuthURL() string { return f.URL + "/authorize" }

// APIURL is the Web API root.
func (f *FakeSpotify) APIURL() string { return f.URL + "/v1/" }

// IssueToken mints an access token the API endpoints accept.
func (f *FakeSpotify) IssueToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok := fmt.Sprintf("access-%d", len(f.issued)+1)
	f.issued[tok] = true
	return tok
}

// LastQuery returns the query parameters of the latest API call.
func (f *FakeSpotify) LastQuery() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func (f *FakeSpotify) token(w http.ResponseWriter, r *http.Request) {
	f.TokenCalls.Add(1)

	if id, secret, ok := r.BasicAuth(); !ok || id != FakeClientID || secret != FakeClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		if r.PostForm.Get("code") != FakeCode {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
	case "refresh_token":
		if r.PostForm.Get("refresh_token") != "refresh-token" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  f.IssueToken(),
		"refresh_token": "refresh-token",
		"token_type":    "Bearer",
		"expires_in":    3600,
		"scope":         "user-top-read",
	})
}

func (f *FakeSpotify) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.APICalls.Add(1)

		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		ok := f.issued[tok]
		f.lastQuery = map[string]string{
			"limit":      r.URL.Query().Get("limit"),
			"time_range": r.URL.Query().Get("time_range"),
		}
		f.mu.Unlock()

		if !ok {
			writeAPIError(w, http.StatusUnauthorized, "Invalid access token")
			return
		}
		if f.FailAPI.Load() {
			writeAPIError(w, http.StatusInternalServerError, "Server error")
			return
		}
		next(w, r)
	}
}

func (f *FakeSpotify) topArtists(w http.ResponseWriter, r *http.Request) {
	items := []map[string]any{}
	for i, a := range f.Artists {
		items = append(items, map[string]any{
			"id":     "artist" + strconv.Itoa(i),
			"name":   a.Name,
			"images": images(a.Image),
		})
	}
	writeJSON(w, http.StatusOK, page(r, items))
}

func (f *FakeSpotify) topTracks(w http.ResponseWriter, r *http.Request) {
	items := []map[string]any{}
	for i, t := range f.Tracks {
		artists := []map[string]any{}
		for _, name := range t.Artists {
			artists = append(artists, map[string]any{"name": name})
		}
		items = append(items, map[string]any{
			"id":      "track" + strconv.Itoa(i),
			"name":    t.Name,
			"artists": artists,
			"album":   map[string]any{"name": t.Name + " (album)", "images": images(t.Image)},
		})
	}
	writeJSON(w, http.StatusOK, page(r, items))
}

// page truncates items to the limit query parameter the way the real API does.
func page(r *http.Request, items []map[string]any) map[string]any {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	total := len(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return map[string]any{"items": items, "total": total, "limit": limit, "offset": 0}
}

func images(url string) []map[string]any {
	if url == "" {
		return []map[string]any{}
	}
	return []map[string]any{
		{"url": url, "height": 640, "width": 640},
		{"url": url + "?small", "height": 64, "width": 64},
	}
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": map[string]any{"status": status, "message": msg}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
