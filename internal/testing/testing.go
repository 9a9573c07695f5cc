// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/toplist/internal/services"
)

// MockTopItems is a test double for [services.TopItemsService] that counts calls.
type MockTopItems struct {
	mu          sync.Mutex
	Artists     []services.ArtistSummary
	Tracks      []services.TrackSummary
	Err         error
	ArtistCalls int
	TrackCalls  int
	LastLimit   int
	LastWindow  services.Window
}

func (m *MockTopItems) TopArtists(ctx context.Context, limit int, window services.Window) ([]services.ArtistSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArtistCalls++
	m.LastLimit, m.LastWindow = limit, window
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Artists[:min(limit, len(m.Artists))], nil
}

func (m *MockTopItems) TopTracks(ctx context.Context, limit int, window services.Window) ([]services.TrackSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrackCalls++
	m.LastLimit, m.LastWindow = limit, window
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tracks[:min(limit, len(m.Tracks))], nil
}

// Calls returns the total number of fetches made.
func (m *MockTopItems) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ArtistCalls + m.TrackCalls
}

// LastArgs returns the limit and window of the latest fetch.
func (m *MockTopItems) LastArgs() (int, services.Window) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastLimit, m.LastWindow
}

// SafeBuffer is a [bytes.Buffer] that can be written by a server goroutine while a
// test reads it.
type SafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
