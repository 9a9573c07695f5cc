package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/toplist/internal/shared"
	"github.com/gorilla/securecookie"
)

// ManagerOpts configures a [Manager].
type ManagerOpts struct {
	Store      Store
	CookieName string
	MaxAge     time.Duration
	Secure     bool
	// HashKey authenticates the cookie. A random key is generated when empty.
	HashKey []byte
	// BlockKey encrypts the cookie when set; it must be 16, 24 or 32 bytes.
	BlockKey []byte
	Logger   *log.Logger
}

// Manager loads, saves and destroys sessions for HTTP requests.
type Manager struct {
	store  Store
	codec  *securecookie.SecureCookie
	name   string
	maxAge time.Duration
	secure bool
	logger *log.Logger
	now    func() time.Time
}

// NewManager validates opts and creates a [Manager].
func NewManager(opts ManagerOpts) (*Manager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: session store is required", shared.ErrInvalidConfig)
	}
	if opts.CookieName == "" {
		opts.CookieName = "toplist_session"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	if len(opts.HashKey) == 0 {
		opts.HashKey = securecookie.GenerateRandomKey(64)
		if opts.HashKey == nil {
			return nil, fmt.Errorf("failed to generate session hash key")
		}
	}
	switch len(opts.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: session block key must be 16, 24 or 32 bytes, got %d", shared.ErrInvalidConfig, len(opts.BlockKey))
	}

	var blockKey []byte
	if len(opts.BlockKey) > 0 {
		blockKey = opts.BlockKey
	}
	codec := securecookie.New(opts.HashKey, blockKey)
	codec.MaxAge(int(opts.MaxAge.Seconds()))

	return &Manager{
		store:  opts.Store,
		codec:  codec,
		name:   opts.CookieName,
		maxAge: opts.MaxAge,
		secure: opts.Secure,
		logger: opts.Logger,
		now:    time.Now,
	}, nil
}

// DecodeKey decodes a base64 key from configuration. Keys that are not valid base64
// are used as raw bytes; an empty string yields nil.
func DecodeKey(s string) []byte {
	if s == "" {
		return nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b
	}
	return []byte(s)
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.name
}

// Load returns the session referenced by the request cookie. A missing, forged or
// expired cookie yields a new empty session rather than an error; only store
// failures are returned.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(m.name); err == nil {
		var id string
		if err := m.codec.Decode(m.name, cookie.Value, &id); err == nil {
			values, err := m.store.Load(r.Context(), id)
			switch {
			case err == nil:
				return &Session{ID: id, Values: values}, nil
			case !errors.Is(err, shared.ErrSessionNotFound):
				return nil, fmt.Errorf("loading session: %w", err)
			}
		} else {
			m.logger.Debug("discarding invalid session cookie", "error", err)
		}
	}

	return &Session{ID: shared.GenerateID(), Values: Values{}, IsNew: true}, nil
}

// Save persists s and writes its cookie. It must run before the response body is written.
//
// An empty session is removed from the store instead of saved.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.Len() == 0 {
		if s.IsNew {
			return nil
		}
		return m.Destroy(ctx, w, s)
	}

	if err := m.store.Save(ctx, s.ID, s.Values, m.now().Add(m.maxAge)); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	encoded, err := m.codec.Encode(m.name, s.ID)
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, m.cookie(encoded, int(m.maxAge.Seconds())))
	s.IsNew = false
	return nil
}

// Destroy clears every value of s, deletes it from the store and expires the cookie.
// Destroying an already destroyed session is a no-op.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.Clear()
	if err := m.store.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	http.SetCookie(w, m.cookie("", -1))
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware loads the session for every request and attaches it to the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r)
		if err != nil {
			m.logger.Error("session load failed", "path", r.URL.Path, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

// Sweep purges expired sessions every interval until ctx is done. It returns
// immediately when the store does not implement [Sweeper].
func (m *Manager) Sweep(ctx context.Context, interval time.Duration) {
	sweeper, ok := m.store.(Sweeper)
	if !ok {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweeper.DeleteExpired(ctx, m.now())
			if err != nil {
				m.logger.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				m.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
