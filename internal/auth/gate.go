package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/toplist/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultScope covers reading the user's top artists and tracks.
	DefaultScope = "user-top-read"
)

// GateOpts configures a [Gate].
type GateOpts struct {
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	Scope         string
	AuthURL       string
	TokenURL      string
	RefreshLeeway time.Duration
	// HTTPClient is used for token endpoint calls. nil uses [http.DefaultClient].
	HTTPClient *http.Client
}

// Gate decides whether a cached token authorizes the user and drives the
// authorization-code flow with the provider.
type Gate struct {
	config     *oauth2.Config
	httpClient *http.Client
	leeway     time.Duration
	now        func() time.Time
}

// NewGate creates a [Gate]. Missing client credentials are a configuration error.
func NewGate(opts GateOpts) (*Gate, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", shared.ErrMissingCredentials)
	}
	if opts.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect uri is required", shared.ErrInvalidConfig)
	}
	if opts.Scope == "" {
		opts.Scope = DefaultScope
	}
	if opts.AuthURL == "" {
		opts.AuthURL = spotifyAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.RefreshLeeway < 0 {
		opts.RefreshLeeway = 0
	}

	return &Gate{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       []string{opts.Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.AuthURL,
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: opts.HTTPClient,
		leeway:     opts.RefreshLeeway,
		now:        time.Now,
	}, nil
}

// withClient makes the oauth2 package use the gate's HTTP client.
func (g *Gate) withClient(ctx context.Context) context.Context {
	if g.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

func (g *Gate) scope() string {
	return g.config.Scopes[0]
}

// AuthorizeURL returns the provider's authorization endpoint carrying the client id,
// redirect URI, scope and state.
func (g *Gate) AuthorizeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// IsAuthorized reports whether the cached token can be used.
//
// A token expiring within the refresh leeway is refreshed and written back to the cache.
// When the provider rejects the refresh the record is dropped and the user is treated
// as signed out. Any other refresh failure is returned as [shared.ErrProviderUnavailable].
func (g *Gate) IsAuthorized(ctx context.Context, cache *TokenCache) (bool, error) {
	rec, err := cache.Token()
	if err != nil {
		cache.Clear()
		return false, nil
	}
	if rec == nil || rec.AccessToken == "" {
		return false, nil
	}
	if !rec.ExpiresWithin(g.now(), g.leeway) {
		return true, nil
	}
	if rec.RefreshToken == "" {
		cache.Clear()
		return false, nil
	}

	refreshed, err := g.refresh(ctx, rec)
	if err != nil {
		if rejected(err) {
			cache.Clear()
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", shared.ErrProviderUnavailable, err)
	}

	if err := cache.Store(refreshed); err != nil {
		return false, err
	}
	return true, nil
}

// rejected reports whether err is the provider refusing the grant (4xx) rather than
// the provider failing or being unreachable.
func rejected(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return false
	}
	return retrieveErr.Response == nil || retrieveErr.Response.StatusCode < http.StatusInternalServerError
}

// refresh trades rec's refresh token for a new record.
func (g *Gate) refresh(ctx context.Context, rec *TokenRecord) (*TokenRecord, error) {
	ts := g.config.TokenSource(g.withClient(ctx), &oauth2.Token{RefreshToken: rec.RefreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, err
	}

	next := NewTokenRecord(tok, rec.Scope)
	if next.RefreshToken == "" {
		next.RefreshToken = rec.RefreshToken
	}
	return next, nil
}

// TokenSource returns a source for API calls that starts from the cached token and
// writes any token it refreshes back into the cache.
func (g *Gate) TokenSource(ctx context.Context, cache *TokenCache) (oauth2.TokenSource, error) {
	rec, err := cache.Token()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, shared.ErrNotAuthenticated
	}

	return &refreshableTokenSource{
		source: g.config.TokenSource(g.withClient(ctx), rec.OAuth2()),
		last:   rec.AccessToken,
		callback: func(t *oauth2.Token) {
			_ = cache.Store(NewTokenRecord(t, rec.Scope))
		},
	}, nil
}

// Client returns an HTTP client authorized with the cached token.
func (g *Gate) Client(ctx context.Context, cache *TokenCache) (*http.Client, error) {
	ts, err := g.TokenSource(ctx, cache)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(g.withClient(ctx), ts), nil
}
