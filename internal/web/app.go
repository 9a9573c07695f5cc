package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/toplist/internal/auth"
	"github.com/desertthunder/toplist/internal/server"
	"github.com/desertthunder/toplist/internal/services"
	"github.com/desertthunder/toplist/internal/session"
	"github.com/desertthunder/toplist/internal/shared"
)

// ServiceFactory builds a fetcher around an HTTP client authorized for one user.
type ServiceFactory func(client *http.Client) services.TopItemsService

// AppOpts configures an [App].
type AppOpts struct {
	Gate       *auth.Gate
	Sessions   *session.Manager
	NewService ServiceFactory
	// Renderer defaults to the embedded templates.
	Renderer *Renderer
	Limit    int
	Window   services.Window
	// RateLimit is requests per second per client; zero disables it.
	RateLimit float64
	RateBurst int
	Logger    *log.Logger
	Now       func() time.Time
}

// App wires the gate, sessions, fetchers and renderer into HTTP handlers.
type App struct {
	gate       *auth.Gate
	sessions   *session.Manager
	newService ServiceFactory
	renderer   *Renderer
	limit      int
	window     services.Window
	rateLimit  float64
	rateBurst  int
	logger     *log.Logger
	now        func() time.Time
}

// NewApp validates opts and creates an [App].
func NewApp(opts AppOpts) (*App, error) {
	if opts.Gate == nil || opts.Sessions == nil || opts.NewService == nil {
		return nil, fmt.Errorf("%w: gate, sessions and service factory are required", shared.ErrInvalidConfig)
	}
	if opts.Renderer == nil {
		r, err := NewRenderer()
		if err != nil {
			return nil, err
		}
		opts.Renderer = r
	}
	if opts.Limit <= 0 {
		opts.Limit = services.DefaultLimit
	}
	if opts.Window == "" {
		opts.Window = services.ShortTerm
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &App{
		gate:       opts.Gate,
		sessions:   opts.Sessions,
		newService: opts.NewService,
		renderer:   opts.Renderer,
		limit:      opts.Limit,
		window:     opts.Window,
		rateLimit:  opts.RateLimit,
		rateBurst:  opts.RateBurst,
		logger:     opts.Logger,
		now:        opts.Now,
	}, nil
}

// Handler returns the router serving every route.
func (a *App) Handler() http.Handler {
	router := server.NewBasicRouter()
	router.Use(
		server.Recover(a.logger),
		server.RequestLogger(a.logger),
		server.SecureHeaders,
		server.RateLimit(a.rateLimit, a.rateBurst),
	)

	withSession := func(fn handlerFunc) http.Handler {
		return a.sessions.Middleware(a.handle(fn))
	}

	router.Handle(http.MethodGet, "/{$}", withSession(a.index))
	router.Handle(http.MethodGet, "/callback", withSession(a.callback))
	router.Handle(http.MethodGet, "/top_artists", withSession(a.topArtists))
	router.Handle(http.MethodGet, "/top_songs", withSession(a.topSongs))
	router.Handle(http.MethodGet, "/logout", withSession(a.logout))
	router.Handler(healthHandler{})

	return router
}

// handlerFunc is an HTTP handler that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts fn, turning returned errors into responses.
func (a *App) handle(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			a.fail(w, r, err)
		}
	})
}

func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		a.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
		http.Error(w, http.StatusText(status)+": "+publicMessage(err), status)
		return
	}

	a.logger.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(status), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrMissingCode),
		errors.Is(err, shared.ErrAuthorizationDenied):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the part of a client error that is safe to show.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidState):
		return "the login attempt expired or was not started here, please try again"
	case errors.Is(err, shared.ErrMissingCode):
		return "missing authorization code"
	default:
		return err.Error()
	}
}

type healthHandler struct{}

func (healthHandler) Routes() []string { return []string{"GET /healthz"} }

func (healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
