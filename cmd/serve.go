package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/toplist/internal/auth"
	"github.com/desertthunder/toplist/internal/repositories"
	"github.com/desertthunder/toplist/internal/server"
	"github.com/desertthunder/toplist/internal/services"
	"github.com/desertthunder/toplist/internal/session"
	"github.com/desertthunder/toplist/internal/shared"
	"github.com/desertthunder/toplist/internal/ui"
	"github.com/desertthunder/toplist/internal/web"
	"github.com/urfave/cli/v3"
)

const sweepInterval = 10 * time.Minute

// Serve loads the configuration, builds the application and serves it until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if addr := cmd.String("addr"); addr != "" {
		if err := config.SetAddr(addr); err != nil {
			return err
		}
	}
	if cmd.Bool("debug") {
		config.Log.Level = "debug"
	}
	shared.SetLogLevel(r.logger, config.Log.Level)

	if err := config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := r.buildApp(config)
	if err != nil {
		return err
	}
	defer app.close()

	go app.sessions.Sweep(ctx, sweepInterval)

	srv := server.NewServer(server.ServerOpts{
		Addr:            config.Addr(),
		Handler:         app.handler,
		ReadTimeout:     config.Server.ReadTimeout.Duration,
		WriteTimeout:    config.Server.WriteTimeout.Duration,
		ShutdownTimeout: config.Server.ShutdownTimeout.Duration,
		Logger:          r.logger,
	})

	siteURL := "http://" + config.Addr()
	r.writePlain("%s\n", ui.Banner("toplist",
		ui.Field{Label: "listening", Value: siteURL},
		ui.Field{Label: "callback", Value: config.Spotify.RedirectURI},
		ui.Field{Label: "sessions", Value: config.Session.Store},
		ui.Field{Label: "showing", Value: fmt.Sprintf("top %d, %s", config.Spotify.TopLimit, config.Spotify.TimeRange)},
	))

	if cmd.Bool("open") {
		go func() {
			if err := shared.OpenBrowser(ctx, siteURL); err != nil {
				r.logger.Warn("failed to open browser", "error", err)
			}
		}()
	}

	return srv.ListenAndServe(ctx)
}

// application is the assembled HTTP handler plus the resources it owns.
type application struct {
	handler  http.Handler
	sessions *session.Manager
	close    func() error
}

// buildApp wires the session store, gate, fetchers and web handlers from config.
func (r *Runner) buildApp(config *shared.Config) (*application, error) {
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*application, error) {
		closeStore()
		return nil, err
	}

	hashKey := session.DecodeKey(config.Session.HashKey)
	blockKey := session.DecodeKey(config.Session.BlockKey)
	switch {
	case len(hashKey) == 0:
		r.logger.Warn("session.hash_key not set, sessions will not survive a restart")
	case len(blockKey) == 0:
		if hashKey, blockKey, err = session.DeriveKeys(hashKey); err != nil {
			return fail(err)
		}
		r.logger.Debug("derived session cookie keys from hash_key")
	}
	sessions, err := session.NewManager(session.ManagerOpts{
		Store:      store,
		CookieName: config.Session.CookieName,
		MaxAge:     config.Session.MaxAge.Duration,
		Secure:     config.Session.Secure,
		HashKey:    hashKey,
		BlockKey:   blockKey,
		Logger:     shared.WithLogger(r.logger, "component", "session"),
	})
	if err != nil {
		return fail(err)
	}

	gate, err := auth.NewGate(auth.GateOpts{
		ClientID:      config.Spotify.ClientID,
		ClientSecret:  config.Spotify.ClientSecret,
		RedirectURI:   config.Spotify.RedirectURI,
		Scope:         config.Spotify.Scope,
		AuthURL:       config.Spotify.AuthURL,
		TokenURL:      config.Spotify.TokenURL,
		RefreshLeeway: config.Spotify.RefreshLeeway.Duration,
		HTTPClient:    r.httpClient,
	})
	if err != nil {
		return fail(err)
	}

	window, err := services.ParseWindow(config.Spotify.TimeRange)
	if err != nil {
		return fail(err)
	}

	spotifyOpts := services.SpotifyOpts{BaseURL: config.Spotify.APIURL, Placeholder: config.Spotify.PlaceholderImage}
	app, err := web.NewApp(web.AppOpts{
		Gate:     gate,
		Sessions: sessions,
		NewService: func(c *http.Client) services.TopItemsService {
			return services.NewSpotifyService(c, spotifyOpts)
		},
		Limit:     config.Spotify.TopLimit,
		Window:    window,
		RateLimit: config.Server.RateLimit,
		RateBurst: config.Server.RateBurst,
		Logger:    r.logger,
	})
	if err != nil {
		return fail(err)
	}

	return &application{handler: app.Handler(), sessions: sessions, close: closeStore}, nil
}

// openStore opens the session backend named by session.store.
func (r *Runner) openStore(config *shared.Config) (session.Store, func() error, error) {
	noop := func() error { return nil }

	switch config.Session.Store {
	case "memory":
		return session.NewMemoryStore(), noop, nil
	case "sqlite":
		db, err := shared.NewDatabase(config.Session.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session database: %w", err)
		}
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		r.logger.Info("using sqlite session store", "path", config.Session.Path)
		return repositories.NewSessionRepository(db), db.Close, nil
	case "bolt":
		store, err := session.OpenBoltStore(config.Session.Path)
		if err != nil {
			return nil, nil, err
		}
		r.logger.Info("using bolt session store", "path", config.Session.Path)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown session store %q", shared.ErrInvalidConfig, config.Session.Store)
	}
}
