package web

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/toplist/internal/auth"
	"github.com/desertthunder/toplist/internal/services"
	"github.com/desertthunder/toplist/internal/session"
	"github.com/desertthunder/toplist/internal/shared"
)

// pageData is the context every page template receives.
type pageData struct {
	Page        string
	Period      services.Period
	WindowLabel string
	Artists     []services.ArtistSummary
	Tracks      []services.TrackSummary
}

// currentSession returns the session loaded by the session middleware.
func currentSession(r *http.Request) (*session.Session, error) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return nil, shared.ErrNoSession
	}
	return s, nil
}

// authorize runs the gate. When it returns false the response has already been
// written as a redirect to the provider.
func (a *App) authorize(w http.ResponseWriter, r *http.Request, s *session.Session) (bool, error) {
	ok, err := a.gate.IsAuthorized(r.Context(), auth.NewTokenCache(s))
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return false, a.redirectToProvider(w, r, s)
}

// redirectToProvider stores a fresh state in s and sends the browser to the consent page.
func (a *App) redirectToProvider(w http.ResponseWriter, r *http.Request, s *session.Session) error {
	state := auth.NewState(s)
	if err := a.sessions.Save(r.Context(), w, s); err != nil {
		return err
	}
	http.Redirect(w, r, a.gate.AuthorizeURL(state), http.StatusFound)
	return nil
}

func (a *App) index(w http.ResponseWriter, r *http.Request) error {
	s, err := currentSession(r)
	if err != nil {
		return err
	}

	ok, err := a.authorize(w, r, s)
	if err != nil || !ok {
		return err
	}

	if err := a.sessions.Save(r.Context(), w, s); err != nil {
		return err
	}
	http.Redirect(w, r, "/top_artists", http.StatusFound)
	return nil
}

func (a *App) callback(w http.ResponseWriter, r *http.Request) error {
	s, err := currentSession(r)
	if err != nil {
		return err
	}
	q := r.URL.Query()

	stateErr := auth.VerifyState(s, q.Get("state"))
	switch {
	case q.Get("error") != "":
		err = fmt.Errorf("%w: %s", shared.ErrAuthorizationDenied, q.Get("error"))
	case stateErr != nil:
		err = stateErr
	default:
		err = a.gate.HandleCallback(r.Context(), auth.NewTokenCache(s), q.Get("code"))
	}

	// The state is single use, so the session is saved even when the callback fails.
	if saveErr := a.sessions.Save(r.Context(), w, s); saveErr != nil {
		return saveErr
	}
	if err != nil {
		return err
	}

	a.logger.Debug("user signed in", "session", s.ID)
	http.Redirect(w, r, "/top_artists", http.StatusFound)
	return nil
}

// service builds a fetcher whose client writes refreshed tokens back into s.
func (a *App) service(r *http.Request, s *session.Session) (services.TopItemsService, error) {
	client, err := a.gate.Client(r.Context(), auth.NewTokenCache(s))
	if err != nil {
		return nil, err
	}
	return a.newService(client), nil
}

func (a *App) topArtists(w http.ResponseWriter, r *http.Request) error {
	s, err := currentSession(r)
	if err != nil {
		return err
	}
	if ok, err := a.authorize(w, r, s); err != nil || !ok {
		return err
	}

	svc, err := a.service(r, s)
	if err != nil {
		return err
	}
	artists, err := svc.TopArtists(r.Context(), a.limit, a.window)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(r.Context(), w, s); err != nil {
		return err
	}

	return a.renderer.Render(w, "top_artists", a.page("top_artists", func(p *pageData) { p.Artists = artists }))
}

func (a *App) topSongs(w http.ResponseWriter, r *http.Request) error {
	s, err := currentSession(r)
	if err != nil {
		return err
	}
	if ok, err := a.authorize(w, r, s); err != nil || !ok {
		return err
	}

	svc, err := a.service(r, s)
	if err != nil {
		return err
	}
	tracks, err := svc.TopTracks(r.Context(), a.limit, a.window)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(r.Context(), w, s); err != nil {
		return err
	}

	return a.renderer.Render(w, "top_songs", a.page("top_songs", func(p *pageData) { p.Tracks = tracks }))
}

func (a *App) page(name string, fill func(*pageData)) pageData {
	p := pageData{
		Page:        name,
		Period:      services.CurrentPeriod(a.now),
		WindowLabel: a.window.Label(),
	}
	fill(&p)
	return p
}

// logout drops the whole session, not just the token. Repeating it is harmless.
func (a *App) logout(w http.ResponseWriter, r *http.Request) error {
	s, err := currentSession(r)
	if err != nil {
		return err
	}
	if err := a.sessions.Destroy(r.Context(), w, s); err != nil {
		return err
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}
