package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/toplist/internal/services"
	"github.com/desertthunder/toplist/internal/shared"
	tu "github.com/desertthunder/toplist/internal/testing"
	"golang.org/x/oauth2"
)

func newService(t *testing.T, fake *tu.FakeSpotify, placeholder string) *services.SpotifyService {
	t.Helper()
	client := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: fake.IssueToken()}))
	return services.NewSpotifyService(client, services.SpotifyOpts{BaseURL: fake.APIURL(), Placeholder: placeholder})
}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("TopArtists", func(t *testing.T) {
		t.Run("projects name and first image", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Artists = []tu.FakeArtist{
				{Name: "Artist 1", Image: "https://img.example.com/a1.jpg"},
				{Name: "Artist 2", Image: "https://img.example.com/a2.jpg"},
			}

			artists, err := newService(t, fake, "").TopArtists(ctx, 5, services.ShortTerm)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(artists) != 2 {
				t.Fatalf("expected 2 artists, got %d", len(artists))
			}
			if artists[0].Name != "Artist 1" || artists[0].ImageURL != "https://img.example.com/a1.jpg" {
				t.Errorf("unexpected first artist %+v", artists[0])
			}
			if artists[1].Name != "Artist 2" {
				t.Errorf("expected provider order to be kept, got %+v", artists)
			}
		})

		t.Run("sends limit and time range", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)

			if _, err := newService(t, fake, "").TopArtists(ctx, 7, services.LongTerm); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			q := fake.LastQuery()
			if q["limit"] != "7" {
				t.Errorf("expected limit 7, got %q", q["limit"])
			}
			if q["time_range"] != "long_term" {
				t.Errorf("expected long_term, got %q", q["time_range"])
			}
		})

		t.Run("truncates to limit", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
				fake.Artists = append(fake.Artists, tu.FakeArtist{Name: name})
			}

			artists, err := newService(t, fake, "").TopArtists(ctx, 5, services.ShortTerm)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(artists) != 5 {
				t.Fatalf("expected 5 artists, got %d", len(artists))
			}
			if artists[4].Name != "E" {
				t.Errorf("expected E last, got %s", artists[4].Name)
			}
		})

		t.Run("missing image uses placeholder", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Artists = []tu.FakeArtist{{Name: "No Image"}}

			artists, err := newService(t, fake, "/static/placeholder.png").TopArtists(ctx, 5, services.ShortTerm)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if artists[0].ImageURL != "/static/placeholder.png" {
				t.Errorf("expected placeholder, got %q", artists[0].ImageURL)
			}
		})

		t.Run("empty result", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)

			artists, err := newService(t, fake, "").TopArtists(ctx, 5, services.ShortTerm)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(artists) != 0 {
				t.Errorf("expected no artists, got %d", len(artists))
			}
		})

		t.Run("api failure", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.FailAPI.Store(true)

			_, err := newService(t, fake, "").TopArtists(ctx, 5, services.ShortTerm)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("TopTracks", func(t *testing.T) {
		t.Run("joins artist names", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Tracks = []tu.FakeTrack{
				{Name: "Song", Artists: []string{"A", "B"}, Image: "https://img.example.com/album.jpg"},
				{Name: "Solo", Artists: []string{"C"}},
			}

			tracks, err := newService(t, fake, "").TopTracks(ctx, 5, services.MediumTerm)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}

			want := services.TrackSummary{Name: "Song", ArtistNames: "A, B", AlbumImageURL: "https://img.example.com/album.jpg"}
			if tracks[0] != want {
				t.Errorf("expected %+v, got %+v", want, tracks[0])
			}
			if tracks[1].ArtistNames != "C" || tracks[1].AlbumImageURL != "" {
				t.Errorf("unexpected second track %+v", tracks[1])
			}
			if q := fake.LastQuery(); q["time_range"] != "medium_term" {
				t.Errorf("expected medium_term, got %q", q["time_range"])
			}
		})

		t.Run("unauthorized token", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "forged"}))
			svc := services.NewSpotifyService(client, services.SpotifyOpts{BaseURL: fake.APIURL()})

			if _, err := svc.TopTracks(ctx, 5, services.ShortTerm); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("transport failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection reset"))}
			svc := services.NewSpotifyService(client, services.SpotifyOpts{BaseURL: "http://api.invalid/v1"})

			if _, err := svc.TopTracks(ctx, 5, services.ShortTerm); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})
}

func TestParseWindow(t *testing.T) {
	tc := []struct {
		in      string
		want    services.Window
		wantErr bool
	}{
		{in: "", want: services.ShortTerm},
		{in: "short_term", want: services.ShortTerm},
		{in: "medium_term", want: services.MediumTerm},
		{in: "long_term", want: services.LongTerm},
		{in: "forever", wantErr: true},
	}
	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := services.ParseWindow(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("expected %s, got %s (%v)", tt.want, got, err)
			}
		})
	}
}

func TestCurrentPeriod(t *testing.T) {
	now := func() time.Time { return time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC) }

	p := services.CurrentPeriod(now)
	if p.Month != "March" || p.Year != 2026 {
		t.Errorf("unexpected period %+v", p)
	}
	if p.String() != "March 2026" {
		t.Errorf("expected 'March 2026', got %q", p.String())
	}
}

func TestWindowLabel(t *testing.T) {
	if got := services.ShortTerm.Label(); got != "the last 4 weeks" {
		t.Errorf("unexpected short term label %q", got)
	}
	if got := services.Window("").Label(); got != services.ShortTerm.Label() {
		t.Errorf("expected empty window to read as short term, got %q", got)
	}
	if got := services.LongTerm.Label(); got != "all time" {
		t.Errorf("unexpected long term label %q", got)
	}
}
