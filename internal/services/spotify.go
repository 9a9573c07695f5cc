package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/toplist/internal/shared"
	"github.com/zmb3/spotify/v2"
)

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	// BaseURL overrides the Web API root. It must end with "/".
	BaseURL string
	// Placeholder is used for artists and albums without images.
	Placeholder string
}

// SpotifyService implements [TopItemsService] against the Spotify Web API.
type SpotifyService struct {
	client      *spotify.Client
	placeholder string
}

var _ TopItemsService = (*SpotifyService)(nil)

// NewSpotifyService wraps httpClient, which must already authorize requests with the
// user's token.
func NewSpotifyService(httpClient *http.Client, opts SpotifyOpts) *SpotifyService {
	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		clientOpts = append(clientOpts, spotify.WithBaseURL(base))
	}

	return &SpotifyService{
		client:      spotify.New(httpClient, clientOpts...),
		placeholder: opts.Placeholder,
	}
}

// TopArtists returns up to limit of the user's top artists over window.
func (s *SpotifyService) TopArtists(ctx context.Context, limit int, window Window) ([]ArtistSummary, error) {
	limit = clampLimit(limit)

	page, err := s.client.CurrentUsersTopArtists(ctx, spotify.Limit(limit), spotify.Timerange(timerange(window)))
	if err != nil {
		return nil, fmt.Errorf("%w: top artists: %w", shared.ErrAPIRequest, err)
	}

	artists := make([]ArtistSummary, 0, min(limit, len(page.Artists)))
	for _, a := range page.Artists {
		if len(artists) == limit {
			break
		}
		artists = append(artists, ArtistSummary{
			Name:     a.Name,
			ImageURL: s.firstImage(a.Images),
		})
	}
	return artists, nil
}

// TopTracks returns up to limit of the user's top tracks over window.
func (s *SpotifyService) TopTracks(ctx context.Context, limit int, window Window) ([]TrackSummary, error) {
	limit = clampLimit(limit)

	page, err := s.client.CurrentUsersTopTracks(ctx, spotify.Limit(limit), spotify.Timerange(timerange(window)))
	if err != nil {
		return nil, fmt.Errorf("%w: top tracks: %w", shared.ErrAPIRequest, err)
	}

	tracks := make([]TrackSummary, 0, min(limit, len(page.Tracks)))
	for _, t := range page.Tracks {
		if len(tracks) == limit {
			break
		}
		tracks = append(tracks, TrackSummary{
			Name:          t.Name,
			ArtistNames:   JoinArtists(t.Artists),
			AlbumImageURL: s.firstImage(t.Album.Images),
		})
	}
	return tracks, nil
}

// firstImage returns the first (largest) image URL or the placeholder.
func (s *SpotifyService) firstImage(images []spotify.Image) string {
	if len(images) == 0 || images[0].URL == "" {
		return s.placeholder
	}
	return images[0].URL
}

// JoinArtists joins artist names with ", " in credit order.
func JoinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func timerange(w Window) spotify.Range {
	switch w {
	case MediumTerm:
		return spotify.MediumTermRange
	case LongTerm:
		return spotify.LongTermRange
	default:
		return spotify.ShortTermRange
	}
}
