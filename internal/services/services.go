package services

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/toplist/internal/shared"
)

const (
	// DefaultLimit is the number of items shown on each page.
	DefaultLimit = 5
	// MaxLimit is the largest page size the provider accepts.
	MaxLimit = 50
)

// Window is the affinity time range top items are computed over.
type Window string

const (
	ShortTerm  Window = "short_term"  // roughly the last four weeks
	MediumTerm Window = "medium_term" // roughly the last six months
	LongTerm   Window = "long_term"   // several years of data
)

// ParseWindow validates s. An empty string selects [ShortTerm].
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case "":
		return ShortTerm, nil
	case ShortTerm, MediumTerm, LongTerm:
		return w, nil
	default:
		return "", fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidConfig, s)
	}
}

// Label describes w for page headings.
func (w Window) Label() string {
	switch w {
	case MediumTerm:
		return "the last 6 months"
	case LongTerm:
		return "all time"
	default:
		return "the last 4 weeks"
	}
}

// ArtistSummary is what the top artists page shows for one artist.
type ArtistSummary struct {
	Name     string
	ImageURL string
}

// TrackSummary is what the top songs page shows for one track.
type TrackSummary struct {
	Name          string
	ArtistNames   string
	AlbumImageURL string
}

// TopItemsService fetches the current user's top items, most listened first.
type TopItemsService interface {
	TopArtists(ctx context.Context, limit int, window Window) ([]ArtistSummary, error)
	TopTracks(ctx context.Context, limit int, window Window) ([]TrackSummary, error)
}

// Period is the month and year a page is rendered for.
type Period struct {
	Month string
	Year  int
}

// CurrentPeriod returns the period containing now().
func CurrentPeriod(now func() time.Time) Period {
	t := now()
	return Period{Month: t.Month().String(), Year: t.Year()}
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
