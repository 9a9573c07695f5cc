// Package services fetches the signed-in user's top artists and top tracks and projects
// them into the small summaries the pages render.
//
// # TopItemsService
//
// Handlers depend on the [TopItemsService] interface so tests can substitute a fake.
// [SpotifyService] implements it on top of the Spotify Web API client from
// github.com/zmb3/spotify/v2.
//
// A [SpotifyService] is cheap and is built per request from an [http.Client] that
// already carries the user's OAuth2 token (see auth.Gate.Client). Tokens refreshed by
// that client are written back to the user's session.
//
// # Projection
//
//   - Artist image: the first image listed by the provider (the largest).
//   - Track image: the first image of the track's album.
//   - Track artists: every artist name joined with ", ".
//   - Missing images fall back to the configured placeholder URL, which may be empty.
//   - Results keep the provider's ordering and never exceed the requested limit.
//
// # Error Handling
//
// Failed API calls are returned wrapped in [shared.ErrAPIRequest].
package services
