// Package web serves the toplist pages.
//
// # Routes
//
//	GET /            → /top_artists when signed in, otherwise the provider's consent page
//	GET /callback    → exchanges the authorization code, then → /top_artists
//	GET /top_artists → the user's top artists
//	GET /top_songs   → the user's top tracks
//	GET /logout      → destroys the session, then → /
//	GET /healthz     → "ok"
//
// # Request Flow
//
// Every page route runs the same sequence: load the session, ask the auth.Gate whether the
// cached token is usable, then fetch and render. An unauthenticated request never reaches
// a fetcher; it gets a fresh OAuth2 state stored in its session and a 302 to the provider.
//
// The session is saved after fetching so a token refreshed during the request is kept.
//
// # Errors
//
// Handlers return errors to a single adapter. Rejected callbacks (bad state, missing
// code, consent denied) answer 400; everything else is logged and answers a generic 500.
//
// # Templates
//
// Pages are html/template files embedded from templates/. Each page defines "title" and
// "content" blocks rendered inside base.html.
package web
