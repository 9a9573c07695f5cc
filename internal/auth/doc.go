// Package auth gates page requests on a cached Spotify OAuth2 token.
//
// The [TokenCache] keeps a single [TokenRecord] in a session-like [KV] store. The
// [Gate] decides whether that record still authorizes the user, refreshing it through
// [golang.org/x/oauth2] when it is close to expiry, builds the provider's
// authorization URL, and exchanges the callback's authorization code for a new record.
//
// Protocol details (code exchange, refresh grants, client authentication) are left to
// the oauth2 package; this package only decides when to call it and where the result goes.
package auth
