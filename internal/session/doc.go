// Package session implements server-side web sessions keyed by a signed cookie.
//
// # Sessions
//
// A [Session] is a small string key-value map. Only its ID travels to the browser,
// signed (and optionally encrypted) by [github.com/gorilla/securecookie]; the values
// stay on the server in a [Store].
//
// # Stores
//
// Three backends implement [Store]:
//   - [MemoryStore] : process memory, lost on restart (default)
//   - [BoltStore] : a bbolt file
//   - repositories.SessionRepository : a SQLite table created by the shared migrations
//
// Stores that also implement [Sweeper] have expired records removed periodically by [Manager.Sweep].
//
// # Manager
//
// [Manager] loads the session for a request, persists it and writes the cookie, and
// destroys it on logout. [Manager.Middleware] attaches the loaded session to the request
// context, where handlers read it back with [FromContext].
//
// Requests for the same session are not serialized; two concurrent requests from one
// browser may overwrite each other's writes.
package session
