// Package server provides HTTP routing, middleware and the HTTP server lifecycle for the web front-end.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /top_artists"), so
// unknown paths get a 404 and known paths with the wrong method get a 405 with an Allow header.
// Middleware wraps the whole mux and therefore also sees those responses.
//
// # Middleware
//
//   - [RequestLogger] logs method, path, status and duration of every request.
//   - [Recover] turns a handler panic into a 500 response.
//   - [RateLimit] throttles each client address with a token bucket from golang.org/x/time/rate.
//   - [SecureHeaders] sets conservative browser security headers.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Server
//
// [Server] runs an [http.Server] until its context is cancelled and then shuts it down gracefully.
package server
