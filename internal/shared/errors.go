package shared

import "errors"

var (
	// Configuration errors
	ErrMissingConfig      = errors.New("configuration not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingCredentials = errors.New("missing credentials")

	// Authorization errors
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrMissingCode         = errors.New("missing authorization code")
	ErrInvalidState        = errors.New("invalid state parameter")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrExchangeFailed      = errors.New("token exchange failed")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrInvalidToken        = errors.New("invalid token record")

	// API errors
	ErrAPIRequest = errors.New("API request failed")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNoSession       = errors.New("no session in request context")

	// Rendering errors
	ErrTemplateNotFound = errors.New("template not found")
)
