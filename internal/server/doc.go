// Package server provides HTTP routing, middleware, and OAuth handling for the sync service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// When the user runs the auth command, a temporary HTTP server starts on the configured
// host/port, handles the callback, and shuts down after receiving the OAuth token.
//
// # Sync Trigger Surface
//
// [SyncHandler] exposes the pull and push pipelines per owner:
//
//	POST /users/{username}/pull
//	POST /users/{username}/push
//	POST /users/{username}/sync
//	GET  /users/{username}/status
//
// Pipelines run synchronously inside the request; the JSON body is the result
// summary. The handler builds the owner's authenticated remote client through
// a [ServiceFactory], so tests can swap in fakes.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
