// Package services defines the [Service] interface for the remote video
// platform and implements it for the YouTube Data API.
//
// # Service Interface
//
// The sync engine only needs four remote operations: read the liked feed,
// create a playlist, insert a playlist item, and delete a playlist item.
// [Service] captures exactly those so the pipelines can be tested against
// fakes.
//
// # YouTube Implementation
//
// [YouTubeService] talks to the YouTube Data API v3 directly over OAuth2.
//
// The [oauth2.Config] client automatically refreshes expired tokens using the
// refresh token. Every request first waits on a shared rate limiter, then
// performs a single round trip. There are no retries: a failed page fetch or
// item mutation surfaces immediately and the caller decides whether to skip
// or abort.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no token set before the first request
//   - [shared.ErrAPIRequest] : the API returned a non-2xx status
//   - [shared.ErrMissingCredentials] : client id or secret absent
package services
