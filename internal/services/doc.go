// Package services defines the [MovieService] interface for movie catalog providers and implements it for TMDB.
//
// # MovieService Interface
//
// All catalog providers implement a common abstraction, enabling the harvest
// engine to work uniformly across providers.
//
// # TMDB Implementation
//
// [TMDBService] talks to the TMDB v3 API. A v3 api_key travels as a query
// parameter; a v4 read access token travels as an [oauth2] bearer transport.
// The access token wins when both are configured.
//
// Every request passes through a client-side [rate.Limiter] so concurrent page
// fetches stay under the catalog's rate ceiling.
//
// # Retry Policy
//
// [TMDBService.FetchPage] retries per page: 429 responses back off
// exponentially, transport errors and other non-2xx statuses back off
// linearly, both up to a shared attempt ceiling. An exhausted page is dropped
// with the (nil, nil) empty signal rather than failing the harvest.
// [TMDBService.ResolveGenres] makes a single attempt because missing genre
// names corrupt every record of a run.
//
// # Raw API Access
//
// [APIService] exposes unthrottled GET access to arbitrary catalog paths for
// the api debug command, returning the typed [APIResponse].
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : no api_key or access_token configured
//   - [shared.ErrInvalidCredentials] : catalog rejected the credential (401)
//   - [shared.ErrGenresUnavailable] : genre taxonomy could not be fetched
package services
