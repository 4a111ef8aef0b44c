// package services defines interface MovieService for interacting with movie catalog HTTP APIs
//
// TMDB (v3 key or v4 read access token)
package services

import (
	"context"
)

// MovieService defines the interface for movie catalog providers that can resolve
// the genre taxonomy and deliver pages of raw catalog entries.
type MovieService interface {
	// Authenticate installs API key or bearer token credentials for subsequent requests.
	// Returns an error if no usable credential is present.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// ResolveGenres retrieves the genre id to display name mapping.
	// Called once per harvest; the result is shared read-only afterward.
	ResolveGenres(ctx context.Context) (GenreMap, error)

	// FetchPage retrieves one page of catalog entries sorted by popularity.
	// A nil slice with a nil error is the empty signal: the page contributed
	// nothing, either because the catalog ran out of entries or because the
	// page's retries were exhausted. Only credential failures and context
	// cancellation surface as errors.
	FetchPage(ctx context.Context, page int, includeAdult bool) ([]RawMovie, error)

	// CheckHealth performs a cheap authenticated call to verify the credential
	// and catalog reachability.
	CheckHealth(ctx context.Context) error

	// Name returns the name of the catalog (e.g., "TMDB")
	Name() string
}

// RawMovie represents one catalog entry exactly as the remote API returns it.
// The payload is semistructured: fields absent from or null in the response
// decode to zero values rather than erroring.
type RawMovie struct {
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	GenreIDs    []int   `json:"genre_ids"`
	Adult       bool    `json:"adult"`
}

// GenreMap maps a remote genre id to its display name. Built once per harvest,
// immutable afterward, safe to read from concurrent normalization calls.
type GenreMap map[int]string
