// TMDB API implementation of [MovieService]
//
// TMDB API response types based on https://developer.themoviedb.org/reference/intro/getting-started
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dovermoor/cinefetch/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTMDBBaseURL = "https://api.themoviedb.org/3"
	defaultLanguage    = "en-US"
	defaultUserAgent   = "cinefetch/0.1"

	discoverEndpoint  = "/discover/movie"
	genreListEndpoint = "/genre/movie/list"

	// Retry ceiling shared by the rate-limit and transient failure paths,
	// counted per page.
	maxRetryAttempts = 3

	requestTimeout = 30 * time.Second
	connectTimeout = 10 * time.Second

	// Client-side throttle defaults, overridable from config.
	defaultRequestsPerSecond = 40.0
	throttleBurst            = 10
)

// TMDBGenre represents one entry of the genre taxonomy.
type TMDBGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genreListResponse struct {
	Genres []TMDBGenre `json:"genres"`
}

type discoverResponse struct {
	Page         int        `json:"page"`
	Results      []RawMovie `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// TMDBService implements the MovieService interface for the TMDB v3 API.
// The credential travels either as an api_key query parameter or as a v4 read
// access token sent through an [oauth2] bearer transport; the access token wins
// when both are configured.
type TMDBService struct {
	baseURL    string
	language   string
	userAgent  string
	apiKey     string
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger

	// Backoff bases, one time-unit each. Tests shrink these.
	rateLimitDelay time.Duration
	retryDelay     time.Duration
}

// NewTMDBService creates a new TMDB service with the given credentials.
//
// Requires either "api_key" or "access_token"; "base_url", "language" and
// "user_agent" are optional overrides.
func NewTMDBService(credentials map[string]string) (*TMDBService, error) {
	apiKey := credentials["api_key"]
	accessToken := credentials["access_token"]

	if apiKey == "" && accessToken == "" {
		return nil, fmt.Errorf("%w: missing api_key or access_token in credentials", shared.ErrMissingCredentials)
	}

	baseURL := credentials["base_url"]
	if baseURL == "" {
		baseURL = defaultTMDBBaseURL
	}

	language := credentials["language"]
	if language == "" {
		language = defaultLanguage
	}

	userAgent := credentials["user_agent"]
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	s := &TMDBService{
		baseURL:        baseURL,
		language:       language,
		userAgent:      userAgent,
		apiKey:         apiKey,
		limiter:        rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), throttleBurst),
		logger:         shared.NewLogger(nil),
		rateLimitDelay: time.Second,
		retryDelay:     time.Second,
	}

	if accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
	}
	s.httpClient = newCatalogClient(s.token)

	return s, nil
}

// newCatalogClient builds the HTTP client with fixed connect and total
// timeouts, wrapping the transport with a bearer token source when one is set.
func newCatalogClient(token *oauth2.Token) *http.Client {
	base := &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}

	client := &http.Client{Transport: base, Timeout: requestTimeout}
	if token != nil {
		client.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   base,
		}
	}

	return client
}

// Authenticate installs credentials for subsequent requests. Expects either an
// "access_token" or an "api_key" in credentials; the access token wins.
func (s *TMDBService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		s.httpClient = newCatalogClient(s.token)
		return nil
	}

	if apiKey, ok := credentials["api_key"]; ok && apiKey != "" {
		s.apiKey = apiKey
		return nil
	}

	return fmt.Errorf("%w: missing access_token or api_key in credentials", shared.ErrMissingCredentials)
}

func (s *TMDBService) Name() string {
	return "TMDB"
}

// SetThrottle adjusts the client-side request rate. Non-positive values keep
// the current limiter.
func (s *TMDBService) SetThrottle(requestsPerSecond float64) {
	if requestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), throttleBurst)
	}
}

// SetLogger replaces the service logger.
func (s *TMDBService) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// discoverURL builds the discover endpoint URL for one page. The adult flag is
// only sent when enabled, matching the catalog's default-off behavior.
func (s *TMDBService) discoverURL(page int, includeAdult bool) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", "popularity.desc")
	params.Set("language", s.language)
	if includeAdult {
		params.Set("include_adult", "true")
	}
	if s.token == nil && s.apiKey != "" {
		params.Set("api_key", s.apiKey)
	}

	return s.baseURL + discoverEndpoint + "?" + params.Encode()
}

// genreURL builds the genre list endpoint URL.
func (s *TMDBService) genreURL() string {
	params := url.Values{}
	params.Set("language", s.language)
	if s.token == nil && s.apiKey != "" {
		params.Set("api_key", s.apiKey)
	}

	return s.baseURL + genreListEndpoint + "?" + params.Encode()
}

// doRequest performs one throttled HTTP request against the catalog API and
// returns the status code with the raw body. Transport failures surface as
// errors; HTTP-level failures are the caller's to classify.
func (s *TMDBService) doRequest(ctx context.Context, endpoint string) (int, []byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// FetchPage retrieves one page of catalog entries from the discover endpoint.
//
// Retry policy, counted against this page only: a 429 backs off exponentially
// (1, 2, 4 units) for up to maxRetryAttempts retries; transport errors,
// timeouts and 5xx-class responses back off linearly with the failure count.
// Exhausted retries drop the page and return the empty signal (nil, nil) so a
// single bad page never aborts a harvest. A 401 returns
// [shared.ErrInvalidCredentials] immediately and is fatal. An empty result
// list returns the same empty signal.
func (s *TMDBService) FetchPage(ctx context.Context, page int, includeAdult bool) ([]RawMovie, error) {
	endpoint := s.discoverURL(page, includeAdult)

	var rateRetries, failures int
	for {
		status, body, err := s.doRequest(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			failures++
			if failures >= maxRetryAttempts {
				s.logger.Error("dropping page after repeated request failures", "page", page, "attempts", failures, "err", err)
				return nil, nil
			}
			s.logger.Warn("request error, retrying", "page", page, "attempt", failures, "err", err)
			if err := s.sleep(ctx, time.Duration(failures)*s.retryDelay); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case status == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: check your TMDB API key", shared.ErrInvalidCredentials)

		case status == http.StatusTooManyRequests:
			if rateRetries >= maxRetryAttempts {
				s.logger.Warn("dropping page after repeated rate limiting", "page", page)
				return nil, nil
			}
			delay := s.rateLimitDelay << rateRetries
			s.logger.Warn("rate limit hit", "page", page, "wait", delay)
			rateRetries++
			if err := s.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue

		case status < 200 || status >= 300:
			failures++
			if failures >= maxRetryAttempts {
				s.logger.Error("dropping page after repeated catalog errors", "page", page, "status", status)
				return nil, nil
			}
			s.logger.Warn("catalog error, retrying", "page", page, "status", status, "attempt", failures)
			if err := s.sleep(ctx, time.Duration(failures)*s.retryDelay); err != nil {
				return nil, err
			}
			continue
		}

		var parsed discoverResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			s.logger.Error("dropping page with undecodable payload", "page", page, "err", err)
			return nil, nil
		}

		if len(parsed.Results) == 0 {
			s.logger.Debug("no results", "page", page)
			return nil, nil
		}

		return parsed.Results, nil
	}
}

// ResolveGenres fetches the genre taxonomy in a single attempt. Failures other
// than a bad credential are wrapped in [shared.ErrGenresUnavailable]; either
// way the error is fatal to the calling harvest.
func (s *TMDBService) ResolveGenres(ctx context.Context) (GenreMap, error) {
	status, body, err := s.doRequest(ctx, s.genreURL())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGenresUnavailable, err)
	}

	switch {
	case status == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: check your TMDB API key", shared.ErrInvalidCredentials)
	case status < 200 || status >= 300:
		return nil, fmt.Errorf("%w: status %d", shared.ErrGenresUnavailable, status)
	}

	var parsed genreListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: undecodable genre list: %v", shared.ErrGenresUnavailable, err)
	}

	genres := make(GenreMap, len(parsed.Genres))
	for _, genre := range parsed.Genres {
		genres[genre.ID] = genre.Name
	}

	return genres, nil
}

// CheckHealth verifies the credential and catalog reachability with a genre
// list call.
func (s *TMDBService) CheckHealth(ctx context.Context) error {
	if _, err := s.ResolveGenres(ctx); err != nil {
		return err
	}
	return nil
}

// sleep waits for d unless the context dies first.
func (s *TMDBService) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
