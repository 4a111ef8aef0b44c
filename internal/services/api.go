// API service for making raw HTTP requests against the catalog
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// APIService provides raw GET access to arbitrary catalog paths, used by the
// api command for debugging. Unlike [TMDBService] it performs no retries and
// no throttling; the response comes back as-is.
type APIService struct {
	baseURL    string
	apiKey     string
	token      *oauth2.Token
	httpClient *http.Client
}

// NewAPIService creates a raw catalog client. Credentials follow the same
// shape as [NewTMDBService] but are optional here; unauthenticated requests
// simply surface the catalog's 401 payload.
func NewAPIService(baseURL string, credentials map[string]string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultTMDBBaseURL
	}

	s := &APIService{
		baseURL: baseURL,
		apiKey:  credentials["api_key"],
	}
	if accessToken := credentials["access_token"]; accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
	}

	if client == nil {
		client = newCatalogClient(s.token)
	}
	s.httpClient = client

	return s
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified catalog path and returns the raw
// response. The api_key query parameter is injected when no access token is
// configured, without clobbering parameters already present in path.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	fullURL, err := a.resolveURL(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// resolveURL joins path onto the base URL and injects the api_key parameter
// when key auth is in play.
func (a *APIService) resolveURL(path string) (string, error) {
	parsed, err := url.Parse(a.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid catalog path %q: %w", path, err)
	}

	if a.token == nil && a.apiKey != "" {
		params := parsed.Query()
		params.Set("api_key", a.apiKey)
		parsed.RawQuery = params.Encode()
	}

	return parsed.String(), nil
}
