// Utilities for extracting API credentials from pasted cURL commands.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// CurlCredentials represents headers and credentials parsed from a cURL command,
// the shape the catalog's documentation hands out for copy-pasting.
type CurlCredentials struct {
	Headers map[string]string
	APIKey  string
}

var (
	curlHeaderRegex = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	curlAPIKeyRegex = regexp.MustCompile(`[?&]api_key=([A-Za-z0-9]+)`)
)

// ParseCurlFile reads a file containing a cURL command and extracts credentials.
func ParseCurlFile(filepath string) (*CurlCredentials, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts headers plus any
// api_key query parameter found in the request URL.
func ParseCurlCommand(data []byte) (*CurlCredentials, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
		headerLine := match[1]
		if headerLine == "" {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}

	var apiKey string
	if m := curlAPIKeyRegex.FindStringSubmatch(curlCmd); len(m) > 1 {
		apiKey = m[1]
	}

	if len(headers) == 0 && apiKey == "" {
		return nil, fmt.Errorf("no headers or api_key found in curl command")
	}

	return &CurlCredentials{Headers: headers, APIKey: apiKey}, nil
}

// BearerToken returns the token from an Authorization header, if present.
func (c *CurlCredentials) BearerToken() string {
	for key, value := range c.Headers {
		if strings.EqualFold(key, "authorization") {
			return strings.TrimSpace(strings.TrimPrefix(value, "Bearer "))
		}
	}
	return ""
}
