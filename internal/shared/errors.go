package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Harvest errors
	ErrGenresUnavailable = fmt.Errorf("genre catalog unavailable")
	ErrRateLimited       = fmt.Errorf("rate limited by remote API")
	ErrTimeout           = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSessionNotFound    = fmt.Errorf("session not found")
	ErrRunNotFound        = fmt.Errorf("harvest run not found")

	// Dataset errors
	ErrInvalidFormat  = fmt.Errorf("unsupported dataset format")
	ErrEmptyDataset   = fmt.Errorf("dataset contains no records")
	ErrDatasetMissing = fmt.Errorf("dataset file not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
