package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")
	ErrTimeout    = fmt.Errorf("operation timed out")

	// API and provider errors
	ErrAPIRequest      = fmt.Errorf("API request failed")
	ErrUnknownProvider = fmt.Errorf("unknown provider")
	ErrNotFound        = fmt.Errorf("not found")

	// Catalog errors
	ErrInvalidNode   = fmt.Errorf("invalid node")
	ErrInvalidRecord = fmt.Errorf("invalid record")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
