package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrTokenExpired = fmt.Errorf("access token expired")

	// Provider and transport errors
	ErrProviderGateway  = fmt.Errorf("provider gateway error")
	ErrProviderNotFound = fmt.Errorf("no provider registered")
	ErrFolderNotFound   = fmt.Errorf("folder not found")
	ErrNoBody           = fmt.Errorf("no response body returned")
	ErrFetch            = fmt.Errorf("fetch failed")

	// Extraction errors
	ErrMalformedFile = fmt.Errorf("malformed audio file")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
