package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested pokémon does not exist
	ErrNotFound = errors.New("pokemon not found")

	// ErrServerOffline indicates the API is unreachable
	ErrServerOffline = errors.New("pokemon api is unreachable")

	// ErrRateLimited indicates the API rejected the request with 429
	ErrRateLimited = errors.New("pokemon api rate limit exceeded")

	// ErrMalformedValue indicates a persisted value could not be decoded
	ErrMalformedValue = errors.New("malformed persisted value")

	// ErrStoreClosed indicates the key/value store was used after Close
	ErrStoreClosed = errors.New("store is closed")
)
