package cache

import "errors"

// Sentinel errors for cache operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, cache.ErrKeyNotFound) {
//	    // expired or never written
//	}
var (
	// ErrKeyNotFound is returned when a key does not exist (or has expired).
	ErrKeyNotFound = errors.New("cache: key not found")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("cache: connection failed")

	// ErrNotConnected is returned when the client has been closed.
	ErrNotConnected = errors.New("cache: not connected")

	// ErrInvalidTTL is returned when a conditional set is attempted without a positive TTL.
	ErrInvalidTTL = errors.New("cache: ttl must be positive")

	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("cache: key cannot be empty")
)
