package pairing

import "errors"

// Domain errors for the pairing package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, pairing.ErrCodeSpaceExhausted) {
//	    // respond 503
//	}
var (
	// ErrStateRequired is returned when Issue is called without a state value.
	ErrStateRequired = errors.New("pairing: state is required")

	// ErrCacheUnavailable wraps any failure of the backing cache. Issuance
	// is aborted, never retried locally.
	ErrCacheUnavailable = errors.New("pairing: cache unavailable")

	// ErrCodeSpaceExhausted is returned when every attempt within the
	// configured cap collided with a live code.
	ErrCodeSpaceExhausted = errors.New("pairing: code space exhausted")

	// ErrSessionNotFound is returned when no live session exists for a code.
	ErrSessionNotFound = errors.New("pairing: session not found")

	// ErrInvalidCode is returned when a code is not 6 characters of the pairing alphabet.
	ErrInvalidCode = errors.New("pairing: invalid code")
)
