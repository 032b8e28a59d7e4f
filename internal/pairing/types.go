package pairing

import "time"

const (
	// CodeAlphabet is the set of characters a pairing code is drawn from.
	// Characters easily confused when read aloud or off a small display
	// (0/O, 1/I, 2/Z, 5/S, 6/G, 8/B, D, Q) are left out.
	CodeAlphabet = "ACEFHJKLMNPRTUVWXY3479"

	// CodeLength is the number of characters in a pairing code.
	CodeLength = 6

	// ExpirationSeconds is the lifetime of a pairing session. It is stored in
	// the record as a relative TTL, not a wall-clock deadline.
	ExpirationSeconds = 86400

	// CodeTTL is ExpirationSeconds as a duration.
	CodeTTL = ExpirationSeconds * time.Second

	// KeyPrefix namespaces pairing sessions in the shared cache.
	KeyPrefix = "pairing.code:"

	// DefaultMaxAttempts bounds the collision retry loop.
	DefaultMaxAttempts = 100
)

// Session is the record written to the cache under Key(Code).
//
// Field order matches the stored JSON object: state, token, expiration, code
// and, only when supplied, packaging_type.
type Session struct {
	State         string `json:"state"`
	Token         string `json:"token"`
	Expiration    int    `json:"expiration"`
	Code          string `json:"code"`
	PackagingType string `json:"packaging_type,omitempty"`
}

// Key returns the cache key for a pairing code.
func Key(code string) string {
	return KeyPrefix + code
}
