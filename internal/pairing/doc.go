// Package pairing issues short-lived device pairing codes.
//
// A device being activated asks for a code. The Issuer draws a 6-character
// code from CodeAlphabet, pairs it with a one-off 128-hex-character token and
// the caller's state, and stores the record in the shared cache under
// "pairing.code:<code>" for 24 hours:
//
//	{"state":"abc","token":"<128 hex>","expiration":86400,"code":"ACE347"}
//
// The write is a conditional set, so two requests that happen to draw the
// same code cannot both own it: the loser draws again, keeping its token.
// The loop is capped (DefaultMaxAttempts) and reports ErrCodeSpaceExhausted
// when the cap is hit.
//
// The activation step reads the record back with Lookup, or redeems it once
// with Consume.
package pairing
