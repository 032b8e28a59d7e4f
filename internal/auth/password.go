package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP recommendation).
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 1
	argonKeyLen  = 32
	argonSaltLen = 16
)

// HashPassword hashes password with Argon2id and returns the PHC string
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches encoded. The parameters
// stored in encoded are used, so hashes made with older settings still verify.
func VerifyPassword(password, encoded string) (bool, error) {
	p, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key))) //nolint:gosec // G115: key length always fits uint32
	return subtle.ConstantTimeCompare(p.key, candidate) == 1, nil
}

// NeedsRehash reports whether encoded was produced with parameters weaker
// than the current ones.
func NeedsRehash(encoded string) bool {
	p, err := decodePHC(encoded)
	if err != nil {
		return true
	}
	return p.version != argon2.Version || p.time < argonTime || p.memory < argonMemory || len(p.key) < argonKeyLen
}

type phc struct {
	version int
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decodePHC(encoded string) (phc, error) {
	var p phc

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" { //nolint:mnd // "", alg, version, params, salt, key
		return p, fmt.Errorf("invalid PHC hash format")
	}
	if parts[1] != "argon2id" {
		return p, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &p.version); err != nil {
		return p, fmt.Errorf("parsing version: %w", err)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, fmt.Errorf("parsing parameters: %w", err)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, fmt.Errorf("decoding salt: %w", err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, fmt.Errorf("decoding hash: %w", err)
	}
	if len(p.key) == 0 {
		return p, fmt.Errorf("empty hash")
	}
	return p, nil
}
