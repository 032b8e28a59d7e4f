package pairing

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

var alphabetSize = big.NewInt(int64(len(CodeAlphabet)))

// GenerateCode draws CodeLength characters uniformly and independently from
// CodeAlphabet using crypto/rand.
func GenerateCode() (string, error) {
	var b strings.Builder
	b.Grow(CodeLength)
	for range CodeLength {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("reading random source: %w", err)
		}
		b.WriteByte(CodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// GenerateToken returns the lowercase hex SHA-512 digest of a fresh random
// UUID: 128 characters.
func GenerateToken() string {
	sum := sha512.Sum512([]byte(uuid.New().String()))
	return hex.EncodeToString(sum[:])
}

// NormalizeCode upper-cases and trims user input, then checks it is a
// well-formed pairing code.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != CodeLength {
		return "", fmt.Errorf("%w: length %d", ErrInvalidCode, len(code))
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(CodeAlphabet, code[i]) < 0 {
			return "", fmt.Errorf("%w: character %q", ErrInvalidCode, code[i])
		}
	}
	return code, nil
}
