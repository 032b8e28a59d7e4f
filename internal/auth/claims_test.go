package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing-32b"

func TestGenerateAndParseAccessToken(t *testing.T) {
	account := &Account{ID: "acc-001", Email: "jo@example.com"}

	token, err := GenerateAccessToken(account, testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "acc-001" {
		t.Errorf("Subject = %q, want acc-001", claims.Subject)
	}
	if claims.Email != "jo@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Issuer != issuer {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, issuer)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
}

func TestGenerateAccessToken_DefaultTTL(t *testing.T) {
	token, err := GenerateAccessToken(&Account{ID: "acc-001"}, testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	diff := claims.ExpiresAt.Time.Sub(time.Now().Add(15 * time.Minute))
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("default TTL should be ~15 minutes, got expiry diff of %v", diff)
	}
}

// sign builds a token with arbitrary claims for negative tests.
func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return s
}

func TestParseToken_Rejects(t *testing.T) {
	now := time.Now()
	valid := func() Claims {
		return Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "acc-001",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	foreign := valid()
	foreign.Issuer = "someone-else"

	noSubject := valid()
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-valid-jwt"},
		{"empty", ""},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("another-secret"), valid())},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte(testSecret), valid())},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"no expiry", sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"foreign issuer", sign(t, jwt.SigningMethodHS256, []byte(testSecret), foreign)},
		{"no subject", sign(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, testSecret); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
