package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// dummyHash is verified against when the account does not exist so that
// unknown and known emails take the same time to reject.
var dummyHash = sync.OnceValue(func() string {
	h, err := HashPassword("pairing-core-timing-equaliser")
	if err != nil {
		panic(err)
	}
	return h
})

// Authenticate checks email and password and returns the active account.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func Authenticate(ctx context.Context, repo AccountRepository, email, password string) (*Account, error) {
	account, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		_, _ = VerifyPassword(password, dummyHash()) //nolint:errcheck // timing only
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}

	ok, err := VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}
	return account, nil
}
