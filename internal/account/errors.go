package account

import "errors"

// Sentinel errors for account operations.
var (
	ErrPasswordTooShort  = errors.New("password is too short")
	ErrPasswordTooLong   = errors.New("password is too long")
	ErrPasswordUnchanged = errors.New("new password must differ from the current one")
)
