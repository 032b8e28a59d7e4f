package mail

import "errors"

// Sentinel errors for mail operations.
var (
	// ErrInvalidMessage indicates a message with a bad address or header.
	ErrInvalidMessage = errors.New("mail: invalid message")

	// ErrSendFailed indicates the SMTP exchange did not complete.
	ErrSendFailed = errors.New("mail: send failed")
)
