package mail

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

// Message is a single-recipient plain-text email.
type Message struct {
	From    string // RFC 5322 address, display name allowed
	To      string
	Subject string
	Body    string
}

// build validates m and converts it into a go-mail message with Date and
// Message-ID headers set.
func (m Message) build() (*gomail.Msg, error) {
	if strings.ContainsAny(m.Subject, "\r\n") {
		return nil, fmt.Errorf("%w: subject contains line break", ErrInvalidMessage)
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("%w: from %q: %w", ErrInvalidMessage, m.From, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("%w: to %q: %w", ErrInvalidMessage, m.To, err)
	}

	sender, err := msg.GetSender(false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	domain := "localhost"
	if at := strings.LastIndexByte(sender, '@'); at >= 0 {
		domain = sender[at+1:]
	}

	msg.Subject(m.Subject)
	msg.SetDate()
	msg.SetMessageIDWithValue(uuid.NewString() + "@" + domain)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)
	return msg, nil
}
