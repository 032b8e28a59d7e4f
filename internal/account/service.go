package account

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/nerrad567/pairing-core/internal/audit"
	"github.com/nerrad567/pairing-core/internal/auth"
	"github.com/nerrad567/pairing-core/internal/mail"
)

// Password length bounds, in characters.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 256
)

// PasswordChangedSubject is the subject of the confirmation email.
const PasswordChangedSubject = "Password Changed"

// Logger defines the logging interface used by the Service.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Service coordinates account changes.
type Service struct {
	accounts auth.AccountRepository
	audit    audit.Repository
	mailer   mail.Mailer
	from     string
	logger   Logger

	now func() time.Time
}

// NewService creates a Service. from is the sender address for
// notifications. A nil logger discards output.
func NewService(accounts auth.AccountRepository, auditRepo audit.Repository, mailer mail.Mailer, from string, logger Logger) *Service {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		accounts: accounts,
		audit:    auditRepo,
		mailer:   mailer,
		from:     from,
		logger:   logger,
		now:      time.Now,
	}
}

// ValidatePassword checks a candidate password against the length bounds.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", ErrPasswordTooShort, MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("%w: maximum %d characters", ErrPasswordTooLong, MaxPasswordLength)
	}
	return nil
}

// Create registers a new active account.
func (s *Service) Create(ctx context.Context, email, displayName, password, source string) (*auth.Account, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	a := &auth.Account{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}

	s.record(ctx, a.ID, audit.ActionAccountCreate, source)
	s.logger.Info("account created", "account_id", a.ID)
	return a, nil
}

// ChangePassword replaces the password of accountID after verifying
// current, then emails a confirmation to the account address.
//
// A wrong current password returns auth.ErrInvalidCredentials.
func (s *Service) ChangePassword(ctx context.Context, accountID, current, next string) error {
	if err := ValidatePassword(next); err != nil {
		return err
	}
	if current == next {
		return ErrPasswordUnchanged
	}

	a, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !a.IsActive {
		return auth.ErrAccountInactive
	}

	ok, err := auth.VerifyPassword(current, a.PasswordHash)
	if err != nil {
		return fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return auth.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, a.ID, hash); err != nil {
		return fmt.Errorf("storing password: %w", err)
	}

	s.record(ctx, a.ID, audit.ActionPasswordChange, audit.SourceAPI)
	s.logger.Info("password changed", "account_id", a.ID)

	if err := s.mailer.Send(ctx, s.passwordChangedMessage(a)); err != nil {
		s.logger.Warn("password change confirmation not sent", "account_id", a.ID, "error", err)
	}
	return nil
}

func (s *Service) passwordChangedMessage(a *auth.Account) mail.Message {
	name := a.DisplayName
	if name == "" {
		name = a.Email
	}
	return mail.Message{
		From:    s.from,
		To:      a.Email,
		Subject: PasswordChangedSubject,
		Body: fmt.Sprintf("Hello %s,\n\n"+
			"The password for your account was changed at %s.\n\n"+
			"If you did not make this change, reset your password and contact support immediately.\n",
			name, s.now().UTC().Format("2006-01-02 15:04 UTC")),
	}
}

// record writes an audit entry. Failures are logged, not returned.
func (s *Service) record(ctx context.Context, accountID, action, source string) {
	err := s.audit.Record(ctx, &audit.Entry{
		Action:     action,
		EntityType: audit.EntityAccount,
		EntityID:   accountID,
		AccountID:  accountID,
		Source:     source,
	})
	if err != nil {
		s.logger.Error("audit write failed", "action", action, "account_id", accountID, "error", err)
	}
}
