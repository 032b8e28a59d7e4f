package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
)

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Logger defines the logging interface used by mailers.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

const (
	// implicitTLSPort is the SMTPS submission port.
	implicitTLSPort = 465

	// sendTimeout bounds each network operation of an SMTP exchange.
	sendTimeout = 30 * time.Second

	tlsMinVersion = tls.VersionTLS12
)

// New returns an SMTPMailer when mail is enabled, otherwise a LogMailer.
func New(cfg config.MailConfig, logger Logger) Mailer {
	if !cfg.Enabled {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg, logger)
}

// LogMailer records sends in the log without delivering anything.
type LogMailer struct {
	logger Logger
}

// NewLogMailer creates a LogMailer. A nil logger discards output.
func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &LogMailer{logger: logger}
}

// Send validates msg and logs its recipient.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	built, err := msg.build()
	if err != nil {
		return err
	}
	rcpts, _ := built.GetRecipients() //nolint:errcheck // build guarantees one recipient
	m.logger.Info("mail disabled, not sending",
		"to", rcpts,
		"subject", msg.Subject,
	)
	return nil
}

// SMTPMailer delivers mail through a submission server.
//
// Each Send dials its own client, so a single SMTPMailer is safe for
// concurrent use.
type SMTPMailer struct {
	cfg    config.MailConfig
	logger Logger

	// tlsConfig is handed to every client. Overridable in tests.
	tlsConfig *tls.Config
}

// NewSMTPMailer creates an SMTPMailer. A nil logger discards output.
func NewSMTPMailer(cfg config.MailConfig, logger Logger) *SMTPMailer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &SMTPMailer{
		cfg:       cfg,
		logger:    logger,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tlsMinVersion},
	}
}

// Send delivers msg. ctx bounds dialing and the whole exchange.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	built, err := msg.build()
	if err != nil {
		return err
	}

	client, err := m.client()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	if err := client.DialAndSendWithContext(ctx, built); err != nil {
		m.logger.Warn("mail delivery failed", "to", msg.To, "error", err)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	m.logger.Info("mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// client builds a go-mail client for the configured server. Port 465 uses
// implicit TLS; other ports upgrade with STARTTLS when the server offers it.
func (m *SMTPMailer) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTimeout(sendTimeout),
		gomail.WithTLSConfig(m.tlsConfig),
	}
	if m.cfg.Port == implicitTLSPort {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	return gomail.NewClient(m.cfg.Host, opts...)
}
