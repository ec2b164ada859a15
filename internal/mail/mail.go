// Package mail delivers follow-up emails over SMTP.
package mail

import (
	"context"
	"fmt"
	"os"
	"strconv"

	gomail "github.com/wneessen/go-mail"
)

// Transport delivers one composed message. Implementations own delivery
// auth and retries; the controller only sees success or failure per send.
type Transport interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config holds SMTP settings, loaded from the environment.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// RecipientOverride, when set, routes every message to a single
	// address regardless of the intended recipient. Used in test setups
	// so real customers are never emailed.
	RecipientOverride string
}

// ConfigFromEnv reads SMTP_* settings. Returns ok=false when SMTP_HOST is
// unset, in which case callers should fall back to the disabled transport.
func ConfigFromEnv() (Config, bool, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return Config{}, false, nil
	}

	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return Config{}, false, fmt.Errorf("invalid SMTP_PORT %q: %w", p, err)
		}
		port = parsed
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		return Config{}, false, fmt.Errorf("SMTP_FROM must be set when SMTP_HOST is set")
	}

	return Config{
		Host:              host,
		Port:              port,
		Username:          os.Getenv("SMTP_USERNAME"),
		Password:          os.Getenv("SMTP_PASSWORD"),
		From:              from,
		RecipientOverride: os.Getenv("MAIL_RECIPIENT_OVERRIDE"),
	}, true, nil
}

// SMTPTransport sends messages through an authenticated SMTP relay.
type SMTPTransport struct {
	client   *gomail.Client
	from     string
	override string
}

func NewSMTPTransport(cfg Config) (*SMTPTransport, error) {
	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPTransport{client: client, from: cfg.From, override: cfg.RecipientOverride}, nil
}

func (t *SMTPTransport) Send(ctx context.Context, to, subject, body string) error {
	if t.override != "" {
		to = t.override
	}

	msg := gomail.NewMsg()
	if err := msg.From(t.from); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", t.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := t.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// Disabled is the transport used when no SMTP relay is configured.
// Every send fails, which the controller reports per invoice while keeping
// the pending action armed for retry.
type Disabled struct{}

func (Disabled) Send(ctx context.Context, to, subject, body string) error {
	return fmt.Errorf("email transport is not configured (set SMTP_HOST)")
}
