// ABOUTME: Mail dispatcher that sends one message per call over a fresh connection
// ABOUTME: Converts missing credentials and channel failures into typed errors

package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Dispatch errors
var (
	ErrNotConfigured = errors.New("sender credentials not configured")
	ErrTransport     = errors.New("mail transport failure")
)

// Credentials identify the sending account.
type Credentials struct {
	Address  string
	Password string
}

// Complete reports whether both the address and the secret are set.
func (c Credentials) Complete() bool {
	return c.Address != "" && c.Password != ""
}

// Message is a single outbound email. It exists only for one Send call.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Dialer opens an authenticated connection to the outbound mail endpoint.
type Dialer interface {
	Dial(ctx context.Context, creds Credentials) (Conn, error)
}

// Conn is one open, authenticated mail connection.
type Conn interface {
	Send(ctx context.Context, msg *Message) error
	Close() error
}

// Dispatcher sends email through a Dialer. Connections are never shared:
// every Send dials, sends once and closes.
type Dispatcher struct {
	creds  Credentials
	dialer Dialer
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(creds Credentials, dialer Dialer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{creds: creds, dialer: dialer, logger: logger}
}

// Configured reports whether sender credentials are present.
func (d *Dispatcher) Configured() bool {
	return d.creds.Complete()
}

// Send delivers one email and returns a confirmation. Missing credentials
// fail with ErrNotConfigured before any connection attempt; dial, login and
// send failures wrap ErrTransport. There is no retry.
func (d *Dispatcher) Send(ctx context.Context, to, subject, body string) (string, error) {
	if !d.creds.Complete() {
		return "", ErrNotConfigured
	}

	conn, err := d.dialer.Dial(ctx, d.creds)
	if err != nil {
		d.logger.Warn("mail dial failed", "to", to, "error", err)
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			d.logger.Debug("mail connection close failed", "error", cerr)
		}
	}()
	d.logger.Debug("mail connection established", "to", to)

	msg := &Message{
		From:    d.creds.Address,
		To:      to,
		Subject: subject,
		Body:    body,
	}
	if err := conn.Send(ctx, msg); err != nil {
		d.logger.Warn("mail send failed", "to", to, "error", err)
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	d.logger.Info("email sent", "to", to, "subject", subject)
	return fmt.Sprintf("Email sent to %s with subject: '%s'", to, subject), nil
}
