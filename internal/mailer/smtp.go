// ABOUTME: SMTPS dialer backed by go-mail for production email delivery
// ABOUTME: Opens an implicit-TLS connection, authenticates with PLAIN, sends one message

package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Default outbound endpoint.
const (
	DefaultHost    = "smtp.gmail.com"
	DefaultPort    = 465
	DefaultTimeout = 30 * time.Second
)

// SMTPDialer dials an SMTP server over implicit TLS.
type SMTPDialer struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// NewSMTPDialer creates a dialer, filling zero values with defaults.
func NewSMTPDialer(host string, port int, timeout time.Duration) *SMTPDialer {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &SMTPDialer{Host: host, Port: port, Timeout: timeout}
}

// Dial connects and authenticates. The returned Conn owns the client.
func (d *SMTPDialer) Dial(ctx context.Context, creds Credentials) (Conn, error) {
	client, err := mail.NewClient(d.Host,
		mail.WithPort(d.Port),
		mail.WithSSL(),
		mail.WithTimeout(d.Timeout),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(creds.Address),
		mail.WithPassword(creds.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialWithContext(ctx); err != nil {
		return nil, fmt.Errorf("connecting to %s:%d: %w", d.Host, d.Port, err)
	}
	return &smtpConn{client: client}, nil
}

// smtpConn is an open go-mail client.
type smtpConn struct {
	client *mail.Client
}

func (c *smtpConn) Send(_ context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := c.client.Send(m); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

func (c *smtpConn) Close() error {
	return c.client.Close()
}
