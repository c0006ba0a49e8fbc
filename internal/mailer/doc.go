// Package mailer sends single emails on behalf of the send_email tool.
//
// A Dispatcher needs sender credentials (address and secret, usually from
// EMAIL_ADDRESS and EMAIL_PASSWORD) and a Dialer. Each Send dials a new
// connection, authenticates, transmits one message and closes the connection
// whether or not the send succeeded. Connections are never pooled.
//
// Errors:
//
//   - ErrNotConfigured: a credential is missing; no connection was attempted
//   - ErrTransport: dial, login or send failed; wraps the underlying cause
//
// SMTPDialer is the production Dialer. It speaks SMTPS (implicit TLS) to
// smtp.gmail.com:465 by default using github.com/wneessen/go-mail.
package mailer
