// ABOUTME: Tests for the send_email tool handler.
// ABOUTME: Drives a real Dispatcher over a fake dialer so no network is used.

package builtins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/remind-gateway/internal/mailer"
	"github.com/2389/remind-gateway/internal/packs"
)

// fakeMailer records sends and returns a fixed error.
type fakeMailer struct {
	sent int
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent++
	return fmt.Sprintf("Email sent to %s with subject: '%s'", to, subject), nil
}

type stubDialer struct {
	dials   int
	dialErr error
}

func (d *stubDialer) Dial(context.Context, mailer.Credentials) (mailer.Conn, error) {
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return stubConn{}, nil
}

type stubConn struct{}

func (stubConn) Send(context.Context, *mailer.Message) error { return nil }
func (stubConn) Close() error                                { return nil }

const emailInput = `{"to": "you@example.com", "subject": "Hello", "content": "World"}`

func TestSendEmail(t *testing.T) {
	dialer := &stubDialer{}
	d := mailer.NewDispatcher(mailer.Credentials{Address: "me@example.com", Password: "pw"}, dialer, slog.Default())

	got, err := call(t, MailPack(d), "send_email", emailInput)
	require.NoError(t, err)
	assert.Equal(t, "Email sent to you@example.com with subject: 'Hello'", got)
	assert.Equal(t, 1, dialer.dials)
}

func TestSendEmailNotConfigured(t *testing.T) {
	dialer := &stubDialer{}
	d := mailer.NewDispatcher(mailer.Credentials{}, dialer, slog.Default())

	_, err := call(t, MailPack(d), "send_email", emailInput)
	f := requireFailure(t, err, packs.KindConfiguration)
	assert.Equal(t, "Email credentials are not set in environment variables.", f.Message)
	assert.Equal(t, 0, dialer.dials)
}

func TestSendEmailTransportFailure(t *testing.T) {
	dialer := &stubDialer{dialErr: errors.New("535 5.7.8 Username and Password not accepted")}
	d := mailer.NewDispatcher(mailer.Credentials{Address: "me@example.com", Password: "bad"}, dialer, slog.Default())

	_, err := call(t, MailPack(d), "send_email", emailInput)
	f := requireFailure(t, err, packs.KindTransport)
	assert.Equal(t, "Failed to send email: 535 5.7.8 Username and Password not accepted", f.Message)
	assert.ErrorIs(t, f, mailer.ErrTransport)
}

func TestSendEmailInvalidInput(t *testing.T) {
	m := &fakeMailer{}
	_, err := call(t, MailPack(m), "send_email", `{"to": ["a"]}`)
	requireFailure(t, err, packs.KindInvalidInput)
	assert.Zero(t, m.sent)
}

func TestValidateStub(t *testing.T) {
	got, err := call(t, ValidatePack(), "validate", `{"phone_number": "9999999999", "country_code": "+91"}`)
	require.NoError(t, err)
	assert.Empty(t, got)
}
