// ABOUTME: Mail pack provides the send_email tool over the mail dispatcher.
// ABOUTME: Maps missing credentials and transport errors to failure results.

package builtins

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/2389/remind-gateway/internal/auth"
	"github.com/2389/remind-gateway/internal/mailer"
	"github.com/2389/remind-gateway/internal/packs"
)

// NotConfiguredMessage is returned by send_email when sender credentials are missing.
const NotConfiguredMessage = "Email credentials are not set in environment variables."

// Mailer sends one email and returns a confirmation.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// MailPack creates the mail pack.
func MailPack(m Mailer) *packs.BuiltinPack {
	h := &mailHandlers{mailer: m}
	return &packs.BuiltinPack{
		ID: "builtin:mail",
		Tools: []*packs.BuiltinTool{
			{
				Definition: &packs.ToolDefinition{
					Name:        "send_email",
					Description: "Send an email to someone with a subject and message.",
					InputSchema: `{"type":"object","properties":{"to":{"type":"string","description":"Recipient email address"},"subject":{"type":"string","description":"Email subject"},"content":{"type":"string","description":"Email body content"}},"required":["to","subject","content"]}`,
					Doc: &packs.ToolDoc{
						Description: "Sends an email using the provided recipient, subject, and message content.",
						UseWhen:     "The user asks to send an email, such as 'send email to example@gmail.com'.",
						SideEffects: "An email is sent using SMTP from the configured address.",
					},
				},
				Handler: h.SendEmail,
			},
		},
	}
}

type mailHandlers struct {
	mailer Mailer
}

type sendEmailInput struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

func (h *mailHandlers) SendEmail(ctx context.Context, _ *auth.Grant, input json.RawMessage) (string, error) {
	var in sendEmailInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", packs.Fail(packs.KindInvalidInput, "invalid input: "+err.Error(), err)
	}

	result, err := h.mailer.Send(ctx, in.To, in.Subject, in.Content)
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, mailer.ErrNotConfigured):
		return "", packs.Fail(packs.KindConfiguration, NotConfiguredMessage, err)
	default:
		cause := strings.TrimPrefix(err.Error(), mailer.ErrTransport.Error()+": ")
		return "", packs.Fail(packs.KindTransport, "Failed to send email: "+cause, err)
	}
}
