// ABOUTME: Typed tool failures returned by handlers instead of panics or bare errors
// ABOUTME: The router turns a Failure into an error result carrying its message

package packs

import "errors"

// FailureKind classifies why a tool call did not succeed.
type FailureKind string

// Failure kinds
const (
	KindConfiguration FailureKind = "configuration"
	KindTransport     FailureKind = "transport"
	KindNotFound      FailureKind = "not_found"
	KindInvalidInput  FailureKind = "invalid_input"
	KindInternal      FailureKind = "internal"
)

// Failure is a handler outcome reported to the caller as a result string.
type Failure struct {
	Kind    FailureKind
	Message string // user-facing text returned verbatim
	Cause   error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Fail builds a Failure. cause may be nil.
func Fail(kind FailureKind, message string, cause error) error {
	return &Failure{Kind: kind, Message: message, Cause: cause}
}

// AsFailure extracts a Failure from err. Errors that are not failures are
// classified as internal with err's text as the message.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindInternal, Message: err.Error(), Cause: err}
}
