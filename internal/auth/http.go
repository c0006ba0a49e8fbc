// ABOUTME: HTTP helpers for bearer authentication on the tool endpoint
// ABOUTME: Extracts the token from the Authorization header and validates it

package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Header parsing errors
var (
	ErrMissingHeader = errors.New("missing authorization header")
	ErrBadScheme     = errors.New("invalid authorization header format")
	ErrEmptyToken    = errors.New("empty token")
)

// ExtractBearerToken extracts a bearer token from an Authorization header value.
// The scheme name matches case-insensitively; the token is taken verbatim.
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingHeader
	}
	const scheme = "Bearer "
	if len(authHeader) < len(scheme) || !strings.EqualFold(authHeader[:len(scheme)], scheme) {
		return "", ErrBadScheme
	}
	token := authHeader[len(scheme):]
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// Authenticate validates the bearer token on r. Header problems and token
// mismatches both match ErrRejected; header causes are joined for logging.
func Authenticate(r *http.Request, verifier TokenVerifier) (*Grant, error) {
	token, err := ExtractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, errors.Join(ErrRejected, err)
	}
	return verifier.Validate(token)
}
