// Package token decodes the bearer token payload. It only extracts the
// expiry instant; signature verification is the server's responsibility and
// is deliberately never attempted here (trust in the token's authenticity
// rests on TLS transport to the backend).
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when the token lacks the expected segment
// structure, its payload is not valid JSON, or it carries no expiry claim.
// Callers must treat it identically to an expired token.
var ErrMalformedToken = errors.New("malformed token")

// DecodeExpiry extracts the expiry instant from a bearer token without
// verifying its signature.
func DecodeExpiry(tok string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrMalformedToken
	}
	return exp.Time, nil
}
