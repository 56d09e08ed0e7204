package api

import "errors"

// The closed error taxonomy surfaced by the API client. Raw transport errors
// never leak past this package; callers match with errors.Is.
var (
	// ErrInvalidCredentials is a 401 on the login endpoint.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountBlocked is a 403: the account exists but may not log in.
	ErrAccountBlocked = errors.New("account blocked")

	// ErrValidation is a 400: the backend rejected the request payload.
	ErrValidation = errors.New("validation error")

	// ErrEmailAlreadyInUse is a 409 on register/update-email.
	ErrEmailAlreadyInUse = errors.New("email already in use")

	// ErrUnauthorized is a 401 on an authenticated endpoint: the token was
	// rejected. The transport surfaces it and leaves the logout decision to
	// the caller.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable covers every other failure: timeouts, connection
	// errors, and 5xx responses.
	ErrUnavailable = errors.New("server unavailable")
)
