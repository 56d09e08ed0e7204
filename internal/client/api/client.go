// Package api is the HTTP client for the streamcat backend. It owns the two
// transport policies: an outbound hook that attaches the bearer token from
// the session store to every request, and an inbound policy that maps
// response statuses onto the client error taxonomy.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/nkiryanov/streamcat/internal/client/models"
	"github.com/nkiryanov/streamcat/internal/logging"
)

// TokenSource supplies the current bearer token, or "" when none is stored.
// session.Store satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client defines the backend operations the auth service needs.
type Client interface {
	Login(ctx context.Context, usernameOrEmail, password string) (string, *models.User, error)
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	UpdateEmail(ctx context.Context, newEmail, currentPassword string) error
	CurrentUser(ctx context.Context) (*models.User, error)
	SetAuthToken(tok string)
	ClearAuthToken()
}

// REST is the resty-backed Client.
type REST struct {
	http   *resty.Client
	tokens TokenSource
	log    logging.Logger
}

var _ Client = (*REST)(nil)

// Config holds transport settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// New builds a REST client. The token source is consulted before every
// request; requests proceed unauthenticated when it yields nothing (the
// backend decides whether that is acceptable for a given endpoint).
func New(cfg Config, tokens TokenSource, log logging.Logger) *REST {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2)

	// Retry only transport failures and 5xx. Authorization failures on an
	// in-flight request fail exactly once.
	c.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r != nil && r.StatusCode() >= http.StatusInternalServerError
	})

	rc := &REST{http: c, tokens: tokens, log: log}

	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-Id", uuid.NewString())
		tok, err := tokens.Token(r.Context())
		if err != nil {
			return fmt.Errorf("reading stored token: %w", err)
		}
		if tok != "" {
			r.SetAuthToken(tok)
		}
		return nil
	})

	c.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		if r.StatusCode() == http.StatusUnauthorized {
			log.Debug(r.Request.Context(), "authorization rejected by backend",
				"method", r.Request.Method, "url", r.Request.URL)
		}
		return nil
	})

	return rc
}

// SetAuthToken installs a default Authorization header on the transport.
func (c *REST) SetAuthToken(tok string) {
	c.http.SetAuthToken(tok)
}

// ClearAuthToken drops the default Authorization header. Called on logout.
func (c *REST) ClearAuthToken() {
	c.http.SetAuthToken("")
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	User        *models.User `json:"user"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateEmailRequest struct {
	NewEmail        string `json:"newEmail"`
	CurrentPassword string `json:"currentPassword"`
}

func (c *REST) Login(ctx context.Context, usernameOrEmail, password string) (string, *models.User, error) {
	var out loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(loginRequest{UsernameOrEmail: usernameOrEmail, Password: password}).
		SetResult(&out).
		Post("/auth/login")
	if err != nil {
		return "", nil, transportError(err)
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusUnauthorized {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, classifyStatus(resp.StatusCode())
	}
	if out.AccessToken == "" || out.User == nil {
		return "", nil, fmt.Errorf("%w: incomplete login response", ErrUnavailable)
	}
	return out.AccessToken, out.User, nil
}

func (c *REST) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	var out registerResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(registerRequest{
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
			Email:     reg.Email,
			Password:  reg.Password,
		}).
		SetResult(&out).
		Post("/auth/register")
	if err != nil {
		return nil, transportError(err)
	}
	if resp.IsError() {
		return nil, classifyStatus(resp.StatusCode())
	}
	if out.User == nil {
		return nil, fmt.Errorf("%w: incomplete register response", ErrUnavailable)
	}
	return out.User, nil
}

func (c *REST) Logout(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/auth/logout")
	if err != nil {
		return transportError(err)
	}
	if resp.IsError() {
		return classifyStatus(resp.StatusCode())
	}
	return nil
}

func (c *REST) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(changePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}).
		Post("/auth/change-password")
	if err != nil {
		return transportError(err)
	}
	if resp.IsError() {
		return classifyStatus(resp.StatusCode())
	}
	return nil
}

func (c *REST) UpdateEmail(ctx context.Context, newEmail, currentPassword string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(updateEmailRequest{NewEmail: newEmail, CurrentPassword: currentPassword}).
		Post("/auth/update-email")
	if err != nil {
		return transportError(err)
	}
	if resp.IsError() {
		return classifyStatus(resp.StatusCode())
	}
	return nil
}

func (c *REST) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/users/me")
	if err != nil {
		return nil, transportError(err)
	}
	if resp.IsError() {
		return nil, classifyStatus(resp.StatusCode())
	}
	return &out, nil
}

// classifyStatus maps a non-2xx response status onto the error taxonomy.
// Executed once per call at this boundary; no caller inspects raw statuses.
func classifyStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrAccountBlocked
	case http.StatusConflict:
		return ErrEmailAlreadyInUse
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}
}

// transportError folds timeouts and connection failures into ErrUnavailable.
func transportError(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
