// Package auth orchestrates the credential lifecycle: login, registration,
// logout, password/email changes, and the authentication check that enforces
// token expiry. It is the only writer of the session store.
package auth

import (
	"context"
	"time"

	"github.com/nkiryanov/streamcat/internal/client/api"
	"github.com/nkiryanov/streamcat/internal/client/models"
	"github.com/nkiryanov/streamcat/internal/client/session"
	"github.com/nkiryanov/streamcat/internal/client/token"
	"github.com/nkiryanov/streamcat/internal/logging"
)

// Service is the auth service. Construct with New; all collaborators are
// injected, there is no ambient shared instance.
type Service struct {
	client api.Client
	store  session.Store
	log    logging.Logger

	// now is the clock used for expiry checks; overridable in tests.
	now func() time.Time
}

// New constructs a Service over the given backend client and session store.
func New(client api.Client, store session.Store, log logging.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		log:    log,
		now:    time.Now,
	}
}

// Login authenticates against the backend and persists the session triple.
// On success the store is cleared first and then written, so a reader can
// never observe stale and fresh values mixed. On failure the store is never
// touched and the classified error is returned.
func (s *Service) Login(ctx context.Context, creds models.Credentials, rememberMe bool) (*models.User, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	tok, user, err := s.client.Login(ctx, creds.Identifier, creds.Password)
	if err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx); err != nil {
		return nil, err
	}
	if err := s.store.Write(ctx, session.Data{Token: tok, User: user, RememberMe: rememberMe}); err != nil {
		return nil, err
	}
	s.client.SetAuthToken(tok)

	s.log.Info(ctx, "logged in", "user", user.Username)
	return user, nil
}

// Register creates a new account. It does not authenticate: the register
// response carries no token, so the session store stays untouched.
func (s *Service) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}
	user, err := s.client.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "account registered", "email", reg.Email)
	return user, nil
}

// Logout attempts a best-effort backend logout and unconditionally clears
// local state: the transport's default authorization header and the session
// store. It never fails from the caller's perspective, hence no error result.
func (s *Service) Logout(ctx context.Context) {
	// Attempt, ignore result.
	if err := s.client.Logout(ctx); err != nil {
		s.log.Warn(ctx, "backend logout failed, clearing local session anyway", "error", err)
	}

	s.client.ClearAuthToken()
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "clearing session store", "error", err)
	}
}

// IsAuthenticated reports whether a non-expired session is stored. This is
// the single point where expiry is enforced: a malformed token or one whose
// expiry is at or before now triggers Logout as a side effect. Storage
// failures fail closed. Idempotent.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	data, err := s.store.Read(ctx)
	if err != nil {
		s.log.Error(ctx, "reading session store", "error", err)
		return false
	}
	if data == nil {
		return false
	}

	exp, err := token.DecodeExpiry(data.Token)
	if err != nil || !exp.After(s.now()) {
		if err != nil {
			s.log.Warn(ctx, "stored token is malformed, forcing logout", "error", err)
		} else {
			s.log.Info(ctx, "stored token expired, forcing logout")
		}
		s.Logout(ctx)
		return false
	}
	return true
}

// CurrentUser returns the cached profile, or nil when no session is stored.
func (s *Service) CurrentUser(ctx context.Context) *models.User {
	data, err := s.store.Read(ctx)
	if err != nil {
		s.log.Error(ctx, "reading session store", "error", err)
		return nil
	}
	if data == nil {
		return nil
	}
	return data.User
}

// IsAdmin reports whether the cached profile has admin panel access.
func (s *Service) IsAdmin(ctx context.Context) bool {
	return s.CurrentUser(ctx).IsAdmin()
}

// AdminLevel returns the cached profile's admin level, or 0 when the user
// has no admin panel.
func (s *Service) AdminLevel(ctx context.Context) int {
	u := s.CurrentUser(ctx)
	if !u.IsAdmin() {
		return 0
	}
	return u.AdminPanel.AdminLevel
}

// ChangePassword changes the account password and refreshes the cached
// profile. The refresh is best-effort: the server already accepted the
// change, so a failed refresh is logged, not returned.
func (s *Service) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if err := validatePasswordChange(currentPassword, newPassword); err != nil {
		return err
	}
	if err := s.client.ChangePassword(ctx, currentPassword, newPassword); err != nil {
		return err
	}
	s.refreshUserCache(ctx)
	return nil
}

// UpdateEmail changes the account email and refreshes the cached profile.
func (s *Service) UpdateEmail(ctx context.Context, newEmail, currentPassword string) error {
	if err := validateEmailUpdate(newEmail, currentPassword); err != nil {
		return err
	}
	if err := s.client.UpdateEmail(ctx, newEmail, currentPassword); err != nil {
		return err
	}
	s.refreshUserCache(ctx)
	return nil
}

// UpdateUserCache overwrites only the cached profile half of the persisted
// pair, leaving the token and remember-me flag untouched.
func (s *Service) UpdateUserCache(ctx context.Context, user *models.User) error {
	return s.store.UpdateUser(ctx, user)
}

// RefreshUser fetches the current profile from the backend and updates the
// cache with the returned copy.
func (s *Service) RefreshUser(ctx context.Context) (*models.User, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.UpdateUserCache(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) refreshUserCache(ctx context.Context) {
	if _, err := s.RefreshUser(ctx); err != nil {
		s.log.Warn(ctx, "refreshing cached profile", "error", err)
	}
}
