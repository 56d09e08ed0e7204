// Package provider publishes the single authoritative session view consumed
// by the rest of the application. It wraps the auth service, serializes
// concurrent operations of the same kind, and guarantees consumers never
// observe a stale authenticated state once the token is known expired.
package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nkiryanov/streamcat/internal/client/api"
	"github.com/nkiryanov/streamcat/internal/client/models"
	"github.com/nkiryanov/streamcat/internal/logging"
)

// Status is the published session status. Authenticated and Unauthenticated
// are the only stable rest states consumers should branch on for routing;
// Uninitialized and Loading are transient.
type Status string

const (
	StatusUninitialized   Status = "uninitialized"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// State is the published view: status plus the cached profile. User is
// non-nil exactly when Status is StatusAuthenticated.
type State struct {
	Status Status
	User   *models.User
}

// ErrOperationInFlight is returned when a login, logout, or register call is
// issued while a call of the same kind is still outstanding. The re-entrant
// call is rejected, never queued or raced.
var ErrOperationInFlight = errors.New("operation already in flight")

// Auth is the surface the provider needs from the auth service.
// *auth.Service satisfies it.
type Auth interface {
	Login(ctx context.Context, creds models.Credentials, rememberMe bool) (*models.User, error)
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	Logout(ctx context.Context)
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *models.User
	RefreshUser(ctx context.Context) (*models.User, error)
}

const (
	opLogin    = "login"
	opLogout   = "logout"
	opRegister = "register"
)

// Provider is the session state machine.
type Provider struct {
	auth Auth
	log  logging.Logger

	mu       sync.Mutex
	state    State
	inflight map[string]bool
	subs     []subscriber
	nextSub  int
}

type subscriber struct {
	id int
	fn func(State)
}

// New constructs a Provider in the uninitialized state.
func New(auth Auth, log logging.Logger) *Provider {
	return &Provider{
		auth:     auth,
		log:      log,
		state:    State{Status: StatusUninitialized},
		inflight: make(map[string]bool),
	}
}

// State returns the current published view.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers a callback invoked on every publish. The returned
// function unsubscribes. Callbacks run synchronously in publish order.
func (p *Provider) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSub++
	id := p.nextSub
	p.subs = append(p.subs, subscriber{id: id, fn: fn})
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

func (p *Provider) publish(st State) {
	p.mu.Lock()
	p.state = st
	subs := make([]subscriber, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, s := range subs {
		s.fn(st)
	}
}

// begin marks op as in flight. Reports false when a call of the same kind is
// already outstanding.
func (p *Provider) begin(op string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflight[op] {
		return false
	}
	p.inflight[op] = true
	return true
}

// end releases the in-flight flag. Deferred on every exit path so the
// machine cannot stick in loading.
func (p *Provider) end(op string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, op)
}

// Initialize restores the session on app start: loading is published first,
// then exactly one terminal status, so consumers never render a default
// logged-out view before the real state is known. Calling it again after the
// first run is a no-op.
func (p *Provider) Initialize(ctx context.Context) {
	if p.State().Status != StatusUninitialized {
		return
	}
	p.publish(State{Status: StatusLoading})

	if !p.auth.IsAuthenticated(ctx) {
		p.publish(State{Status: StatusUnauthenticated})
		return
	}

	user := p.auth.CurrentUser(ctx)
	fresh, err := p.auth.RefreshUser(ctx)
	switch {
	case err == nil:
		user = fresh
	case errors.Is(err, api.ErrUnauthorized):
		// The backend rejected the stored token outright.
		p.log.Info(ctx, "stored session rejected by backend, logging out")
		p.auth.Logout(ctx)
		p.publish(State{Status: StatusUnauthenticated})
		return
	default:
		// Offline start: keep the cached profile.
		p.log.Warn(ctx, "profile refresh failed, using cached profile", "error", err)
	}

	if user == nil {
		p.publish(State{Status: StatusUnauthenticated})
		return
	}
	p.publish(State{Status: StatusAuthenticated, User: user})
}

// Login runs a login attempt through the state machine. While a login is
// outstanding a second Login returns ErrOperationInFlight and makes no
// network call. On failure the machine returns to the prior stable status.
func (p *Provider) Login(ctx context.Context, creds models.Credentials, rememberMe bool) error {
	if !p.begin(opLogin) {
		return ErrOperationInFlight
	}
	defer p.end(opLogin)

	prev := p.State()
	p.publish(State{Status: StatusLoading})

	user, err := p.auth.Login(ctx, creds, rememberMe)
	if err != nil {
		if prev.Status == StatusAuthenticated {
			p.publish(prev)
		} else {
			p.publish(State{Status: StatusUnauthenticated})
		}
		return err
	}

	p.publish(State{Status: StatusAuthenticated, User: user})
	return nil
}

// Logout logs out and always ends unauthenticated; the only error it can
// return is the in-flight rejection.
func (p *Provider) Logout(ctx context.Context) error {
	if !p.begin(opLogout) {
		return ErrOperationInFlight
	}
	defer p.end(opLogout)

	p.auth.Logout(ctx)
	p.publish(State{Status: StatusUnauthenticated})
	return nil
}

// Register creates an account. The published status is left unchanged: the
// register response carries no token, so a successful registration does not
// authenticate.
func (p *Provider) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if !p.begin(opRegister) {
		return nil, ErrOperationInFlight
	}
	defer p.end(opRegister)

	return p.auth.Register(ctx, reg)
}

// CheckSession re-evaluates the stored session. When a published
// authenticated state turns out to be expired, the forced logout is published
// silently (a normal logout, not a reportable failure).
func (p *Provider) CheckSession(ctx context.Context) {
	if p.State().Status != StatusAuthenticated {
		return
	}
	if !p.auth.IsAuthenticated(ctx) {
		p.publish(State{Status: StatusUnauthenticated})
	}
}

// StartSessionWatcher drives CheckSession on a ticker so token expiry is
// noticed without a user action. Blocks until ctx is done; run it in a
// goroutine.
func (p *Provider) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			p.CheckSession(checkCtx)
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
