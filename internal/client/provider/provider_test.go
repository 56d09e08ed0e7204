package provider

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/streamcat/internal/client/api"
	"github.com/nkiryanov/streamcat/internal/client/models"
	"github.com/nkiryanov/streamcat/internal/logging"
)

// fakeAuth implements Auth for state machine tests.
type fakeAuth struct {
	mu sync.Mutex

	LoginUser  *models.User
	LoginErr   error
	loginCalls int
	// when non-nil, Login blocks until the channel is closed and signals
	// entry on LoginEntered
	LoginGate    chan struct{}
	LoginEntered chan struct{}

	RegisterUser *models.User
	RegisterErr  error

	Authenticated bool
	Current       *models.User

	RefreshRet *models.User
	RefreshErr error

	logoutCalls int
}

func (f *fakeAuth) Login(ctx context.Context, creds models.Credentials, rememberMe bool) (*models.User, error) {
	f.mu.Lock()
	f.loginCalls++
	gate, entered := f.LoginGate, f.LoginEntered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.LoginUser, nil
}

func (f *fakeAuth) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	return f.RegisterUser, f.RegisterErr
}

func (f *fakeAuth) Logout(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	f.Authenticated = false
}

func (f *fakeAuth) IsAuthenticated(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Authenticated
}

func (f *fakeAuth) CurrentUser(ctx context.Context) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Current
}

func (f *fakeAuth) RefreshUser(ctx context.Context) (*models.User, error) {
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	return f.RefreshRet, nil
}

func (f *fakeAuth) LoginCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

func (f *fakeAuth) LogoutCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logoutCalls
}

func testUser() *models.User {
	return &models.User{ID: 1, Username: "alice", FirstName: "Alice", Email: "alice@example.com"}
}

// recordStatuses subscribes and collects every published status.
func recordStatuses(p *Provider) *[]Status {
	var seen []Status
	p.Subscribe(func(st State) { seen = append(seen, st.Status) })
	return &seen
}

func TestInitialize_NoStoredSession(t *testing.T) {
	fake := &fakeAuth{}
	p := New(fake, logging.NewNop())
	seen := recordStatuses(p)

	p.Initialize(context.Background())

	require.Equal(t, []Status{StatusLoading, StatusUnauthenticated}, *seen)
	require.Equal(t, StatusUnauthenticated, p.State().Status)
	require.Nil(t, p.State().User)
}

func TestInitialize_RestoresSessionWithFreshProfile(t *testing.T) {
	cached := testUser()
	fresh := testUser()
	fresh.Email = "fresh@example.com"
	fake := &fakeAuth{Authenticated: true, Current: cached, RefreshRet: fresh}
	p := New(fake, logging.NewNop())
	seen := recordStatuses(p)

	p.Initialize(context.Background())

	require.Equal(t, []Status{StatusLoading, StatusAuthenticated}, *seen)
	require.Equal(t, fresh, p.State().User)
}

func TestInitialize_RejectedTokenForcesLogout(t *testing.T) {
	fake := &fakeAuth{Authenticated: true, Current: testUser(), RefreshErr: api.ErrUnauthorized}
	p := New(fake, logging.NewNop())

	p.Initialize(context.Background())

	require.Equal(t, StatusUnauthenticated, p.State().Status)
	require.Equal(t, 1, fake.LogoutCalls())
}

func TestInitialize_OfflineKeepsCachedProfile(t *testing.T) {
	cached := testUser()
	fake := &fakeAuth{Authenticated: true, Current: cached, RefreshErr: api.ErrUnavailable}
	p := New(fake, logging.NewNop())

	p.Initialize(context.Background())

	require.Equal(t, StatusAuthenticated, p.State().Status)
	require.Equal(t, cached, p.State().User)
	require.Zero(t, fake.LogoutCalls())
}

func TestInitialize_SecondCallIsNoOp(t *testing.T) {
	fake := &fakeAuth{}
	p := New(fake, logging.NewNop())

	p.Initialize(context.Background())
	seen := recordStatuses(p)
	p.Initialize(context.Background())

	require.Empty(t, *seen)
}

func TestLogin_PublishesLoadingThenAuthenticated(t *testing.T) {
	fake := &fakeAuth{LoginUser: testUser()}
	p := New(fake, logging.NewNop())
	p.Initialize(context.Background())
	seen := recordStatuses(p)

	err := p.Login(context.Background(), models.Credentials{Identifier: "a@b.com", Password: "x"}, false)
	require.NoError(t, err)

	require.Equal(t, []Status{StatusLoading, StatusAuthenticated}, *seen)
	require.Equal(t, testUser(), p.State().User)
}

func TestLogin_FailureReturnsToPriorStableState(t *testing.T) {
	fake := &fakeAuth{LoginErr: api.ErrInvalidCredentials}
	p := New(fake, logging.NewNop())
	p.Initialize(context.Background())
	seen := recordStatuses(p)

	err := p.Login(context.Background(), models.Credentials{Identifier: "a@b.com", Password: "x"}, false)
	require.ErrorIs(t, err, api.ErrInvalidCredentials)

	require.Equal(t, []Status{StatusLoading, StatusUnauthenticated}, *seen)
}

func TestLogin_FailureWhileAuthenticatedKeepsSession(t *testing.T) {
	fake := &fakeAuth{LoginUser: testUser()}
	p := New(fake, logging.NewNop())
	p.Initialize(context.Background())
	require.NoError(t, p.Login(context.Background(), models.Credentials{Identifier: "a@b.com", Password: "x"}, false))

	// a later login attempt with bad credentials must not drop the session
	fake.LoginErr = api.ErrInvalidCredentials
	err := p.Login(context.Background(), models.Credentials{Identifier: "a@b.com", Password: "bad"}, false)
	require.ErrorIs(t, err, api.ErrInvalidCredentials)

	st := p.State()
	require.Equal(t, StatusAuthenticated, st.Status)
	require.Equal(t, testUser(), st.User)
}

func TestLogin_ReentrantCallRejectedWithOneNetworkCall(t *testing.T) {
	fake := &fakeAuth{
		LoginUser:    testUser(),
		LoginGate:    make(chan struct{}),
		LoginEntered: make(chan struct{}, 1),
	}
	p := New(fake, logging.NewNop())
	p.Initialize(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = p.Login(context.Background(), models.Credentials{Identifier: "a@b.com", Password: "x"}, false)
	}()

	<-fake.LoginEntered // first call is now in flight

	err := p.Login(context.Background(), models.Credentials{Identifier: "a@b.com", Password: "x"}, false)
	require.ErrorIs(t, err, ErrOperationInFlight)

	close(fake.LoginGate)
	wg.Wait()

	require.NoError(t, firstErr)
	require.Equal(t, 1, fake.LoginCalls())
	require.Equal(t, StatusAuthenticated, p.State().Status)
}

func TestLogout_AlwaysEndsUnauthenticated(t *testing.T) {
	fake := &fakeAuth{LoginUser: testUser()}
	p := New(fake, logging.NewNop())
	p.Initialize(context.Background())
	require.NoError(t, p.Login(context.Background(), models.Credentials{Identifier: "a@b.com", Password: "x"}, false))

	require.NoError(t, p.Logout(context.Background()))

	require.Equal(t, StatusUnauthenticated, p.State().Status)
	require.Nil(t, p.State().User)
	require.Equal(t, 1, fake.LogoutCalls())
}

func TestRegister_LeavesStatusUnchanged(t *testing.T) {
	fake := &fakeAuth{RegisterUser: testUser()}
	p := New(fake, logging.NewNop())
	p.Initialize(context.Background())
	seen := recordStatuses(p)

	user, err := p.Register(context.Background(), models.Registration{
		FirstName: "Alice", LastName: "Doe", Email: "alice@example.com", Password: "secret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, testUser(), user)
	require.Empty(t, *seen)
	require.Equal(t, StatusUnauthenticated, p.State().Status)
}

func TestCheckSession_ForcedExpiryPublishesUnauthenticated(t *testing.T) {
	fake := &fakeAuth{LoginUser: testUser(), Authenticated: true}
	p := New(fake, logging.NewNop())
	p.Initialize(context.Background())
	require.NoError(t, p.Login(context.Background(), models.Credentials{Identifier: "a@b.com", Password: "x"}, false))

	seen := recordStatuses(p)

	// token still valid: no publish
	p.CheckSession(context.Background())
	require.Empty(t, *seen)

	// token expired under us
	fake.mu.Lock()
	fake.Authenticated = false
	fake.mu.Unlock()

	p.CheckSession(context.Background())
	require.Equal(t, []Status{StatusUnauthenticated}, *seen)
	require.Nil(t, p.State().User)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	fake := &fakeAuth{}
	p := New(fake, logging.NewNop())

	var calls int
	unsubscribe := p.Subscribe(func(State) { calls++ })
	p.Initialize(context.Background()) // loading + unauthenticated
	require.Equal(t, 2, calls)

	unsubscribe()
	require.NoError(t, p.Logout(context.Background()))
	require.Equal(t, 2, calls)
}
