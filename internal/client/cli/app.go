// Package cli is a REPL front end over the session provider. It stands in
// for the catalog UI: every command goes through the provider or the auth
// service, never around them.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/nkiryanov/streamcat/internal/client/api"
	"github.com/nkiryanov/streamcat/internal/client/auth"
	"github.com/nkiryanov/streamcat/internal/client/config"
	"github.com/nkiryanov/streamcat/internal/client/provider"
	"github.com/nkiryanov/streamcat/internal/client/session"
	"github.com/nkiryanov/streamcat/internal/logging"
)

type App struct {
	config   *config.Config
	store    *session.BoltStore
	auth     *auth.Service
	provider *provider.Provider
	log      logging.Logger
	reader   *bufio.Reader
}

// NewApp wires the client stack: bbolt session store, REST client reading
// the bearer token from the store, auth service, and the session provider on
// top.
func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	store, err := session.OpenBoltStore(cfg.SessionDBPath)
	if err != nil {
		return nil, err
	}

	apiClient := api.New(api.Config{
		BaseURL: cfg.ServerBaseURL,
		Timeout: cfg.RequestTimeout,
	}, store, log)

	authService := auth.New(apiClient, store, log)
	sessionProvider := provider.New(authService, log)

	return &App{
		config:   cfg,
		store:    store,
		auth:     authService,
		provider: sessionProvider,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

// Run initializes the session, starts the expiry watcher, and enters the
// REPL. Blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	a.provider.Initialize(ctx)

	watcherCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.provider.StartSessionWatcher(watcherCtx, a.config.SessionCheckInterval)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.provider.State().Status == provider.StatusAuthenticated
}

// status renders the prompt suffix, e.g. "(alice authenticated)".
func (a *App) status() string {
	st := a.provider.State()
	s := string(st.Status)
	if st.User != nil {
		s = st.User.Username + " " + s
	}
	return "(" + s + ")"
}
