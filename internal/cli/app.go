// Package cli wires configuration, the credential store, the panel client
// and the coordinator together for the command front-end.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sobhan-h/subpanel-client/internal/auth"
	"github.com/sobhan-h/subpanel-client/internal/config"
	"github.com/sobhan-h/subpanel-client/internal/panel"
	"github.com/sobhan-h/subpanel-client/internal/store"
)

// ErrNotLoggedIn is returned by commands that need a session when none is
// persisted.
var ErrNotLoggedIn = errors.New("not logged in, run 'subctl login' first")

// App is everything a command action needs.
type App struct {
	Config *config.Config
	Store  *store.FileStore
	Client *panel.Client
	Auth   *auth.Coordinator
	Log    *slog.Logger
}

// Bootstrap loads configuration, opens the state store and builds the client
// stack. buildVersion is the version compiled into this binary; the
// SUBPANEL_APP_VERSION variable overrides it.
func Bootstrap(buildVersion string, debug bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if debug || cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	dir, err := cfg.ResolveStateDir()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	client := panel.New(cfg, panel.WithLogger(log))

	lookup := func() (string, error) {
		if cfg.AppVersion != "" {
			return cfg.AppVersion, nil
		}
		return buildVersion, nil
	}

	coord := auth.New(st, client,
		auth.WithVersionLookup(lookup),
		auth.WithLogger(log),
	)

	return &App{
		Config: cfg,
		Store:  st,
		Client: client,
		Auth:   coord,
		Log:    log,
	}, nil
}

// SessionToken returns the persisted session token or ErrNotLoggedIn.
func (a *App) SessionToken() (string, error) {
	token, err := a.Store.Token()
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}
