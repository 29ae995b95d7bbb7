// Package auth bridges the panel API client to persisted device state and
// exposes the caller-facing login / sync / report operations.
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/sobhan-h/subpanel-client/internal/panel"
	"github.com/sobhan-h/subpanel-client/internal/store"
)

// DefaultVersion is reported when the installed version cannot be resolved.
// A transient lookup failure therefore produces one spurious report once the
// lookup recovers; the panel treats repeated reports as idempotent.
const DefaultVersion = "0.0.0"

// VersionLookup resolves the version of the app running on this device.
type VersionLookup func() (string, error)

// Coordinator orchestrates login, status refresh and conditional version
// reporting over a Store and a panel Client.
type Coordinator struct {
	store   store.Store
	client  *panel.Client
	version VersionLookup
	now     func() time.Time
	log     *slog.Logger
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithVersionLookup sets how the current app version is resolved.
func WithVersionLookup(v VersionLookup) Option {
	return func(c *Coordinator) { c.version = v }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// New builds a Coordinator.
func New(st store.Store, client *panel.Client, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  st,
		client: client,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// appVersion resolves the installed version, collapsing every failure to
// DefaultVersion. It never returns an error to its caller.
func (c *Coordinator) appVersion() string {
	if c.version == nil {
		return DefaultVersion
	}
	v, err := c.version()
	if err != nil || v == "" {
		c.log.Debug("version lookup failed, using fallback",
			"fallback", DefaultVersion, "error", err)
		return DefaultVersion
	}
	return v
}

// Login authenticates with the panel using the persisted device identity and
// the resolved app version. On success the token is persisted and, on the
// very first login of this install, the first-login timestamp is stamped for
// day accounting.
func (c *Coordinator) Login(ctx context.Context, username, password string) (string, error) {
	deviceID, err := c.store.DeviceID()
	if err != nil {
		return "", panel.LocalError("failed to read device identity", err)
	}

	token, err := c.client.Login(ctx, username, password, deviceID, c.appVersion())
	if err != nil {
		return "", err
	}

	if err := c.store.SetToken(token); err != nil {
		c.log.Warn("failed to persist session token", "error", err)
	}
	if _, ok, err := c.store.FirstLogin(); err == nil && !ok {
		if err := c.store.SetFirstLogin(c.now().UnixMilli()); err != nil {
			c.log.Warn("failed to record first login", "error", err)
		}
	}

	return token, nil
}

// Status fetches the account snapshot. Pass-through to the API client.
func (c *Coordinator) Status(ctx context.Context, token string) (*panel.StatusSnapshot, error) {
	return c.client.Status(ctx, token)
}

// Keepalive pings the panel. ErrUnauthorized surfaces unchanged so callers
// can trigger a fresh login.
func (c *Coordinator) Keepalive(ctx context.Context, token string) error {
	return c.client.Keepalive(ctx, token)
}

// UpdatePromptSeen acknowledges the update prompt. Pass-through.
func (c *Coordinator) UpdatePromptSeen(ctx context.Context, token string) error {
	return c.client.UpdatePromptSeen(ctx, token)
}

// UpdateFCMToken registers a push token. Pass-through.
func (c *Coordinator) UpdateFCMToken(ctx context.Context, token, fcmToken string) error {
	return c.client.UpdateFCMToken(ctx, token, fcmToken)
}

// Logout invalidates the session server-side and always clears the locally
// persisted token, even when the server call fails.
func (c *Coordinator) Logout(ctx context.Context, token string) error {
	err := c.client.Logout(ctx, token)
	if clearErr := c.store.ClearToken(); clearErr != nil {
		c.log.Warn("failed to clear persisted token", "error", clearErr)
	}
	return err
}

// ReportAppUpdateIfNeeded reports the current app version unless it was
// already reported. The persisted last-reported version is updated if and
// only if a report call both executed and succeeded, so a failed report
// retries on the next call.
func (c *Coordinator) ReportAppUpdateIfNeeded(ctx context.Context, token string) (bool, error) {
	current := c.appVersion()

	last, ok, err := c.store.LastReportedVersion()
	if err != nil {
		return false, panel.LocalError("failed to read last reported version", err)
	}
	if ok && last == current {
		return false, nil
	}

	if err := c.client.ReportUpdate(ctx, token, current); err != nil {
		return false, err
	}

	if err := c.store.SetLastReportedVersion(current); err != nil {
		return false, panel.LocalError("failed to persist reported version", err)
	}

	c.log.Info("reported app update", "version", current)
	return true, nil
}

// LoginAsync resolves with the session token or a typed failure.
func (c *Coordinator) LoginAsync(ctx context.Context, username, password string) <-chan panel.Result[string] {
	return panel.Async(func() (string, error) {
		return c.Login(ctx, username, password)
	})
}

// StatusAsync resolves with the account snapshot or a typed failure.
func (c *Coordinator) StatusAsync(ctx context.Context, token string) <-chan panel.Result[*panel.StatusSnapshot] {
	return panel.Async(func() (*panel.StatusSnapshot, error) {
		return c.Status(ctx, token)
	})
}

// ReportAppUpdateIfNeededAsync resolves with whether a report was issued.
func (c *Coordinator) ReportAppUpdateIfNeededAsync(ctx context.Context, token string) <-chan panel.Result[bool] {
	return panel.Async(func() (bool, error) {
		return c.ReportAppUpdateIfNeeded(ctx, token)
	})
}
