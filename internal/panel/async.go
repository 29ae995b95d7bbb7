package panel

import "context"

// Result pairs an operation's value with its failure. Exactly one Result is
// ever delivered per call.
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs fn in its own goroutine and delivers its outcome on a buffered
// channel, so the caller's goroutine is never blocked and the result is
// never lost even if nobody is receiving yet.
func Async[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		v, err := fn()
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// AsyncErr is Async for operations with no success payload.
func AsyncErr(fn func() error) <-chan Result[struct{}] {
	return Async(func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// LoginAsync resolves with the session token or a typed failure.
func (c *Client) LoginAsync(ctx context.Context, username, password, deviceID, appVersion string) <-chan Result[string] {
	return Async(func() (string, error) {
		return c.Login(ctx, username, password, deviceID, appVersion)
	})
}

// StatusAsync resolves with the account snapshot or a typed failure.
func (c *Client) StatusAsync(ctx context.Context, token string) <-chan Result[*StatusSnapshot] {
	return Async(func() (*StatusSnapshot, error) {
		return c.Status(ctx, token)
	})
}

// KeepaliveAsync resolves once the keepalive round trip finishes.
func (c *Client) KeepaliveAsync(ctx context.Context, token string) <-chan Result[struct{}] {
	return AsyncErr(func() error { return c.Keepalive(ctx, token) })
}

// LogoutAsync resolves once the logout round trip finishes.
func (c *Client) LogoutAsync(ctx context.Context, token string) <-chan Result[struct{}] {
	return AsyncErr(func() error { return c.Logout(ctx, token) })
}

// UpdatePromptSeenAsync resolves once the acknowledgement finishes.
func (c *Client) UpdatePromptSeenAsync(ctx context.Context, token string) <-chan Result[struct{}] {
	return AsyncErr(func() error { return c.UpdatePromptSeen(ctx, token) })
}

// ReportUpdateAsync resolves once the version report finishes.
func (c *Client) ReportUpdateAsync(ctx context.Context, token, newVersion string) <-chan Result[struct{}] {
	return AsyncErr(func() error { return c.ReportUpdate(ctx, token, newVersion) })
}

// UpdateFCMTokenAsync resolves once the push-token registration finishes.
func (c *Client) UpdateFCMTokenAsync(ctx context.Context, token, fcmToken string) <-chan Result[struct{}] {
	return AsyncErr(func() error { return c.UpdateFCMToken(ctx, token, fcmToken) })
}
