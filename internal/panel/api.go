package panel

import (
	"context"
	"encoding/json"
	"net/http"
)

// Login exchanges credentials plus device identity for a session token.
// A 2xx response without a token is a protocol violation, never a success.
func (c *Client) Login(ctx context.Context, username, password, deviceID, appVersion string) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/login", "", loginRequest{
		Username:   username,
		Password:   password,
		DeviceID:   deviceID,
		AppVersion: appVersion,
	})
	if err != nil {
		return "", err
	}
	if !success(status) {
		return "", fail(status, body)
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil || lr.Token == "" {
		return "", &APIError{
			Kind:       KindProtocol,
			StatusCode: status,
			Message:    "token not returned",
			Err:        ErrTokenMissing,
		}
	}

	return lr.Token, nil
}

// Status fetches the account snapshot for the given session token.
func (c *Client) Status(ctx context.Context, token string) (*StatusSnapshot, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/status", token, nil)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, fail(status, body)
	}

	snap, err := parseStatus(body)
	if err != nil {
		return nil, networkError("GET /api/status", err)
	}
	return snap, nil
}

// Keepalive tells the panel the session is still in use. A 401 resolves as
// ErrUnauthorized so callers can trigger a fresh login.
func (c *Client) Keepalive(ctx context.Context, token string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/api/keepalive", token, struct{}{})
	if err != nil {
		return err
	}
	if !success(status) {
		return fail(status, body)
	}
	return nil
}

// Logout invalidates the session token server-side. The request carries no
// body.
func (c *Client) Logout(ctx context.Context, token string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/api/logout", token, nil)
	if err != nil {
		return err
	}
	if !success(status) {
		return fail(status, body)
	}
	return nil
}

// UpdatePromptSeen acknowledges that the update prompt was shown.
func (c *Client) UpdatePromptSeen(ctx context.Context, token string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/api/update-prompt-seen", token, struct{}{})
	if err != nil {
		return err
	}
	if !success(status) {
		return fail(status, body)
	}
	return nil
}

// ReportUpdate reports the app version now running on this device.
func (c *Client) ReportUpdate(ctx context.Context, token, newVersion string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/api/report-update", token, reportUpdateRequest{
		NewVersion: newVersion,
	})
	if err != nil {
		return err
	}
	if !success(status) {
		return fail(status, body)
	}
	return nil
}

// UpdateFCMToken registers the device's push token with the panel.
func (c *Client) UpdateFCMToken(ctx context.Context, token, fcmToken string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/api/update-fcm-token", token, fcmTokenRequest{
		FCMToken: fcmToken,
	})
	if err != nil {
		return err
	}
	if !success(status) {
		return fail(status, body)
	}
	return nil
}
