// Package store persists the device's panel identity: device id, session
// token, first-login timestamp, and the last app version reported upstream.
package store

import "github.com/google/uuid"

// Store is the narrow persistence capability the coordinator depends on.
// Timestamps are Unix milliseconds. The boolean returns distinguish "never
// recorded" from a present zero value.
type Store interface {
	DeviceID() (string, error)

	Token() (string, error)
	SetToken(token string) error
	ClearToken() error

	FirstLogin() (int64, bool, error)
	SetFirstLogin(millis int64) error

	LastReportedVersion() (string, bool, error)
	SetLastReportedVersion(version string) error
}

// newDeviceID mints a fresh device identifier. Generated once per install
// and persisted forever after.
func newDeviceID() string {
	return uuid.NewString()
}
