package panel

import (
	"errors"
	"fmt"
)

// Kind classifies an API failure so callers can react without string matching.
type Kind int

const (
	// KindNetwork covers DNS, connect, TLS, timeout and malformed-stream
	// failures below the HTTP layer.
	KindNetwork Kind = iota + 1
	// KindServer is any non-2xx response other than 401, carrying the
	// message extracted from the body.
	KindServer
	// KindUnauthorized is an HTTP 401; callers should trigger re-login.
	KindUnauthorized
	// KindProtocol is a 2xx response missing a required field.
	KindProtocol
	// KindLocal is a persisted-state or version-lookup failure raised on
	// the client side, never by the server.
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindUnauthorized:
		return "unauthorized"
	case KindProtocol:
		return "protocol"
	case KindLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is checks.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenMissing = errors.New("token not returned")
)

// APIError is the failure type returned by every client operation.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.StatusCode != 0 {
			return fmt.Sprintf("panel: %s (status %d)", e.Message, e.StatusCode)
		}
		return fmt.Sprintf("panel: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("panel: %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("panel: %s error", e.Kind)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// DisplayMessage returns the human-facing message for UI layers.
func (e *APIError) DisplayMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

// networkError wraps a transport-level failure with its underlying cause.
func networkError(op string, err error) *APIError {
	return &APIError{
		Kind:    KindNetwork,
		Message: fmt.Sprintf("%s request failed", op),
		Err:     err,
	}
}

// localError wraps a client-side state or lookup failure.
func localError(msg string, err error) *APIError {
	return &APIError{
		Kind:    KindLocal,
		Message: msg,
		Err:     err,
	}
}

// LocalError exposes localError to packages coordinating persisted state.
func LocalError(msg string, err error) *APIError {
	return localError(msg, err)
}
