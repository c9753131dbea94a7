package auth

import (
	"errors"
	"fmt"
)

// Terminal outcomes of the device authorization flow. The command layer
// turns these into user-facing diagnostics; nothing below it prints.
var (
	ErrAuthorizationExpired  = errors.New("authorization expired")
	ErrAuthorizationDenied   = errors.New("authorization denied")
	ErrAuthorizationTimedOut = errors.New("authorization timed out")

	// ErrDeviceFlowNotSupported means the issuer metadata does not
	// advertise a device authorization endpoint. This is a configuration
	// problem and is never retried.
	ErrDeviceFlowNotSupported = errors.New("issuer does not support the device authorization grant")
)

// Expected polling states, never surfaced past the polling loop.
var (
	errAuthorizationPending = errors.New("authorization pending")
	errSlowDown             = errors.New("slow down")
)

// HTTPError is returned for non-2xx responses from the issuer. The raw
// body is kept so OAuth error codes can be recovered from servers that do
// not return conforming JSON.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Body)
}
