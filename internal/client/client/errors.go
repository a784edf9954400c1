package client

import "errors"

var (
	// ErrUnavailable is a transport-level failure: retryable, surfaced as a
	// transient banner, never destructive to the lock state.
	ErrUnavailable = errors.New("credential store unavailable")

	// ErrNotFound means no security config exists yet ("setup required").
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized should not occur once primary auth has passed; callers
	// treat it as fatal for the session.
	ErrUnauthorized = errors.New("unauthorized")
)
