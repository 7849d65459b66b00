package model

import (
	"errors"
)

var (
	// ErrToolUnavailable is returned by Submit/Collect when no worker exists
	// for the requested tool kind.
	ErrToolUnavailable = errors.New("tool unavailable")
	// ErrManagerStopped is returned by Submit/Collect once Shutdown has been
	// requested.
	ErrManagerStopped = errors.New("manager stopped")
	// ErrNoResult means Collect waited for its full timeout without a result
	// becoming available. It is an expected outcome, not a fault.
	ErrNoResult = errors.New("no result within timeout")
	// ErrInvalidEmail is returned when a query does not look like an email
	// address.
	ErrInvalidEmail = errors.New("invalid email address")
)
