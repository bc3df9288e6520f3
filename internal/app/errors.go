package app

import (
	"errors"
	"time"
)

var (
	// ErrStoreUnavailable wraps every record store failure that aborts a request or tick.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrDispatchFailed wraps a failed or timed-out send.
	ErrDispatchFailed = errors.New("dispatch failed")
	// ErrAdminNotAuthorized is returned when a non-admin calls an admin operation.
	ErrAdminNotAuthorized = errors.New("performing user is not authorized as an admin")
	// ErrInvalidHearing is returned for admin input that cannot become a record.
	ErrInvalidHearing = errors.New("invalid hearing")
)

// Clock returns the current time in the office's time zone.
type Clock func() time.Time
