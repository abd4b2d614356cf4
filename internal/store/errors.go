package store

import "errors"

// Sentinel errors returned by the repositories so callers can map them to
// HTTP responses with errors.Is.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrEmailTaken           = errors.New("email already in use")
)
