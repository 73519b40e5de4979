package models

import "github.com/cockroachdb/errors"

// Error classes. Components mark wrapped errors with these so callers can classify them with errors.Is.
var (
	ErrLoginFailed    = errors.New("login failed")
	ErrSearchFailed   = errors.New("search failed")
	ErrFetchFailed    = errors.New("fetch failed")
	ErrParseFailed    = errors.New("parse failed")
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrStopTimeout    = errors.New("worker did not stop in time")
	ErrNotConfigured  = errors.New("not configured")
	ErrInvalidConfig  = errors.New("invalid configuration")
)
