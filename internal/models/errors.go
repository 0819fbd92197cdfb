package models

import "errors"

// Custom errors
var (
	ErrProviderUnavailable = errors.New("external provider unavailable")
	ErrProviderTimeout     = errors.New("external provider timed out")
	ErrMalformedResponse   = errors.New("malformed provider response")
	ErrRosterEmpty         = errors.New("roster index is empty")
	ErrNotFound            = errors.New("record not found")
)
