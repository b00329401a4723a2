package profile

import "errors"

// Sentinel kinds for profile store errors.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)
