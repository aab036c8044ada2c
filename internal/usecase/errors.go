package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrNotConfigured     = errors.New("spond is not configured")
	ErrSyncInProgress    = errors.New("a sync run is already in progress")
	ErrRemoteAuthFailure = errors.New("spond authentication failed")
	ErrRemoteUnavailable = errors.New("spond is unavailable")
)
