package errors

import "github.com/pkg/errors"

var (
	// session errors
	ErrSessionNotFound = errors.New("no session for account")
	ErrSessionNotReady = errors.New("session is not ready")

	// scan errors
	ErrScanInProgress = errors.New("scan already in progress for account")

	// responder errors
	ErrEmptyCompletion = errors.New("completion service returned no choices")
)
