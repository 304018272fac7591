// Package common defines shared constants and sentinel errors used across
// client and server layers of worklog. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Credential store errors.
	ErrDuplicateUser     = errors.New("user already exists")
	ErrUnknownUser       = errors.New("unknown user")
	ErrCredentialCorrupt = errors.New("credential record corrupt")

	// Authentication errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordMismatch   = errors.New("password and confirmation do not match")
	ErrEmptyField         = errors.New("required field is empty")

	// Session state machine errors.
	ErrStartWithoutSelection  = errors.New("no activity type selected")
	ErrNoActiveSession        = errors.New("no activity in progress")
	ErrSessionInProgress      = errors.New("an activity is already in progress")
	ErrUnknownActivityType    = errors.New("unknown activity type")
	ErrNotAuthenticated       = errors.New("not logged in")
	ErrSessionClosedElsewhere = errors.New("session was already closed on the backend")

	// Backend errors.
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendRejected    = errors.New("backend rejected request")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
)
