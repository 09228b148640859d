package domain

import "errors"

var (
	// ErrValidation is returned when a required field is empty after trimming.
	ErrValidation = errors.New("required field is empty")
	// ErrMissingID is returned when an operation targets no record.
	ErrMissingID = errors.New("missing application id")
	// ErrAuthCancelled is returned when the user dismisses the sign-in flow.
	ErrAuthCancelled = errors.New("sign-in was cancelled")
	// ErrMissingTokens is returned when the provider redirect lacks a token.
	ErrMissingTokens = errors.New("tokens missing from provider redirect")
	// ErrRemote is returned when the backend rejects a call, including
	// ownership failures.
	ErrRemote = errors.New("rejected by backend")
	// ErrNotFound is returned when something is not found
	ErrNotFound = errors.New("item not found")
	// ErrUnknown is the fallback for failures outside the taxonomy.
	ErrUnknown = errors.New("unknown error")
)
