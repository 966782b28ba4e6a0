package service

import "errors"

var (
	// ErrInvalidRequest is returned for malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTOTPNotReady is returned before a TOTP secret has been loaded or created.
	ErrTOTPNotReady = errors.New("totp secret not initialised")

	// ErrKeyAlreadyRetired is returned when retiring a key twice.
	ErrKeyAlreadyRetired = errors.New("signing key already retired")

	// ErrSigningFailed is returned when the active key could not produce a
	// signature.
	ErrSigningFailed = errors.New("signing failed")

	// ErrAlertAcknowledged is returned when acknowledging an alert twice.
	ErrAlertAcknowledged = errors.New("alert already acknowledged")

	// ErrAlertResolved is returned when changing an alert that is resolved.
	ErrAlertResolved = errors.New("alert already resolved")
)
