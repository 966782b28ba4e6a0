package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the ledger. Callers match these with errors.Is; the
// concrete error usually wraps one of them with more context.
var (
	// ErrAuthentication is returned for a wrong, expired or replayed TOTP code.
	// Recoverable: the caller retries with a fresh code.
	ErrAuthentication = errors.New("ledger: totp authentication failed")

	// ErrKeyUnavailable is returned when no active signing key exists.
	// Appends fail until an operator rotates keys.
	ErrKeyUnavailable = errors.New("ledger: no active signing key")

	// ErrIntegrityViolation marks a hash, linkage or signature mismatch found
	// during verification. Never auto-repaired.
	ErrIntegrityViolation = errors.New("ledger: integrity violation")

	// ErrOutOfRange is returned for range queries outside the chain.
	ErrOutOfRange = errors.New("ledger: range out of bounds")

	// ErrStorage is returned when a durable write fails. The chain stays valid
	// up to the last persisted block.
	ErrStorage = errors.New("ledger: storage failure")
)

// IntegrityViolation describes the first broken block found by a verification pass.
type IntegrityViolation struct {
	Index  uint64
	Reason string
}

func (e *IntegrityViolation) Error() string {
	return fmt.Sprintf("ledger: integrity violation at block %d: %s", e.Index, e.Reason)
}

// Is lets errors.Is(err, ErrIntegrityViolation) match.
func (e *IntegrityViolation) Is(target error) bool {
	return target == ErrIntegrityViolation
}
