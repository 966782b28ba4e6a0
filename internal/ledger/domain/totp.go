package domain

import "time"

// TOTPSecret is the shared secret that authorises signing operations.
// Only one secret exists at a time; regeneration replaces it.
type TOTPSecret struct {
	SecretEncrypted []byte
	Period          uint // seconds per step
	Digits          int
	Algorithm       string // SHA1, SHA256 or SHA512
	LastUsedStep    int64  // highest step consumed by a supplied code
	CreatedAt       time.Time
}
