package domain

import "time"

// SigningKey is a signer identity stored with its private half encrypted at rest.
// Keys are retired rather than deleted so historical blocks remain verifiable.
type SigningKey struct {
	Kid                 string     // ULID, monotonically assigned
	Algorithm           string     // EdDSA, ES256 or PS256
	PublicKeyPEM        string     // PKIX PEM
	PrivateKeyEncrypted []byte     // AES-256-GCM encrypted PKCS8 PEM
	CreatedAt           time.Time  // When the key was created
	RetiredAt           *time.Time // When the key stopped signing (nil = active)
}

// IsActive returns true if the key may still sign.
func (k *SigningKey) IsActive() bool {
	return k.RetiredAt == nil
}

// Age returns how long the key has existed.
func (k *SigningKey) Age(now time.Time) time.Duration {
	return now.Sub(k.CreatedAt)
}
