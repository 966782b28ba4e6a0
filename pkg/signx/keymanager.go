package signx

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoActiveKey is returned when the manager has no key allowed to sign.
var ErrNoActiveKey = errors.New("signx: no active signing key")

// KeyManager tracks the single active signer and the set of all
// verification keys. Retired keys stay in the KeySet forever.
type KeyManager struct {
	mu     sync.RWMutex
	active Signer
	keys   *KeySet
}

// NewKeyManager returns a manager with no keys.
func NewKeyManager() *KeyManager {
	return &KeyManager{keys: NewKeySet()}
}

// Active returns the current signer.
func (km *KeyManager) Active() (Signer, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()
	if km.active == nil {
		return nil, ErrNoActiveKey
	}
	return km.active, nil
}

// Activate makes s the signer and registers its public key. Whatever was
// active before remains available for verification only.
func (km *KeyManager) Activate(s Signer) error {
	if s == nil {
		return errors.New("signx: signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.keys.AddSigner(s); err != nil {
		return fmt.Errorf("signx: add signer to keyset: %w", err)
	}
	km.active = s
	return nil
}

// Deactivate stops kid from signing. It is a no-op when kid is not active.
func (km *KeyManager) Deactivate(kid string) {
	km.mu.Lock()
	defer km.mu.Unlock()
	if km.active != nil && km.active.KID() == kid {
		km.active = nil
	}
}

// IsReady reports whether an active signer is loaded.
func (km *KeyManager) IsReady() bool {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.active != nil
}

// KeySet exposes every known verification key.
func (km *KeyManager) KeySet() *KeySet {
	return km.keys
}

// Verify checks sig over digest against any known key, active or retired.
func (km *KeyManager) Verify(kid string, digest, sig []byte) bool {
	return km.keys.Verify(kid, digest, sig)
}
