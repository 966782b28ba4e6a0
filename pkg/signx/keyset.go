package signx

import (
	"crypto"
	"errors"
	"sort"
	"sync"

	"github.com/aussiebroadwan/aegis/pkg/cryptox"
)

var ErrNoKey = errors.New("signx: key not found")

// PublicKey is one verification key held by a KeySet.
type PublicKey struct {
	Kid       string
	Algorithm string
	PEM       string
	JWK       JWK
	key       crypto.PublicKey
}

// KeySet holds every public verification key, active or retired. It is
// safe for concurrent use.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]PublicKey)}
}

// AddPEM registers a PKIX PEM public key under kid.
func (k *KeySet) AddPEM(kid, alg, pubPEM string) error {
	pub, err := cryptox.ParsePublicKey(pubPEM)
	if err != nil {
		return err
	}
	if err := checkKeyType(alg, pub); err != nil {
		return err
	}
	jwk, err := NewJWK(kid, alg, pub)
	if err != nil {
		return err
	}

	k.put(PublicKey{Kid: kid, Algorithm: alg, PEM: pubPEM, JWK: jwk, key: pub})
	return nil
}

// AddJWK registers a JWK, typically fetched from a JWKS document.
func (k *KeySet) AddJWK(j JWK) error {
	pub, err := j.PublicKey()
	if err != nil {
		return err
	}
	if err := checkKeyType(j.Alg, pub); err != nil {
		return err
	}
	pemStr, err := j.PEM()
	if err != nil {
		return err
	}

	k.put(PublicKey{Kid: j.Kid, Algorithm: j.Alg, PEM: pemStr, JWK: j, key: pub})
	return nil
}

// AddSigner registers the public half of s.
func (k *KeySet) AddSigner(s Signer) error {
	return k.AddPEM(s.KID(), s.Alg(), s.PublicKeyPEM())
}

func (k *KeySet) put(pk PublicKey) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[pk.Kid] = pk
}

// Get returns the key registered under kid.
func (k *KeySet) Get(kid string) (PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.keys[kid]; ok {
		return pk, nil
	}
	return PublicKey{}, ErrNoKey
}

// Verify reports whether sig is a valid signature over digest by kid.
// Unknown keys verify as false.
func (k *KeySet) Verify(kid string, digest, sig []byte) bool {
	pk, err := k.Get(kid)
	if err != nil {
		return false
	}
	return VerifyDigest(pk.Algorithm, pk.key, digest, sig) == nil
}

// Len returns the number of keys in the set.
func (k *KeySet) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}

// JWKS returns a snapshot of all keys ordered by kid. Kids are ULIDs so this
// is also creation order.
func (k *KeySet) JWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := JWKS{Keys: make([]JWK, 0, len(k.keys))}
	for _, pk := range k.keys {
		out.Keys = append(out.Keys, pk.JWK)
	}
	sort.Slice(out.Keys, func(i, j int) bool { return out.Keys[i].Kid < out.Keys[j].Kid })
	return out
}

// KeySetFromJWKS builds a KeySet from a JWKS document.
func KeySetFromJWKS(jwks JWKS) (*KeySet, error) {
	ks := NewKeySet()
	for _, j := range jwks.Keys {
		if err := ks.AddJWK(j); err != nil {
			return nil, err
		}
	}
	return ks, nil
}
