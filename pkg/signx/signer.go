package signx

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnsupportedAlgorithm = errors.New("signx: unsupported algorithm")
	ErrKeyMismatch          = errors.New("signx: key type does not match algorithm")
	ErrBadSignature         = errors.New("signx: signature verification failed")
)

// Signer signs ledger digests. The software implementation below keeps the
// private key in memory; anything that satisfies this interface (an HSM
// client, say) can be activated in a KeyManager instead.
type Signer interface {
	Alg() string
	KID() string
	SignDigest(digest []byte) ([]byte, error)
	PublicKeyPEM() string
	PublicJWK() JWK
}

// signingMethod maps our algorithm names onto golang-jwt signing methods.
func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case cryptox.AlgEdDSA:
		return jwt.SigningMethodEdDSA, nil
	case cryptox.AlgES256:
		return jwt.SigningMethodES256, nil
	case cryptox.AlgPS256:
		return jwt.SigningMethodPS256, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}

// signingInput is the string actually signed: the lowercase hex of the digest.
func signingInput(digest []byte) string {
	return hex.EncodeToString(digest)
}

// checkKeyType makes sure the key fits alg before jwt gets a chance to
// return a less helpful ErrInvalidKeyType.
func checkKeyType(alg string, pub crypto.PublicKey) error {
	var ok bool
	switch alg {
	case cryptox.AlgEdDSA:
		_, ok = pub.(ed25519.PublicKey)
	case cryptox.AlgES256:
		var k *ecdsa.PublicKey
		if k, ok = pub.(*ecdsa.PublicKey); ok {
			ok = k.Curve.Params().Name == "P-256"
		}
	case cryptox.AlgPS256:
		_, ok = pub.(*rsa.PublicKey)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	if !ok {
		return fmt.Errorf("%w: %s with %T", ErrKeyMismatch, alg, pub)
	}
	return nil
}

type softSigner struct {
	kid    string
	alg    string
	method jwt.SigningMethod
	key    crypto.Signer
	pubPEM string
	jwk    JWK
}

// NewSigner loads a PKCS8 PEM private key as a software Signer for alg.
func NewSigner(kid, alg string, privPEM []byte) (Signer, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return nil, err
	}

	key, err := cryptox.ParsePrivateKey(privPEM)
	if err != nil {
		return nil, err
	}
	if err := checkKeyType(alg, key.Public()); err != nil {
		return nil, err
	}

	pubPEM, err := cryptox.PublicKeyPEM(key)
	if err != nil {
		return nil, err
	}
	jwk, err := NewJWK(kid, alg, key.Public())
	if err != nil {
		return nil, err
	}

	return &softSigner{
		kid:    kid,
		alg:    alg,
		method: method,
		key:    key,
		pubPEM: pubPEM,
		jwk:    jwk,
	}, nil
}

// Generate creates a fresh key pair and returns the signer together with the
// private key PEM so the caller can persist it.
func Generate(kid, alg string) (Signer, []byte, error) {
	privPEM, err := cryptox.GenerateKey(alg)
	if err != nil {
		return nil, nil, err
	}
	s, err := NewSigner(kid, alg, privPEM)
	if err != nil {
		return nil, nil, err
	}
	return s, privPEM, nil
}

func (s *softSigner) Alg() string          { return s.alg }
func (s *softSigner) KID() string          { return s.kid }
func (s *softSigner) PublicKeyPEM() string { return s.pubPEM }
func (s *softSigner) PublicJWK() JWK       { return s.jwk }

func (s *softSigner) SignDigest(digest []byte) ([]byte, error) {
	sig, err := s.method.Sign(signingInput(digest), s.key)
	if err != nil {
		return nil, fmt.Errorf("signx: sign with %s: %w", s.kid, err)
	}
	return sig, nil
}

// VerifyDigest checks sig over digest with a public key of algorithm alg.
func VerifyDigest(alg string, pub crypto.PublicKey, digest, sig []byte) error {
	method, err := signingMethod(alg)
	if err != nil {
		return err
	}
	if err := checkKeyType(alg, pub); err != nil {
		return err
	}
	if err := method.Verify(signingInput(digest), sig, pub); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return nil
}
