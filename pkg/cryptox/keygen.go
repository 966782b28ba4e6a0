package cryptox

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// Supported signing algorithms, named after their JOSE identifiers.
const (
	AlgEdDSA = "EdDSA"
	AlgES256 = "ES256"
	AlgPS256 = "PS256"
)

// RSAKeyBits is the modulus size used for PS256 keys.
const RSAKeyBits = 3072

var ErrUnsupportedAlgorithm = errors.New("cryptox: unsupported algorithm")

// GenerateKey creates a fresh private key for alg and returns it PKCS8 PEM encoded.
func GenerateKey(alg string) ([]byte, error) {
	var (
		priv crypto.Signer
		err  error
	)

	switch alg {
	case AlgEdDSA:
		_, priv, err = ed25519.GenerateKey(rand.Reader)
	case AlgES256:
		priv, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case AlgPS256:
		priv, err = rsa.GenerateKey(rand.Reader, RSAKeyBits)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate %s key: %w", alg, err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// ParsePrivateKey decodes a PKCS8 (or legacy PKCS1 RSA) PEM private key.
func ParsePrivateKey(pemBytes []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("cryptox: invalid PEM data")
	}

	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to parse private key: %w", err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("cryptox: private key of type %T cannot sign", key)
	}
	return signer, nil
}

// PublicKeyPEM returns the PKIX PEM encoding of the signer's public half.
func PublicKeyPEM(priv crypto.Signer) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(priv.Public())
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// ParsePublicKey decodes a PKIX PEM public key.
func ParsePublicKey(pemStr string) (crypto.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("cryptox: invalid PEM data")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to parse public key: %w", err)
	}
	return pub, nil
}
