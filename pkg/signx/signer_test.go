package signx_test

import (
	"crypto/sha256"
	"testing"

	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	"github.com/stretchr/testify/require"
)

var algorithms = []string{cryptox.AlgEdDSA, cryptox.AlgES256, cryptox.AlgPS256}

func digestOf(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

func TestSignAndVerify(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg, func(t *testing.T) {
			t.Parallel()

			s, _, err := signx.Generate("kid-"+alg, alg)
			require.NoError(t, err)
			require.Equal(t, alg, s.Alg())
			require.Equal(t, "kid-"+alg, s.KID())

			ks := signx.NewKeySet()
			require.NoError(t, ks.AddSigner(s))

			digest := digestOf("Login attempt")
			sig, err := s.SignDigest(digest)
			require.NoError(t, err)
			require.NotEmpty(t, sig)

			require.True(t, ks.Verify(s.KID(), digest, sig))
			require.False(t, ks.Verify(s.KID(), digestOf("Login attempt!"), sig), "different digest")
			require.False(t, ks.Verify("unknown", digest, sig), "unknown kid")

			tampered := append([]byte(nil), sig...)
			tampered[len(tampered)/2] ^= 0x01
			require.False(t, ks.Verify(s.KID(), digest, tampered), "tampered signature")
		})
	}
}

func TestSignatureDoesNotVerifyUnderAnotherKey(t *testing.T) {
	a, _, err := signx.Generate("a", cryptox.AlgEdDSA)
	require.NoError(t, err)
	b, _, err := signx.Generate("b", cryptox.AlgEdDSA)
	require.NoError(t, err)

	ks := signx.NewKeySet()
	require.NoError(t, ks.AddSigner(a))
	require.NoError(t, ks.AddSigner(b))

	digest := digestOf("payload")
	sig, err := a.SignDigest(digest)
	require.NoError(t, err)

	require.True(t, ks.Verify("a", digest, sig))
	require.False(t, ks.Verify("b", digest, sig))
}

func TestNewSigner_RejectsMismatchedKey(t *testing.T) {
	privPEM, err := cryptox.GenerateKey(cryptox.AlgEdDSA)
	require.NoError(t, err)

	_, err = signx.NewSigner("kid", cryptox.AlgES256, privPEM)
	require.ErrorIs(t, err, signx.ErrKeyMismatch)

	_, err = signx.NewSigner("kid", "RS512", privPEM)
	require.ErrorIs(t, err, signx.ErrUnsupportedAlgorithm)
}

func TestJWKRoundTrip(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg, func(t *testing.T) {
			t.Parallel()

			s, _, err := signx.Generate("kid", alg)
			require.NoError(t, err)

			pemStr, err := s.PublicJWK().PEM()
			require.NoError(t, err)
			require.Equal(t, s.PublicKeyPEM(), pemStr)

			// A verifier that only has the JWKS document can check signatures.
			ks, err := signx.KeySetFromJWKS(signx.JWKS{Keys: []signx.JWK{s.PublicJWK()}})
			require.NoError(t, err)

			digest := digestOf("offline")
			sig, err := s.SignDigest(digest)
			require.NoError(t, err)
			require.True(t, ks.Verify("kid", digest, sig))
		})
	}
}

func TestFingerprint(t *testing.T) {
	s, _, err := signx.Generate("kid", cryptox.AlgEdDSA)
	require.NoError(t, err)

	fp1, err := signx.Fingerprint(s.PublicKeyPEM())
	require.NoError(t, err)
	fp2, err := signx.Fingerprint(s.PublicKeyPEM())
	require.NoError(t, err)
	require.Len(t, fp1, 64)
	require.Equal(t, fp1, fp2)

	_, err = signx.Fingerprint("garbage")
	require.Error(t, err)
}
