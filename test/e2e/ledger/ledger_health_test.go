package ledger_test

import (
	"testing"

	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	client := setupLedgerContainer(t)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

// TestReadyzEndpoint verifies a fresh server is ready to append: the store
// answers, a first signing key was generated and the TOTP secret exists.
func TestReadyzEndpoint(t *testing.T) {
	client := setupLedgerContainer(t)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, ledgersdk.HealthChecks{Store: "ok", Signer: "ok", TOTP: "ok"}, *health.Checks)
}

// TestJWKSEndpoint verifies the first signing key is published.
func TestJWKSEndpoint(t *testing.T) {
	client := setupLedgerContainer(t)

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)

	t.Logf("JWKS key: kid=%s alg=%s", jwks.Keys[0].Kid, jwks.Keys[0].Alg)
}
