package ledger_test

import (
	"bytes"
	"testing"

	"github.com/aussiebroadwan/aegis/internal/ledger/export"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	"github.com/stretchr/testify/require"
)

// TestKeyRotation verifies the key rotation flow:
// 1. A fresh server has exactly one active key
// 2. Rotating activates a new key and retires the old one
// 3. Blocks appended on either side of the rotation carry their own key id
// 4. The whole chain still verifies, including blocks from the retired key
func TestKeyRotation(t *testing.T) {
	client := setupLedgerContainer(t)

	// 1. Initial key
	keys, err := client.ListKeys(t.Context())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.True(t, keys[0].Active)
	first := keys[0].KeyID

	before := submitText(t, client, "before rotation")
	require.Equal(t, first, before[0].SignerKeyID)

	// 2. Rotate
	rot, err := client.RotateKey(t.Context())
	require.NoError(t, err)
	require.NotEqual(t, first, rot.NewKeyID)
	require.Equal(t, first, rot.RetiredKeyID)

	keys, err = client.ListKeys(t.Context())
	require.NoError(t, err)
	require.Len(t, keys, 2)
	for _, k := range keys {
		if k.KeyID == first {
			require.False(t, k.Active)
			require.NotNil(t, k.RetiredAt)
		} else {
			require.True(t, k.Active)
		}
	}

	// 3. New blocks use the new key
	after := submitText(t, client, "after rotation")
	require.Equal(t, rot.NewKeyID, after[0].SignerKeyID)

	// 4. Old and new signatures verify
	assertChainIntact(t, client, 2)

	pub, err := client.GetPublicKey(t.Context(), first)
	require.NoError(t, err)
	require.Equal(t, first, pub.KeyID)
	require.Contains(t, pub.PublicKey, "BEGIN PUBLIC KEY")
}

// TestRetireActiveKey verifies that retiring the active key stops appends
// until the next rotation, and that readiness reports it.
func TestRetireActiveKey(t *testing.T) {
	client := setupLedgerContainer(t)
	submitText(t, client, "signed")

	keys, err := client.ListKeys(t.Context())
	require.NoError(t, err)
	require.NoError(t, client.RetireKey(t.Context(), keys[0].KeyID))

	_, err = client.SubmitLog(t.Context(), ledgersdk.SubmitLogRequest{Payload: "refused", Encoding: ledgersdk.EncodingText})
	assertAPIError(t, err, ledgersdk.ErrorCodeKeyUnavailable)

	_, err = client.GetReadiness(t.Context())
	require.Error(t, err, "readyz should be 503 without an active key")

	err = client.RetireKey(t.Context(), keys[0].KeyID)
	assertAPIError(t, err, ledgersdk.ErrorCodeConflict)

	_, err = client.RotateKey(t.Context())
	require.NoError(t, err)
	submitText(t, client, "signed again")
	assertChainIntact(t, client, 2)
}

// TestExportVerifiesOffline exports a chain spanning a rotation and checks it
// against the published JWKS without asking the server to verify.
func TestExportVerifiesOffline(t *testing.T) {
	client := setupLedgerContainer(t)
	submitText(t, client, "one", "two")
	_, err := client.RotateKey(t.Context())
	require.NoError(t, err)
	submitText(t, client, "three", "four")

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	keySet, err := signx.KeySetFromJWKS(signx.JWKS(*jwks))
	require.NoError(t, err)
	verify := func(digest, sig []byte, kid string) bool { return keySet.Verify(kid, digest, sig) }

	for _, f := range []export.Format{export.FormatJSON, export.FormatJSONL, export.FormatCSV} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, client.Export(t.Context(), &buf, string(f), 0, 0))

			blocks, err := export.Decode(&buf, f)
			require.NoError(t, err)
			require.Len(t, blocks, 4)

			res := export.Verify(blocks, verify)
			require.True(t, res.OK, res.Reason)
			require.Equal(t, uint64(4), res.BlocksChecked)

			blocks[1].Payload = []byte("TWO")
			res = export.Verify(blocks, verify)
			require.False(t, res.OK)
			require.Equal(t, uint64(1), *res.FirstBrokenIndex)
		})
	}

	var partial bytes.Buffer
	require.NoError(t, client.Export(t.Context(), &partial, "jsonl", 2, 4))
	blocks, err := export.Decode(&partial, export.FormatJSONL)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.True(t, export.Verify(blocks, verify).OK)

	err = client.Export(t.Context(), &bytes.Buffer{}, "xml", 0, 0)
	assertAPIError(t, err, ledgersdk.ErrorCodeInvalidRequest)
}

// TestAdminEndpointsRequireToken verifies admin operations reject clients
// without the bearer token while reads stay public.
func TestAdminEndpointsRequireToken(t *testing.T) {
	lc := startLedger(t, nil)
	anon := ledgersdk.NewClient(lc.baseURL(t))

	_, err := anon.RotateKey(t.Context())
	assertAPIError(t, err, ledgersdk.ErrorCodeUnauthorized)

	_, err = anon.CurrentTOTP(t.Context())
	assertAPIError(t, err, ledgersdk.ErrorCodeUnauthorized)

	_, err = anon.ListKeys(t.Context())
	require.NoError(t, err)

	_, err = anon.Head(t.Context())
	require.NoError(t, err)
}
