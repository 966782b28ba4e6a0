package ledger_test

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestAppendAndVerify verifies the basic flow:
// 1. An empty chain has head index -1
// 2. Appends are numbered from 0 and hash-linked
// 3. The head tracks the last block
// 4. A full verification passes
func TestAppendAndVerify(t *testing.T) {
	client := setupLedgerContainer(t)

	// 1. Empty chain
	head, err := client.Head(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(-1), head.Index)

	// 2. Append three records
	blocks := submitText(t, client, "user=alice action=login", "user=bob action=logout", "user=carol action=export")
	require.Equal(t, strings.Repeat("0", 64), blocks[0].PreviousHash)
	for i := 1; i < len(blocks); i++ {
		require.Equal(t, uint64(i), blocks[i].Index)
		require.Equal(t, blocks[i-1].BlockHash, blocks[i].PreviousHash)
	}

	// 3. Head matches the last block
	head, err = client.Head(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(2), head.Index)
	require.Equal(t, blocks[2].BlockHash, head.BlockHash)

	// 4. Verification
	assertChainIntact(t, client, 3)

	trail, err := client.Trail(t.Context())
	require.NoError(t, err)
	require.Equal(t, uint64(3), trail.BlockCount)
	require.Equal(t, head.BlockHash, trail.HeadHash)

	stats, err := client.Stats(t.Context(), 5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, stats.Total, 1)
	require.Zero(t, stats.Failed)
}

// TestRangeQueries verifies half-open range reads and their bounds checks.
func TestRangeQueries(t *testing.T) {
	client := setupLedgerContainer(t)
	submitText(t, client, "a", "b", "c", "d", "e")

	blocks, err := client.GetRange(t.Context(), 1, 4)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	require.Equal(t, "b", string(blocks[0].Payload))
	require.Equal(t, "d", string(blocks[2].Payload))

	empty, err := client.GetRange(t.Context(), 2, 2)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = client.GetRange(t.Context(), 3, 9)
	assertAPIError(t, err, ledgersdk.ErrorCodeOutOfRange)

	_, err = client.GetRange(t.Context(), 4, 2)
	assertAPIError(t, err, ledgersdk.ErrorCodeOutOfRange)
}

// TestIdempotentSubmission verifies that resubmitting with the same request
// id returns the original block instead of appending a duplicate.
func TestIdempotentSubmission(t *testing.T) {
	client := setupLedgerContainer(t)
	reqID := uuid.NewString()

	req := ledgersdk.SubmitLogRequest{
		Payload:   "user=alice action=transfer amount=100",
		Encoding:  ledgersdk.EncodingText,
		RequestID: reqID,
	}
	first, err := client.SubmitLog(t.Context(), req)
	require.NoError(t, err)

	second, err := client.SubmitLog(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, first.Index, second.Index)
	require.Equal(t, first.BlockHash, second.BlockHash)
	require.Equal(t, reqID, second.RequestID)

	head, err := client.Head(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(0), head.Index, "replay must not append")
}

// TestSearchAndVerifyData covers the payload search and data hash checks.
func TestSearchAndVerifyData(t *testing.T) {
	client := setupLedgerContainer(t)
	submitText(t, client, "user=alice action=login", "user=bob action=login", "user=alice action=logout")

	matches, err := client.Search(t.Context(), "user=alice*", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, uint64(0), matches[0].Index)
	require.Equal(t, uint64(2), matches[1].Index)

	sum := sha256.Sum256([]byte("hello"))
	res, err := client.VerifyData(t.Context(), ledgersdk.VerifyDataRequest{
		Data:         "hello",
		Encoding:     ledgersdk.EncodingText,
		ExpectedHash: hex.EncodeToString(sum[:]),
	})
	require.NoError(t, err)
	require.True(t, res.OK)

	res, err = client.VerifyData(t.Context(), ledgersdk.VerifyDataRequest{
		Data:         "hello!",
		Encoding:     ledgersdk.EncodingText,
		ExpectedHash: hex.EncodeToString(sum[:]),
	})
	require.NoError(t, err)
	require.False(t, res.OK)
}

// TestBinaryPayload verifies payloads are opaque bytes.
func TestBinaryPayload(t *testing.T) {
	client := setupLedgerContainer(t)
	raw := []byte{0x00, 0xff, 0x10, 0x80, 0x7f}

	b, err := client.SubmitLog(t.Context(), ledgersdk.SubmitLogRequest{
		Payload: ledgersdk.EncodePayload(raw),
	})
	require.NoError(t, err)

	got, err := client.GetRange(t.Context(), b.Index, b.Index+1)
	require.NoError(t, err)
	require.Equal(t, raw, got[0].Payload)
}

// TestPersistenceAcrossRestart verifies the chain, keys and TOTP secret
// survive a restart with the same master key.
func TestPersistenceAcrossRestart(t *testing.T) {
	lc := startLedger(t, nil)
	client := lc.adminClient(t)
	before := submitText(t, client, "before-1", "before-2")

	keysBefore, err := client.ListKeys(t.Context())
	require.NoError(t, err)

	lc.restart(t)
	client = lc.adminClient(t)

	require.Eventually(t, func() bool {
		h, err := client.GetReadiness(t.Context())
		return err == nil && h.Status == "ok"
	}, 30*time.Second, 500*time.Millisecond)

	head, err := client.Head(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(1), head.Index)
	require.Equal(t, before[1].BlockHash, head.BlockHash)

	after := submitText(t, client, "after-1")
	require.Equal(t, uint64(2), after[0].Index)
	require.Equal(t, before[1].BlockHash, after[0].PreviousHash)
	require.Equal(t, keysBefore[0].KeyID, after[0].SignerKeyID, "active key reloaded")

	assertChainIntact(t, client, 3)
}
