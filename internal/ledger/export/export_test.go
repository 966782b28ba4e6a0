package export_test

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/chain"
	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/export"
	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	"github.com/stretchr/testify/require"
)

// buildChain signs n linked blocks directly, without a store.
func buildChain(t *testing.T, n int) ([]domain.Block, *signx.KeySet) {
	t.Helper()
	s, _, err := signx.Generate("kid-export", cryptox.AlgES256)
	require.NoError(t, err)
	keys := signx.NewKeySet()
	require.NoError(t, keys.AddSigner(s))

	base := time.Date(2025, 3, 1, 9, 30, 0, 123456789, time.UTC)
	prev := chain.GenesisHash
	blocks := make([]domain.Block, 0, n)
	for i := range n {
		b := domain.Block{
			Index:        uint64(i),
			Timestamp:    base.Add(time.Duration(i) * time.Millisecond),
			Payload:      fmt.Appendf(nil, `{"event":"login","n":%d,"note":"a,b \"quoted\""}`, i),
			PreviousHash: prev,
			SignerKeyID:  s.KID(),
		}
		b.BlockHash = chain.HashBlock(b)
		b.Signature, err = s.SignDigest(b.BlockHash)
		require.NoError(t, err)
		blocks = append(blocks, b)
		prev = b.BlockHash
	}
	return blocks, keys
}

func verifyWith(keys *signx.KeySet) chain.VerifyFunc {
	return func(digest, sig []byte, kid string) bool { return keys.Verify(kid, digest, sig) }
}

func TestRoundTrip(t *testing.T) {
	blocks, keys := buildChain(t, 5)
	blocks[2].RequestID = "6f1c1b0e-2a7c-4f43-9a51-0d6b0c3f8e11"

	for _, f := range []export.Format{export.FormatJSON, export.FormatJSONL, export.FormatCSV} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := export.NewWriter(&buf, f)
			require.NoError(t, err)
			for _, b := range blocks {
				require.NoError(t, w.Write(b))
			}
			require.NoError(t, w.Close())

			decoded, err := export.Decode(&buf, f)
			require.NoError(t, err)
			require.Equal(t, blocks, decoded)

			for _, b := range decoded {
				require.Equal(t, b.BlockHash, chain.HashBlock(b), "hash recomputed from exported fields")
			}

			res := export.Verify(decoded, verifyWith(keys))
			require.True(t, res.OK)
			require.Equal(t, uint64(5), res.BlocksChecked)
		})
	}
}

func TestEmptyExport(t *testing.T) {
	for _, f := range []export.Format{export.FormatJSON, export.FormatJSONL, export.FormatCSV} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := export.NewWriter(&buf, f)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			decoded, err := export.Decode(&buf, f)
			require.NoError(t, err)
			require.Empty(t, decoded)
			require.True(t, export.Verify(decoded, nil).OK)
		})
	}
}

func TestVerifyDetectsEditedExport(t *testing.T) {
	blocks, keys := buildChain(t, 4)
	blocks[1].Payload = []byte("rewritten")

	res := export.Verify(blocks, verifyWith(keys))
	require.False(t, res.OK)
	require.Equal(t, uint64(1), *res.FirstBrokenIndex)
	require.Equal(t, uint64(2), res.BlocksChecked)
}

func TestVerifyRejectsForgedGenesisLink(t *testing.T) {
	blocks, keys := buildChain(t, 2)
	blocks[0].PreviousHash = bytes.Repeat([]byte{0x11}, 32)

	res := export.Verify(blocks, verifyWith(keys))
	require.False(t, res.OK)
	require.Equal(t, uint64(0), *res.FirstBrokenIndex)
}

func TestVerifyPartialExport(t *testing.T) {
	blocks, keys := buildChain(t, 6)
	res := export.Verify(blocks[3:], verifyWith(keys))
	require.True(t, res.OK)
	require.Equal(t, uint64(3), res.BlocksChecked)

	gap := append([]domain.Block{}, blocks[1], blocks[3])
	res = export.Verify(gap, verifyWith(keys))
	require.False(t, res.OK)
	require.Equal(t, "index discontinuity", res.Reason)
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, export.FormatJSONL, f)

	f, err = export.ParseFormat(" CSV ")
	require.NoError(t, err)
	require.Equal(t, export.FormatCSV, f)

	_, err = export.ParseFormat("xml")
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestDecodeRejectsBadHex(t *testing.T) {
	_, err := export.Decode(bytes.NewBufferString(`{"index":0,"previous_hash":"zz"}`+"\n"), export.FormatJSONL)
	require.Error(t, err)
}
