package chain_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/chain"
	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/leveldb"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite"
	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	"github.com/stretchr/testify/require"
)

const goodCode = "123456"

// testSigner accepts a single fixed code and signs with a KeyManager.
type testSigner struct {
	km *signx.KeyManager
}

func newTestSigner(t *testing.T) *testSigner {
	t.Helper()
	s, _, err := signx.Generate("kid-1", cryptox.AlgEdDSA)
	require.NoError(t, err)
	km := signx.NewKeyManager()
	require.NoError(t, km.Activate(s))
	return &testSigner{km: km}
}

func (s *testSigner) Sign(_ context.Context, digest []byte, code string) ([]byte, string, error) {
	if code != goodCode {
		return nil, "", domain.ErrAuthentication
	}
	active, err := s.km.Active()
	if err != nil {
		return nil, "", domain.ErrKeyUnavailable
	}
	sig, err := active.SignDigest(digest)
	return sig, active.KID(), err
}

func (s *testSigner) Verify(digest, sig []byte, keyID string) bool {
	return s.km.Verify(keyID, digest, sig)
}

type driver struct {
	name string
	open func(t *testing.T) store.Store
}

var drivers = []driver{
	{"sqlite", func(t *testing.T) store.Store {
		st, _ := openSQLite(t)
		return st
	}},
	{"leveldb", func(t *testing.T) store.Store {
		st, err := leveldb.NewMemStore()
		require.NoError(t, err)
		require.NoError(t, st.ApplyMigrations())
		t.Cleanup(func() { _ = st.Close() })
		return st
	}},
}

func openSQLite(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	st, err := sqlite.NewStore(sqlite.DSN(path))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

func openLedger(t *testing.T, st store.Store, signer chain.Signer, opts ...func(*chain.Options)) *chain.Ledger {
	t.Helper()
	o := chain.Options{Store: st, Signer: signer, BatchSize: 4}
	for _, fn := range opts {
		fn(&o)
	}
	l := chain.New(o)
	require.NoError(t, l.Open(context.Background()))
	return l
}

func appendN(t *testing.T, l *chain.Ledger, n int) {
	t.Helper()
	for i := range n {
		_, _, err := l.Append(context.Background(), fmt.Appendf(nil, "event %d", i), goodCode, "")
		require.NoError(t, err)
	}
}

func TestAppendThenVerify(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			l := openLedger(t, d.open(t), newTestSigner(t))

			head := l.Head()
			require.True(t, head.Empty())
			require.Equal(t, int64(-1), head.Index)
			require.Equal(t, chain.GenesisHash, head.BlockHash)

			appendN(t, l, 10)

			res, err := l.VerifyIntegrity(context.Background())
			require.NoError(t, err)
			require.True(t, res.OK)
			require.Equal(t, uint64(10), res.BlocksChecked)
			require.Nil(t, res.FirstBrokenIndex)
			require.NoError(t, res.Err())
		})
	}
}

func TestScenarioThreeEvents(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			l := openLedger(t, d.open(t), newTestSigner(t))

			payloads := []string{"Login attempt", "File access", "Permission change"}
			for _, p := range payloads {
				_, _, err := l.Append(ctx, []byte(p), goodCode, "")
				require.NoError(t, err)
			}

			require.Equal(t, int64(2), l.Head().Index)

			blocks, err := l.GetRange(ctx, 0, 3)
			require.NoError(t, err)
			require.Len(t, blocks, 3)
			for i, b := range blocks {
				require.Equal(t, uint64(i), b.Index)
				require.Equal(t, payloads[i], string(b.Payload))
				require.Equal(t, "kid-1", b.SignerKeyID)
			}
			require.Equal(t, chain.GenesisHash, blocks[0].PreviousHash)
			require.Equal(t, blocks[0].BlockHash, blocks[1].PreviousHash)
			require.Equal(t, blocks[1].BlockHash, blocks[2].PreviousHash)

			res, err := l.VerifyIntegrity(ctx)
			require.NoError(t, err)
			require.True(t, res.OK)
		})
	}
}

func TestTamperDetection(t *testing.T) {
	tests := []struct {
		column string
		mutate func(b domain.Block) any
	}{
		{"payload", func(b domain.Block) any { return append(b.Payload, '!') }},
		{"timestamp_ns", func(b domain.Block) any { return b.Timestamp.UnixNano() + 1 }},
		{"previous_hash", func(b domain.Block) any { return flip(b.PreviousHash) }},
		{"block_hash", func(b domain.Block) any { return flip(b.BlockHash) }},
		{"signature", func(b domain.Block) any { return flip(b.Signature) }},
	}

	const k = 3
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			ctx := context.Background()
			st, path := openSQLite(t)
			l := openLedger(t, st, newTestSigner(t))
			appendN(t, l, 6)

			target, err := st.Blocks().GetBlock(ctx, k)
			require.NoError(t, err)
			tamper(t, path, fmt.Sprintf("UPDATE blocks SET %s = ? WHERE idx = ?", tt.column), tt.mutate(target), k)

			res, err := l.VerifyIntegrity(ctx)
			require.NoError(t, err)
			require.False(t, res.OK)
			require.NotNil(t, res.FirstBrokenIndex)
			require.Equal(t, uint64(k), *res.FirstBrokenIndex)
			require.Equal(t, uint64(k+1), res.BlocksChecked)
			require.NotEmpty(t, res.Reason)
			require.ErrorIs(t, res.Err(), domain.ErrIntegrityViolation)
		})
	}
}

func TestBitFlipInGenesisPayload(t *testing.T) {
	ctx := context.Background()
	st, path := openSQLite(t)
	l := openLedger(t, st, newTestSigner(t))
	for _, p := range []string{"Login attempt", "File access", "Permission change"} {
		_, _, err := l.Append(ctx, []byte(p), goodCode, "")
		require.NoError(t, err)
	}

	b0, err := st.Blocks().GetBlock(ctx, 0)
	require.NoError(t, err)
	payload := append([]byte(nil), b0.Payload...)
	payload[0] ^= 0x01
	tamper(t, path, "UPDATE blocks SET payload = ? WHERE idx = 0", payload)

	res, err := l.VerifyIntegrity(ctx)
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Equal(t, uint64(0), *res.FirstBrokenIndex)
	require.Equal(t, "block hash mismatch", res.Reason)
}

func TestMissingBlockIsBroken(t *testing.T) {
	ctx := context.Background()
	st, path := openSQLite(t)
	l := openLedger(t, st, newTestSigner(t))
	appendN(t, l, 5)

	tamper(t, path, "DELETE FROM blocks WHERE idx = 2")

	res, err := l.VerifyIntegrity(ctx)
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Equal(t, uint64(2), *res.FirstBrokenIndex)
	require.Equal(t, "block missing", res.Reason)
}

func TestConcurrentAppends(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			l := openLedger(t, d.open(t), newTestSigner(t))

			const m = 40
			var wg sync.WaitGroup
			indices := make(chan uint64, m)
			for i := range m {
				wg.Add(1)
				go func() {
					defer wg.Done()
					b, _, err := l.Append(ctx, fmt.Appendf(nil, "worker %d", i), goodCode, "")
					if err != nil {
						t.Errorf("append: %v", err)
						return
					}
					indices <- b.Index
				}()
			}
			wg.Wait()
			close(indices)

			var got []uint64
			for idx := range indices {
				got = append(got, idx)
			}
			sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
			require.Len(t, got, m)
			for i, idx := range got {
				require.Equal(t, uint64(i), idx, "no gaps or duplicates")
			}

			res, err := l.VerifyIntegrity(ctx)
			require.NoError(t, err)
			require.True(t, res.OK)
			require.Equal(t, uint64(m), res.BlocksChecked)
		})
	}
}

func TestTimestampsNeverGoBackwards(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Hour), base.Add(time.Second)}
	var i int
	now := func() time.Time {
		ts := clock[i]
		i++
		return ts
	}

	st, _ := openSQLite(t)
	l := openLedger(t, st, newTestSigner(t), func(o *chain.Options) { o.Now = now })
	appendN(t, l, 3)

	blocks, err := l.GetRange(context.Background(), 0, 3)
	require.NoError(t, err)
	require.Equal(t, base, blocks[0].Timestamp)
	require.Equal(t, base, blocks[1].Timestamp, "clamped to previous block")
	require.Equal(t, base.Add(time.Second), blocks[2].Timestamp)
}

func TestFailedAppendLeavesChainUntouched(t *testing.T) {
	ctx := context.Background()
	signer := newTestSigner(t)
	st, _ := openSQLite(t)
	l := openLedger(t, st, signer)
	appendN(t, l, 2)
	before := l.Head()

	_, _, err := l.Append(ctx, []byte("bad code"), "000000", "")
	require.ErrorIs(t, err, domain.ErrAuthentication)

	signer.km.Deactivate("kid-1")
	_, _, err = l.Append(ctx, []byte("no key"), goodCode, "")
	require.ErrorIs(t, err, domain.ErrKeyUnavailable)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = l.Append(cancelled, []byte("cancelled"), goodCode, "")
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, before, l.Head())
	n, err := st.Blocks().CountBlocks(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)
}

func TestAppendIsIdempotentOnRequestID(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			l := openLedger(t, d.open(t), newTestSigner(t))

			first, replayed, err := l.Append(ctx, []byte("once"), goodCode, "c0ffee00-0000-4000-8000-000000000001")
			require.NoError(t, err)
			require.False(t, replayed)

			second, replayed, err := l.Append(ctx, []byte("once"), goodCode, "c0ffee00-0000-4000-8000-000000000001")
			require.NoError(t, err)
			require.True(t, replayed)
			require.Equal(t, first, second)
			require.Equal(t, uint64(1), l.Length())
		})
	}
}

func TestAppendEmptyPayload(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			l := openLedger(t, d.open(t), newTestSigner(t))

			for _, payload := range [][]byte{{}, nil} {
				_, _, err := l.Append(ctx, payload, goodCode, "")
				require.NoError(t, err)
			}

			blocks, err := l.GetRange(ctx, 0, 2)
			require.NoError(t, err)
			require.Len(t, blocks, 2)
			for _, b := range blocks {
				require.Empty(t, b.Payload)
			}

			res, err := l.VerifyIntegrity(ctx)
			require.NoError(t, err)
			require.True(t, res.OK)
			require.Equal(t, uint64(2), res.BlocksChecked)
		})
	}
}

func TestExclusiveHoldsOffAppends(t *testing.T) {
	l := openLedger(t, drivers[1].open(t), newTestSigner(t))

	entered := make(chan struct{})
	release := make(chan struct{})
	held := make(chan error, 1)
	go func() {
		held <- l.Exclusive(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	appended := make(chan error, 1)
	go func() {
		_, _, err := l.Append(context.Background(), []byte("waiting"), goodCode, "")
		appended <- err
	}()

	select {
	case <-appended:
		t.Fatal("append finished while the exclusive section was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-held)
	require.NoError(t, <-appended)
	require.Equal(t, uint64(1), l.Length())

	boom := errors.New("boom")
	require.ErrorIs(t, l.Exclusive(func() error { return boom }), boom)
}

func TestOpenRestoresHead(t *testing.T) {
	ctx := context.Background()
	signer := newTestSigner(t)
	st, _ := openSQLite(t)

	l := openLedger(t, st, signer)
	appendN(t, l, 3)
	head := l.Head()

	reopened := openLedger(t, st, signer)
	require.Equal(t, head, reopened.Head())

	b, _, err := reopened.Append(ctx, []byte("after restart"), goodCode, "")
	require.NoError(t, err)
	require.Equal(t, uint64(3), b.Index)
	require.Equal(t, head.BlockHash, b.PreviousHash)
}

func TestGetRangeBounds(t *testing.T) {
	ctx := context.Background()
	st, _ := openSQLite(t)
	l := openLedger(t, st, newTestSigner(t))
	appendN(t, l, 3)

	_, err := l.GetRange(ctx, 2, 1)
	require.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = l.GetRange(ctx, 0, 4)
	require.ErrorIs(t, err, domain.ErrOutOfRange)

	empty, err := l.GetRange(ctx, 3, 3)
	require.NoError(t, err)
	require.Empty(t, empty)

	tail, err := l.GetRange(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, tail, 2)
}

func TestVerifyHonoursCancellation(t *testing.T) {
	st, _ := openSQLite(t)
	l := openLedger(t, st, newTestSigner(t))
	appendN(t, l, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.VerifyIntegrity(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScanVisitsEveryBlockInOrder(t *testing.T) {
	st, _ := openSQLite(t)
	l := openLedger(t, st, newTestSigner(t))
	appendN(t, l, 9)

	var seen []uint64
	require.NoError(t, l.Scan(context.Background(), func(b domain.Block) error {
		seen = append(seen, b.Index)
		return nil
	}))
	require.Len(t, seen, 9)
	for i, idx := range seen {
		require.Equal(t, uint64(i), idx)
	}
}

func TestVerifyBlocksDetached(t *testing.T) {
	signer := newTestSigner(t)
	st, _ := openSQLite(t)
	l := openLedger(t, st, signer)
	appendN(t, l, 6)

	blocks, err := l.GetRange(context.Background(), 2, 6)
	require.NoError(t, err)

	res := chain.VerifyBlocks(blocks, blocks[0].PreviousHash, signer.Verify)
	require.True(t, res.OK)
	require.Equal(t, uint64(4), res.BlocksChecked)

	blocks[2].Payload = []byte("edited")
	res = chain.VerifyBlocks(blocks, blocks[0].PreviousHash, signer.Verify)
	require.False(t, res.OK)
	require.Equal(t, uint64(4), *res.FirstBrokenIndex)
}

func flip(b []byte) []byte {
	out := append([]byte(nil), b...)
	out[0] ^= 0xff
	return out
}

// tamper writes to the database behind the store's back.
func tamper(t *testing.T, path, query string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite", sqlite.DSN(path))
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(query, args...)
	require.NoError(t, err)
}
