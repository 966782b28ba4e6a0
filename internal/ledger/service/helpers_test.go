package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/chain"
	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite"
	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/aussiebroadwan/aegis/pkg/idx"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock shared by every component of a fixture.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// recorder captures published feed events.
type recorder struct {
	mu     sync.Mutex
	events []feed.Event
}

func (r *recorder) Publish(ev feed.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Subscribers() int { return 0 }

func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	store    store.Store
	path     string
	clock    *testClock
	master   *cryptox.MasterKey
	keySeal  *cryptox.Sealer
	totpSeal *cryptox.Sealer
	feed     *recorder

	keys     *signx.KeyManager
	totp     *service.TOTPService
	rotation *service.KeyRotationService
	signer   *service.SignerService
	ledger   *chain.Ledger
	audit    *service.AuditService
	alerts   *service.AlertService
}

// newFixture wires the full service stack over a file-backed sqlite store.
// The clock starts five seconds into a TOTP step.
func newFixture(t *testing.T, policy service.Policy) *fixture {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "ledger.db")
	st, err := sqlite.NewStore(sqlite.DSN(path))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clock := &testClock{t: time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC)}

	mk, err := cryptox.LoadMasterKey(ctx, cryptox.EphemeralSource{})
	require.NoError(t, err)
	keySeal, err := cryptox.NewSealer(mk, cryptox.PurposeSigningKeys)
	require.NoError(t, err)
	totpSeal, err := cryptox.NewSealer(mk, cryptox.PurposeTOTPSecret)
	require.NoError(t, err)

	f := &fixture{
		store:    st,
		path:     path,
		clock:    clock,
		master:   mk,
		keySeal:  keySeal,
		totpSeal: totpSeal,
		feed:     &recorder{},
	}
	f.keys = f.loadKeyManager(t)

	f.totp = &service.TOTPService{
		Store:  st,
		Sealer: totpSeal,
		Issuer: "Aegis Test",
		Now:    clock.Now,
		Feed:   f.feed,
	}
	require.NoError(t, f.totp.Init(ctx))

	f.rotation = &service.KeyRotationService{
		Store:      st,
		KeyManager: f.keys,
		Sealer:     keySeal,
		Algorithm:  cryptox.AlgEdDSA,
		Now:        clock.Now,
		Feed:       f.feed,
	}
	f.signer = &service.SignerService{
		KeyManager: f.keys,
		TOTP:       f.totp,
		SingleUse:  policy == service.PolicySupplied,
	}
	f.ledger = chain.New(chain.Options{Store: st, Signer: f.signer, Now: clock.Now, BatchSize: 3})
	require.NoError(t, f.ledger.Open(ctx))
	f.rotation.Ledger = f.ledger

	f.alerts = &service.AlertService{Store: st, Now: clock.Now, Feed: f.feed}
	f.audit = &service.AuditService{
		Ledger:     f.ledger,
		TOTP:       f.totp,
		KeyManager: f.keys,
		Store:      st,
		Policy:     policy,
		Alerts:     f.alerts,
		Now:        clock.Now,
		Feed:       f.feed,
	}
	return f
}

func (f *fixture) loadKeyManager(t *testing.T) *signx.KeyManager {
	t.Helper()
	km, err := signx.NewPersistentKeyManager(context.Background(), signx.PersistentKeyManagerOptions{
		Store:     store.NewKeyStoreAdapter(f.store),
		Sealer:    f.keySeal,
		Algorithm: cryptox.AlgEdDSA,
		NewKID:    func() string { return idx.New().String() },
		Now:       f.clock.Now,
	})
	require.NoError(t, err)
	return km
}

func (f *fixture) code(t *testing.T) string {
	t.Helper()
	c, err := f.totp.CurrentCode()
	require.NoError(t, err)
	return c.Code
}

func (f *fixture) submit(t *testing.T, payload string) {
	t.Helper()
	req := service.SubmitRequest{Payload: []byte(payload)}
	if f.audit.Policy == service.PolicySupplied {
		req.Code = f.code(t)
	}
	_, _, err := f.audit.SubmitLog(context.Background(), req)
	require.NoError(t, err)
}
