package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func TestRaiseDeduplicatesOpenAlerts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicyInternal)

	first, created, err := f.alerts.Raise(ctx, domain.AlertChainIntegrity, "block 3: block hash mismatch", nil)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, domain.SeverityCritical, first.Severity)
	require.Equal(t, "Audit trail tampering", first.Title)
	require.Equal(t, "ledger", first.Source)

	again, created, err := f.alerts.Raise(ctx, domain.AlertChainIntegrity, "block 3: block hash mismatch", nil)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, again.ID)

	_, err = f.alerts.Resolve(ctx, first.ID)
	require.NoError(t, err)

	next, created, err := f.alerts.Raise(ctx, domain.AlertChainIntegrity, "still broken", nil)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, first.ID, next.ID)

	_, _, err = f.alerts.Raise(ctx, "disk_full", "", nil)
	require.ErrorIs(t, err, service.ErrInvalidRequest)

	require.Contains(t, f.feed.Types(), "alert_raised")
	require.Contains(t, f.feed.Types(), "alert_resolved")
}

func TestAcknowledgeAndResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicyInternal)

	a, err := f.alerts.Create(ctx, service.CreateAlertRequest{Title: "Disk nearly full", Severity: "HIGH"})
	require.NoError(t, err)
	require.Equal(t, domain.AlertManual, a.Condition)
	require.Equal(t, domain.SeverityHigh, a.Severity)
	require.Equal(t, "operator", a.Source)

	f.clock.Advance(time.Minute)
	acked, err := f.alerts.Acknowledge(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, acked.Acknowledged())
	require.True(t, acked.Active())
	require.Equal(t, f.clock.Now(), *acked.AcknowledgedAt)

	_, err = f.alerts.Acknowledge(ctx, a.ID)
	require.ErrorIs(t, err, service.ErrAlertAcknowledged)

	resolved, err := f.alerts.Resolve(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AlertStatusResolved, resolved.Status())

	_, err = f.alerts.Resolve(ctx, a.ID)
	require.ErrorIs(t, err, service.ErrAlertResolved)
	_, err = f.alerts.Acknowledge(ctx, a.ID)
	require.ErrorIs(t, err, service.ErrAlertResolved)

	_, err = f.alerts.Acknowledge(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateAlertValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicyInternal)

	_, err := f.alerts.Create(ctx, service.CreateAlertRequest{Title: "  "})
	require.ErrorIs(t, err, service.ErrInvalidRequest)

	_, err = f.alerts.Create(ctx, service.CreateAlertRequest{Title: "x", Severity: "urgent"})
	require.ErrorIs(t, err, service.ErrInvalidRequest)

	// Manual alerts are never folded into an open one.
	for range 2 {
		_, err = f.alerts.Create(ctx, service.CreateAlertRequest{Title: "Same title"})
		require.NoError(t, err)
	}
	list, err := f.alerts.List(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, domain.SeverityMedium, list[0].Severity)
}

func TestAlertStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicyInternal)

	tamper, _, err := f.alerts.Raise(ctx, domain.AlertChainIntegrity, "", nil)
	require.NoError(t, err)
	totp, _, err := f.alerts.Raise(ctx, domain.AlertTOTPFailure, "", nil)
	require.NoError(t, err)
	_, _, err = f.alerts.Raise(ctx, domain.AlertRotationOverdue, "", nil)
	require.NoError(t, err)

	_, err = f.alerts.Acknowledge(ctx, tamper.ID)
	require.NoError(t, err)
	_, err = f.alerts.Resolve(ctx, totp.ID)
	require.NoError(t, err)

	stats, err := f.alerts.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 2, stats.Active)
	require.Equal(t, 1, stats.Acknowledged)
	require.Equal(t, 1, stats.BySeverity[domain.SeverityCritical])
	require.Equal(t, 1, stats.BySeverity[domain.SeverityHigh])
	require.Equal(t, 1, stats.BySeverity[domain.SeverityMedium])
}

func TestVerifyRaisesAlertOnTamperedChain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicyInternal)
	for _, p := range []string{"one", "two", "three"} {
		f.submit(t, p)
	}

	res, err := f.audit.Verify(ctx)
	require.NoError(t, err)
	require.True(t, res.OK)
	list, err := f.alerts.List(ctx, false, 0)
	require.NoError(t, err)
	require.Empty(t, list, "a clean chain raises nothing")

	target, err := f.store.Blocks().GetBlock(ctx, 1)
	require.NoError(t, err)
	sig := append([]byte(nil), target.Signature...)
	sig[0] ^= 0xff
	db, err := sql.Open("sqlite", sqlite.DSN(f.path))
	require.NoError(t, err)
	_, err = db.Exec("UPDATE blocks SET signature = ? WHERE idx = 1", sig)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	for range 2 {
		res, err = f.audit.Verify(ctx)
		require.NoError(t, err)
		require.False(t, res.OK)
	}

	list, err = f.alerts.List(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, list, 2, "repeated failures keep one alert per condition")

	conditions := map[string]domain.Alert{}
	for _, a := range list {
		conditions[a.Condition] = a
	}
	require.Contains(t, conditions, domain.AlertChainIntegrity)
	require.Contains(t, conditions, domain.AlertSignatureFailed)
	require.Equal(t, "1", conditions[domain.AlertChainIntegrity].Metadata["first_broken_index"])
	require.Equal(t, "signature invalid", conditions[domain.AlertChainIntegrity].Metadata["reason"])

	// Alerts report only; the broken block is still there.
	again, err := f.store.Blocks().GetBlock(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, sig, again.Signature)
}

func TestSubmitRaisesAlertWhenTOTPUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicyInternal)
	f.audit.TOTP = &service.TOTPService{Store: f.store, Sealer: f.totpSeal, Now: f.clock.Now}

	_, _, err := f.audit.SubmitLog(ctx, service.SubmitRequest{Payload: []byte("x")})
	require.ErrorIs(t, err, domain.ErrAuthentication)

	a, err := f.store.Alerts().FindActiveAlert(ctx, domain.AlertTOTPFailure)
	require.NoError(t, err)
	require.Equal(t, domain.SeverityHigh, a.Severity)
	require.Contains(t, a.Description, "not initialised")
}
