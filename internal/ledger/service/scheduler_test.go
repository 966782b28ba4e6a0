package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsJobs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicyInternal)
	f.submit(t, "hello")

	before, err := f.keys.Active()
	require.NoError(t, err)
	f.clock.Advance(48 * time.Hour)

	s := service.NewScheduler(f.audit, f.rotation, f.totp, f.feed, nil, service.SchedulerIntervals{
		Integrity:   time.Hour,
		RotationAge: 24 * time.Hour,
		Status:      10 * time.Millisecond,
	})
	s.Start()
	defer s.Stop()

	// Startup runs rotation and an integrity check immediately.
	require.Eventually(t, func() bool {
		total, _, err := f.store.Verifications().CountVerifications(ctx)
		return err == nil && total >= 1
	}, 2*time.Second, 10*time.Millisecond)

	active, err := f.keys.Active()
	require.NoError(t, err)
	require.NotEqual(t, before.KID(), active.KID())

	require.Eventually(t, func() bool {
		for _, typ := range f.feed.Types() {
			if typ == "system_status" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerSetIntervals(t *testing.T) {
	f := newFixture(t, service.PolicyInternal)
	s := service.NewScheduler(f.audit, f.rotation, f.totp, f.feed, nil, service.SchedulerIntervals{})
	s.Start()
	defer s.Stop()

	want := service.SchedulerIntervals{Integrity: time.Minute, Status: time.Second}
	s.SetIntervals(want)
	require.Equal(t, want, s.Intervals())
}

func TestSchedulerRaisesOverdueWithoutActiveKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicyInternal)

	active, err := f.keys.Active()
	require.NoError(t, err)
	require.NoError(t, f.rotation.RetireKey(ctx, active.KID()))

	s := service.NewScheduler(f.audit, f.rotation, f.totp, f.feed, nil, service.SchedulerIntervals{
		RotationAge: 24 * time.Hour,
	})
	s.Alerts = f.alerts
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		_, err := f.store.Alerts().FindActiveAlert(ctx, domain.AlertRotationOverdue)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	a, err := f.store.Alerts().FindActiveAlert(ctx, domain.AlertRotationOverdue)
	require.NoError(t, err)
	require.Equal(t, domain.SeverityMedium, a.Severity)
	require.Equal(t, "key_rotation", a.Source)

	// The scheduler never rotates on its own to clear the alert.
	_, err = f.keys.Active()
	require.Error(t, err)
}
