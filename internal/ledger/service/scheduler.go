package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
)

const (
	DefaultIntegrityInterval = time.Hour
	DefaultRotationAge       = 30 * 24 * time.Hour
	DefaultStatusInterval    = 5 * time.Second

	rotationCheckInterval = time.Hour
)

// SchedulerIntervals controls the background jobs. Zero disables a job.
type SchedulerIntervals struct {
	Integrity   time.Duration // full chain verification
	RotationAge time.Duration // rotate once the active key is this old
	Status      time.Duration // system_status heartbeat on the feed
}

// StatusFeed is where the heartbeat goes. *feed.Hub satisfies it.
type StatusFeed interface {
	feed.Publisher
	Subscribers() int
}

// Scheduler runs periodic integrity checks, age-based key rotation and the
// feed heartbeat.
type Scheduler struct {
	Audit  *AuditService
	Keys   *KeyRotationService
	TOTP   *TOTPService
	Feed   StatusFeed
	Logger *slog.Logger

	// Alerts receives key_rotation_overdue. Optional.
	Alerts *AlertService

	mu        sync.Mutex
	intervals SchedulerIntervals
	reloadCh  chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewScheduler creates a scheduler. Call Start to begin and Stop to finish.
func NewScheduler(audit *AuditService, keys *KeyRotationService, totp *TOTPService, hub StatusFeed, logger *slog.Logger, intervals SchedulerIntervals) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		Audit:     audit,
		Keys:      keys,
		TOTP:      totp,
		Feed:      hub,
		Logger:    logger,
		intervals: intervals,
		reloadCh:  make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background.
func (s *Scheduler) Start() {
	go s.run()
	iv := s.Intervals()
	s.Logger.Info("scheduler started",
		"integrity_interval", iv.Integrity, "rotation_age", iv.RotationAge, "status_interval", iv.Status)
}

// Stop shuts the worker down, waiting for an in-progress job to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("scheduler stopped")
}

// Intervals returns the current settings.
func (s *Scheduler) Intervals() SchedulerIntervals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intervals
}

// SetIntervals applies new settings to a running scheduler.
func (s *Scheduler) SetIntervals(iv SchedulerIntervals) {
	s.mu.Lock()
	s.intervals = iv
	s.mu.Unlock()

	select {
	case s.reloadCh <- struct{}{}:
	default:
	}
	s.Logger.Info("scheduler intervals updated",
		"integrity_interval", iv.Integrity, "rotation_age", iv.RotationAge, "status_interval", iv.Status)
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	integrity := newTicker()
	rotation := newTicker()
	status := newTicker()
	defer integrity.stop()
	defer rotation.stop()
	defer status.stop()

	apply := func() {
		iv := s.Intervals()
		integrity.reset(iv.Integrity)
		if iv.RotationAge > 0 {
			rotation.reset(min(rotationCheckInterval, iv.RotationAge))
		} else {
			rotation.reset(0)
		}
		status.reset(iv.Status)
	}
	apply()

	// Check once on startup so a tampered chain is reported straight away.
	s.checkRotation(ctx)
	s.checkIntegrity(ctx)

	for {
		select {
		case <-integrity.c():
			s.checkIntegrity(ctx)
		case <-rotation.c():
			s.checkRotation(ctx)
		case <-status.c():
			s.PublishStatus()
		case <-s.reloadCh:
			apply()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) checkIntegrity(ctx context.Context) {
	if s.Intervals().Integrity <= 0 || s.Audit == nil {
		return
	}
	if _, err := s.Audit.Verify(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.Logger.Error("scheduled integrity check failed", "error", err)
	}
}

func (s *Scheduler) checkRotation(ctx context.Context) {
	age := s.Intervals().RotationAge
	if age <= 0 || s.Keys == nil {
		return
	}
	resp, rotated, err := s.Keys.RotateIfOlderThan(ctx, age)
	switch {
	case errors.Is(err, domain.ErrKeyUnavailable):
		s.Logger.Warn("no active signing key; skipping scheduled rotation")
		raiseAlert(ctx, s.Alerts, s.Logger, domain.AlertRotationOverdue,
			"no active signing key; appends fail until keys are rotated", nil)
	case err != nil:
		s.Logger.Error("scheduled key rotation failed", "error", err)
		s.checkOverdue(ctx, age)
	case rotated:
		s.Logger.Info("scheduled key rotation", "new_kid", resp.NewKeyID, "retired_kid", resp.RetiredKeyID)
	}
}

// checkOverdue raises an alert once the active key has outlived the
// rotation age by more than RotationGrace.
func (s *Scheduler) checkOverdue(ctx context.Context, age time.Duration) {
	active, err := s.Keys.ActiveKey(ctx)
	if err != nil {
		return
	}
	keyAge := active.Age(s.Keys.now())
	if keyAge < age+RotationGrace {
		return
	}
	raiseAlert(ctx, s.Alerts, s.Logger, domain.AlertRotationOverdue,
		fmt.Sprintf("signing key %s is %s old", active.Kid, keyAge.Round(time.Hour)),
		map[string]string{"key_id": active.Kid, "age": keyAge.Round(time.Second).String()})
}

// PublishStatus pushes a system_status heartbeat onto the feed.
func (s *Scheduler) PublishStatus() {
	if s.Feed == nil {
		return
	}
	st := feed.SystemStatus{Subscribers: s.Feed.Subscribers()}
	if s.Audit != nil {
		st.HeadIndex = s.Audit.Head().Index
	}
	if s.Keys != nil {
		if active, err := s.Keys.KeyManager.Active(); err == nil {
			st.SignerReady = true
			st.ActiveKeyID = active.KID()
		}
	}
	if s.TOTP != nil {
		st.TOTPSecondsRemaining, st.TOTPPeriod = s.TOTP.SecondsRemaining()
	}
	s.Feed.Publish(feed.Event{Type: feed.EventSystemStatus, Data: st})
}

// ticker is a time.Ticker that can be switched off with a zero interval.
type ticker struct {
	t *time.Ticker
}

func newTicker() *ticker { return &ticker{} }

func (t *ticker) reset(d time.Duration) {
	switch {
	case d <= 0 && t.t != nil:
		t.t.Stop()
		t.t = nil
	case d <= 0:
	case t.t == nil:
		t.t = time.NewTicker(d)
	default:
		t.t.Reset(d)
	}
}

// c returns a nil channel when stopped, which blocks forever in a select.
func (t *ticker) c() <-chan time.Time {
	if t.t == nil {
		return nil
	}
	return t.t.C
}

func (t *ticker) stop() {
	if t.t != nil {
		t.t.Stop()
	}
}
