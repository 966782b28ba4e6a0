package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/pkg/idx"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 500

	// RotationGrace is how long past the rotation age a key may stay active
	// before the scheduler raises key_rotation_overdue.
	RotationGrace = 7 * 24 * time.Hour
)

type alertRule struct {
	severity domain.AlertSeverity
	title    string
	source   string
}

var alertRules = map[string]alertRule{
	domain.AlertSignatureFailed: {domain.SeverityHigh, "Cryptographic failure", "signer"},
	domain.AlertChainIntegrity:  {domain.SeverityCritical, "Audit trail tampering", "ledger"},
	domain.AlertRotationOverdue: {domain.SeverityMedium, "Key rotation overdue", "key_rotation"},
	domain.AlertTOTPFailure:     {domain.SeverityHigh, "TOTP system failure", "totp"},
}

// AlertService records conditions an operator has to look at. It only
// reports: nothing here touches the chain, keys or secrets.
type AlertService struct {
	Store  store.Store
	Now    func() time.Time
	Logger *slog.Logger
	Feed   feed.Publisher

	// mu keeps the open-alert lookup and the insert in Raise together.
	mu sync.Mutex
}

// CreateAlertRequest is a manual alert raised by an operator.
type CreateAlertRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Severity    domain.AlertSeverity `json:"severity,omitempty"`
	Source      string               `json:"source,omitempty"`
	Metadata    map[string]string    `json:"metadata,omitempty"`
}

// Raise opens an alert for a known condition. While an alert for the same
// condition is still unresolved no new one is created and the open alert
// is returned with created=false.
func (s *AlertService) Raise(ctx context.Context, condition, description string, metadata map[string]string) (a domain.Alert, created bool, err error) {
	rule, ok := alertRules[condition]
	if !ok {
		return domain.Alert{}, false, fmt.Errorf("%w: unknown alert condition %q", ErrInvalidRequest, condition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	open, err := s.Store.Alerts().FindActiveAlert(ctx, condition)
	switch {
	case err == nil:
		return open, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.Alert{}, false, fmt.Errorf("failed to look up open alert: %w", err)
	}

	a = domain.Alert{
		ID:          idx.New().String(),
		Condition:   condition,
		Severity:    rule.severity,
		Title:       rule.title,
		Description: description,
		Source:      rule.source,
		Metadata:    metadata,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.insert(ctx, a); err != nil {
		return domain.Alert{}, false, err
	}
	return a, true, nil
}

// Create opens a manual alert. Manual alerts are never deduplicated.
func (s *AlertService) Create(ctx context.Context, req CreateAlertRequest) (domain.Alert, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Alert{}, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	severity := domain.AlertSeverity(strings.ToLower(string(req.Severity)))
	if severity == "" {
		severity = domain.SeverityMedium
	}
	if !severity.Valid() {
		return domain.Alert{}, fmt.Errorf("%w: unknown severity %q", ErrInvalidRequest, req.Severity)
	}
	source := req.Source
	if source == "" {
		source = "operator"
	}

	a := domain.Alert{
		ID:          idx.New().String(),
		Condition:   domain.AlertManual,
		Severity:    severity,
		Title:       title,
		Description: req.Description,
		Source:      source,
		Metadata:    req.Metadata,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.insert(ctx, a); err != nil {
		return domain.Alert{}, err
	}
	return a, nil
}

// List returns alerts newest first.
func (s *AlertService) List(ctx context.Context, activeOnly bool, limit int) ([]domain.Alert, error) {
	switch {
	case limit <= 0:
		limit = defaultAlertLimit
	case limit > maxAlertLimit:
		limit = maxAlertLimit
	}
	alerts, err := s.Store.Alerts().ListAlerts(ctx, activeOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (s *AlertService) Get(ctx context.Context, id string) (domain.Alert, error) {
	a, err := s.Store.Alerts().GetAlert(ctx, id)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("failed to get alert %s: %w", id, err)
	}
	return a, nil
}

// Acknowledge marks an open alert as seen. It stays active until resolved.
func (s *AlertService) Acknowledge(ctx context.Context, id string) (domain.Alert, error) {
	return s.update(ctx, id, func(a *domain.Alert, now time.Time) error {
		if a.Acknowledged() {
			return ErrAlertAcknowledged
		}
		a.AcknowledgedAt = &now
		return nil
	})
}

// Resolve closes an alert. The next occurrence of its condition opens a new one.
func (s *AlertService) Resolve(ctx context.Context, id string) (domain.Alert, error) {
	a, err := s.update(ctx, id, func(a *domain.Alert, now time.Time) error {
		a.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return domain.Alert{}, err
	}
	s.logger().Info("alert resolved", "id", a.ID, "condition", a.Condition)
	s.publish(feed.Event{Type: feed.EventAlertResolved, Data: alertChanged(a)})
	return a, nil
}

func (s *AlertService) Stats(ctx context.Context) (domain.AlertStats, error) {
	stats, err := s.Store.Alerts().CountAlerts(ctx)
	if err != nil {
		return domain.AlertStats{}, fmt.Errorf("failed to count alerts: %w", err)
	}
	return stats, nil
}

func (s *AlertService) update(ctx context.Context, id string, change func(a *domain.Alert, now time.Time) error) (domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.Get(ctx, id)
	if err != nil {
		return domain.Alert{}, err
	}
	if !a.Active() {
		return domain.Alert{}, fmt.Errorf("%w: %s", ErrAlertResolved, id)
	}
	if err := change(&a, s.now().UTC()); err != nil {
		return domain.Alert{}, fmt.Errorf("%w: %s", err, id)
	}
	if err := s.Store.Alerts().UpdateAlertState(ctx, a); err != nil {
		return domain.Alert{}, fmt.Errorf("failed to update alert %s: %w", id, err)
	}
	return a, nil
}

func (s *AlertService) insert(ctx context.Context, a domain.Alert) error {
	if err := s.Store.Alerts().CreateAlert(ctx, a); err != nil {
		return fmt.Errorf("failed to store alert: %w", err)
	}
	s.logger().Warn("alert raised", "id", a.ID, "condition", a.Condition, "severity", a.Severity, "title", a.Title)
	s.publish(feed.Event{Type: feed.EventAlertRaised, Data: alertChanged(a)})
	return nil
}

func alertChanged(a domain.Alert) feed.AlertChanged {
	return feed.AlertChanged{ID: a.ID, Condition: a.Condition, Severity: string(a.Severity), Title: a.Title}
}

func (s *AlertService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AlertService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *AlertService) publish(ev feed.Event) {
	if s.Feed != nil {
		s.Feed.Publish(ev)
	}
}

// raiseAlert raises condition on alerts, logging instead of failing. A nil
// service does nothing.
func raiseAlert(ctx context.Context, alerts *AlertService, logger *slog.Logger, condition, description string, metadata map[string]string) {
	if alerts == nil {
		return
	}
	if _, _, err := alerts.Raise(ctx, condition, description, metadata); err != nil {
		logger.Error("failed to raise alert", "condition", condition, "error", err)
	}
}
