package domain

import "time"

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s AlertSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Alert conditions. Each raises at most one open alert at a time.
const (
	AlertSignatureFailed = "signature_verification_failed"
	AlertChainIntegrity  = "chain_integrity_failed"
	AlertRotationOverdue = "key_rotation_overdue"
	AlertTOTPFailure     = "totp_system_failed"

	// AlertManual is raised by an operator and never deduplicated.
	AlertManual = "manual"
)

// Alert statuses.
const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
)

// Alert reports a condition that needs an operator. Alerts describe
// problems; they never change the chain.
type Alert struct {
	ID             string
	Condition      string
	Severity       AlertSeverity
	Title          string
	Description    string
	Source         string
	Metadata       map[string]string
	CreatedAt      time.Time
	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time
}

func (a Alert) Active() bool       { return a.ResolvedAt == nil }
func (a Alert) Acknowledged() bool { return a.AcknowledgedAt != nil }

func (a Alert) Status() string {
	if a.Active() {
		return AlertStatusActive
	}
	return AlertStatusResolved
}

// AlertStats summarises every alert ever raised.
type AlertStats struct {
	Total        int
	Active       int
	Acknowledged int // active and acknowledged
	BySeverity   map[AlertSeverity]int
}
