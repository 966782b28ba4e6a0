package feed

import "time"

// Event types pushed to live feed subscribers.
const (
	EventBlockAppended    = "block_appended"
	EventIntegrityChecked = "integrity_checked"
	EventKeyRotated       = "key_rotated"
	EventKeyRetired       = "key_retired"
	EventTOTPRegenerated  = "totp_regenerated"
	EventSystemStatus     = "system_status"
	EventAlertRaised      = "alert_raised"
	EventAlertResolved    = "alert_resolved"
)

// Event is a single feed message. Data is marshalled as-is.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// Publisher accepts events for fan-out. Publish must not block.
type Publisher interface {
	Publish(Event)
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// BlockAppended is the data of an EventBlockAppended event.
type BlockAppended struct {
	Index       uint64 `json:"index"`
	BlockHash   string `json:"block_hash"`
	SignerKeyID string `json:"signer_key_id"`
	Size        int    `json:"size"`
}

// IntegrityChecked is the data of an EventIntegrityChecked event.
type IntegrityChecked struct {
	OK               bool    `json:"ok"`
	FirstBrokenIndex *uint64 `json:"first_broken_index,omitempty"`
	BlocksChecked    uint64  `json:"blocks_checked"`
	Reason           string  `json:"reason,omitempty"`
}

// KeyChanged is the data of key rotation and retirement events.
type KeyChanged struct {
	KeyID        string `json:"key_id"`
	RetiredKeyID string `json:"retired_key_id,omitempty"`
}

// SystemStatus is the periodic heartbeat. It carries the TOTP countdown,
// never the code itself.
type SystemStatus struct {
	HeadIndex            int64  `json:"head_index"`
	SignerReady          bool   `json:"signer_ready"`
	ActiveKeyID          string `json:"active_key_id,omitempty"`
	TOTPSecondsRemaining int    `json:"totp_seconds_remaining"`
	TOTPPeriod           uint   `json:"totp_period"`
	Subscribers          int    `json:"subscribers"`
}

// AlertChanged is the data of alert events.
type AlertChanged struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
	Severity  string `json:"severity"`
	Title     string `json:"title"`
}
