package ledgersdk

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/aegis/pkg/signx"
)

// Payload encodings accepted by SubmitLogRequest and VerifyDataRequest.
const (
	EncodingBase64 = "base64"
	EncodingText   = "text"
)

// EncodePayload base64-encodes raw bytes for a request body.
func EncodePayload(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error            string `json:"error" example:"invalid_request"`
	ErrorDescription string `json:"error_description,omitempty" example:"start must be a non-negative integer"`
}

// ============================================================================
// Blocks
// ============================================================================

// Block is a ledger entry as served over the API. Hashes are hex, payload and
// signature are base64.
type Block struct {
	Index        uint64    `json:"index" example:"42"`
	Timestamp    time.Time `json:"timestamp" example:"2025-06-01T12:00:05.123456789Z"`
	Payload      []byte    `json:"payload" swaggertype:"string" format:"base64" example:"dXNlcj1hbGljZSBhY3Rpb249bG9naW4="`
	PreviousHash string    `json:"previous_hash" example:"0000000000000000000000000000000000000000000000000000000000000000"`
	BlockHash    string    `json:"block_hash" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	Signature    []byte    `json:"signature" swaggertype:"string" format:"base64"`
	SignerKeyID  string    `json:"signer_key_id" example:"01JXA5Q2K3M4N5P6Q7R8S9T0VW"`
	RequestID    string    `json:"request_id,omitempty" example:"6f1c2d8e-0b7a-4c55-9d1e-3a2b4c5d6e7f"`
}

// SubmitLogRequest appends one record.
type SubmitLogRequest struct {
	// Payload is the record body, base64 unless Encoding is "text".
	Payload string `json:"payload" example:"dXNlcj1hbGljZSBhY3Rpb249bG9naW4="`

	// Encoding is "base64" (default) or "text".
	Encoding string `json:"encoding,omitempty" enums:"base64,text" example:"base64"`

	// TOTPCode is required when the service runs the supplied policy.
	TOTPCode string `json:"totp_code,omitempty" example:"492039"`

	// RequestID is a client UUID making the submission idempotent.
	RequestID string `json:"request_id,omitempty" example:"6f1c2d8e-0b7a-4c55-9d1e-3a2b4c5d6e7f"`
}

// HeadResponse is the chain tip. Index is -1 for an empty chain.
type HeadResponse struct {
	Index     int64      `json:"index" example:"41"`
	BlockHash string     `json:"block_hash" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// TrailResponse summarises the chain.
type TrailResponse struct {
	BlockCount     uint64     `json:"block_count" example:"42"`
	HeadHash       string     `json:"head_hash"`
	FirstBlockTime *time.Time `json:"first_block_time,omitempty"`
	LastBlockTime  *time.Time `json:"last_block_time,omitempty"`
}

// ============================================================================
// Verification
// ============================================================================

// VerifyResponse is the outcome of a chain integrity pass.
type VerifyResponse struct {
	OK               bool    `json:"ok" example:"false"`
	FirstBrokenIndex *uint64 `json:"first_broken_index,omitempty" example:"3"`
	BlocksChecked    uint64  `json:"blocks_checked" example:"4"`
	Reason           string  `json:"reason,omitempty" example:"block hash mismatch"`
}

// VerifyDataRequest checks data against an expected SHA-256 digest.
type VerifyDataRequest struct {
	Data         string `json:"data" example:"aGVsbG8="`
	Encoding     string `json:"encoding,omitempty" enums:"base64,text" example:"base64"`
	ExpectedHash string `json:"expected_hash" example:"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"`
}

// VerifyDataResponse is the outcome of a data hash check.
type VerifyDataResponse struct {
	OK           bool   `json:"ok" example:"true"`
	ComputedHash string `json:"computed_hash" example:"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"`
}

// VerificationRecord is one entry of the verification history.
type VerificationRecord struct {
	ID               string    `json:"id"`
	Kind             string    `json:"kind" enums:"chain,data"`
	OK               bool      `json:"ok"`
	FirstBrokenIndex *uint64   `json:"first_broken_index,omitempty"`
	BlocksChecked    uint64    `json:"blocks_checked"`
	Reason           string    `json:"reason,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	DurationMS       int64     `json:"duration_ms"`
}

// StatsResponse aggregates the verification history.
type StatsResponse struct {
	Total   int                  `json:"total" example:"12"`
	Passed  int                  `json:"passed" example:"11"`
	Failed  int                  `json:"failed" example:"1"`
	LastRun *time.Time           `json:"last_run,omitempty"`
	Recent  []VerificationRecord `json:"recent"`
}

// ============================================================================
// TOTP
// ============================================================================

// TOTPCodeResponse is the code for the current step.
type TOTPCodeResponse struct {
	Code             string `json:"code" example:"492039"`
	SecondsRemaining int    `json:"seconds_remaining" example:"17"`
	Period           uint   `json:"period" example:"30"`
	Digits           int    `json:"digits" example:"6"`
}

// TOTPEnrollResponse carries a freshly generated secret.
type TOTPEnrollResponse struct {
	Secret          string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	ProvisioningURL string `json:"provisioning_url" example:"otpauth://totp/aegis:ledger?secret=JBSWY3DPEHPK3PXP&issuer=aegis"`
	Period          uint   `json:"period" example:"30"`
	Digits          int    `json:"digits" example:"6"`
}

// ============================================================================
// Keys
// ============================================================================

// RotateKeyResponse represents the result of a key rotation.
type RotateKeyResponse struct {
	NewKeyID     string `json:"new_key_id" example:"01JXA5Q2K3M4N5P6Q7R8S9T0VW"`
	RetiredKeyID string `json:"retired_key_id,omitempty" example:"01JW9ZP1J2K3L4M5N6P7Q8R9ST"`
}

// SigningKeyInfo describes a signing key without its private half.
type SigningKeyInfo struct {
	KeyID       string     `json:"key_id" example:"01JXA5Q2K3M4N5P6Q7R8S9T0VW"`
	Algorithm   string     `json:"algorithm" example:"EdDSA"`
	Fingerprint string     `json:"fingerprint"`
	Active      bool       `json:"active" example:"true"`
	CreatedAt   time.Time  `json:"created_at"`
	RetiredAt   *time.Time `json:"retired_at,omitempty"`
}

// PublicKeyResponse is a public key in PEM and JWK form.
type PublicKeyResponse struct {
	KeyID       string    `json:"key_id" example:"01JXA5Q2K3M4N5P6Q7R8S9T0VW"`
	Algorithm   string    `json:"algorithm" example:"EdDSA"`
	PublicKey   string    `json:"public_key"`
	Fingerprint string    `json:"fingerprint"`
	JWK         signx.JWK `json:"jwk"`
}

// JWKSResponse contains the public keys of every signing key, retired ones
// included, as served from /.well-known/jwks.json.
type JWKSResponse signx.JWKS

// ============================================================================
// Alerts
// ============================================================================

// Alert severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert is a condition raised for an operator. Alerts never change the chain.
type Alert struct {
	ID             string            `json:"id" example:"01JXA5Q2K3M4N5P6Q7R8S9T0VW"`
	Condition      string            `json:"condition" example:"chain_integrity_failed"`
	Severity       string            `json:"severity" example:"critical"`
	Title          string            `json:"title" example:"Audit trail tampering"`
	Description    string            `json:"description,omitempty" example:"block 3: block hash mismatch"`
	Source         string            `json:"source,omitempty" example:"ledger"`
	Status         string            `json:"status" example:"active"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
}

// CreateAlertRequest raises a manual alert.
type CreateAlertRequest struct {
	Title       string            `json:"title" example:"Backup job failed"`
	Description string            `json:"description,omitempty"`
	Severity    string            `json:"severity,omitempty" example:"medium"`
	Source      string            `json:"source,omitempty" example:"operator"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// AlertStatsResponse summarises every alert ever raised.
type AlertStatsResponse struct {
	Total        int            `json:"total" example:"12"`
	Active       int            `json:"active" example:"2"`
	Acknowledged int            `json:"acknowledged" example:"1"`
	BySeverity   map[string]int `json:"by_severity"`
}

// ============================================================================
// Health and feed
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime,omitempty" example:"1h23m45s"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is the status of each dependency checked by /readyz.
type HealthChecks struct {
	Store  string `json:"store" example:"ok"`
	Signer string `json:"signer" example:"ok"`
	TOTP   string `json:"totp" example:"ok"`
	Alerts string `json:"alerts,omitempty" example:"ok"`
}

// FeedEvent is one message from the live feed. Data depends on Type.
type FeedEvent struct {
	Type string          `json:"type" example:"block_appended"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data,omitempty" swaggertype:"object"`
}
