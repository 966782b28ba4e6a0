package domain

import "time"

// Verification kinds recorded in the history.
const (
	VerificationChain = "chain"
	VerificationData  = "data"

	// VerificationExport is a chain walk over a submitted export file.
	VerificationExport = "export"
)

// VerificationResult is the outcome of a full chain integrity pass.
type VerificationResult struct {
	OK               bool
	FirstBrokenIndex *uint64
	BlocksChecked    uint64
	Reason           string
}

// Err returns an *IntegrityViolation for failed results and nil otherwise.
func (r VerificationResult) Err() error {
	if r.OK || r.FirstBrokenIndex == nil {
		return nil
	}
	return &IntegrityViolation{Index: *r.FirstBrokenIndex, Reason: r.Reason}
}

// Verification is a recorded verification run (chain walk or data hash check).
type Verification struct {
	ID               string
	Kind             string
	OK               bool
	FirstBrokenIndex *uint64
	BlocksChecked    uint64
	Reason           string
	StartedAt        time.Time
	Duration         time.Duration
}

// VerificationStats aggregates the verification history.
type VerificationStats struct {
	Total   int
	Passed  int
	Failed  int
	LastRun *time.Time
	Recent  []Verification
}
