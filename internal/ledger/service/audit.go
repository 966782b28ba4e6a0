package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/chain"
	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/export"
	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/pkg/idx"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

// Policy decides where the TOTP code for an append comes from.
type Policy string

const (
	// PolicyInternal mints the current code inside the service. Callers
	// never see it.
	PolicyInternal Policy = "internal"

	// PolicySupplied requires every submission to carry a code, which is
	// consumed on use.
	PolicySupplied Policy = "supplied"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(s)); p {
	case PolicyInternal, PolicySupplied:
		return p, nil
	default:
		return "", fmt.Errorf("unknown totp policy %q (use internal or supplied)", s)
	}
}

const (
	defaultStatsLimit  = 10
	maxStatsLimit      = 100
	defaultSearchLimit = 50
	maxSearchLimit     = 1000
)

var errStopScan = errors.New("stop scan")

// AuditService is the entry point for submitting and checking audit records.
type AuditService struct {
	Ledger     *chain.Ledger
	TOTP       *TOTPService
	KeyManager *signx.KeyManager
	Store      store.Store
	Policy     Policy

	// MaxExportBlocks caps a single export. Zero means no cap.
	MaxExportBlocks uint64

	// Alerts receives integrity, signing and TOTP failures. Optional.
	Alerts *AlertService

	Now    func() time.Time
	Logger *slog.Logger
	Feed   feed.Publisher
}

// SubmitRequest is a single log submission.
type SubmitRequest struct {
	Payload []byte

	// Code is required under PolicySupplied and ignored otherwise.
	Code string

	// RequestID is an optional client-generated UUID. Resubmitting the same
	// id returns the original block instead of appending again.
	RequestID string
}

// SubmitLog appends req.Payload to the ledger. replayed is true when the
// request id had already been recorded.
func (s *AuditService) SubmitLog(ctx context.Context, req SubmitRequest) (b domain.Block, replayed bool, err error) {
	if req.RequestID != "" {
		id, err := uuid.Parse(req.RequestID)
		if err != nil {
			return domain.Block{}, false, fmt.Errorf("%w: request_id must be a UUID", ErrInvalidRequest)
		}
		req.RequestID = id.String()
	}

	code := req.Code
	switch s.Policy {
	case PolicySupplied:
		if code == "" {
			return domain.Block{}, false, fmt.Errorf("%w: totp_code is required", domain.ErrAuthentication)
		}
	default:
		current, err := s.TOTP.CurrentCode()
		if err != nil {
			raiseAlert(ctx, s.Alerts, s.logger(), domain.AlertTOTPFailure,
				"internal totp code unavailable: "+err.Error(), nil)
			return domain.Block{}, false, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
		}
		code = current.Code
	}

	b, replayed, err = s.Ledger.Append(ctx, req.Payload, code, req.RequestID)
	if err != nil {
		s.logger().Warn("log submission rejected", "error", err)
		if errors.Is(err, ErrSigningFailed) {
			raiseAlert(ctx, s.Alerts, s.logger(), domain.AlertSignatureFailed, err.Error(), nil)
		}
		return domain.Block{}, false, err
	}

	if !replayed {
		s.publish(feed.Event{Type: feed.EventBlockAppended, Data: feed.BlockAppended{
			Index:       b.Index,
			BlockHash:   hex.EncodeToString(b.BlockHash),
			SignerKeyID: b.SignerKeyID,
			Size:        len(b.Payload),
		}})
	}
	return b, replayed, nil
}

// Head returns the chain tip.
func (s *AuditService) Head() domain.Head {
	return s.Ledger.Head()
}

// GetRange returns blocks with start <= index < end.
func (s *AuditService) GetRange(ctx context.Context, start, end uint64) ([]domain.Block, error) {
	return s.Ledger.GetRange(ctx, start, end)
}

// Verify walks the whole chain. The run is recorded in the verification
// history and announced on the feed whether it passes or not.
func (s *AuditService) Verify(ctx context.Context) (domain.VerificationResult, error) {
	started := s.now()
	res, err := s.Ledger.VerifyIntegrity(ctx)
	if err != nil {
		return domain.VerificationResult{}, err
	}

	s.record(ctx, domain.Verification{
		Kind:             domain.VerificationChain,
		OK:               res.OK,
		FirstBrokenIndex: res.FirstBrokenIndex,
		BlocksChecked:    res.BlocksChecked,
		Reason:           res.Reason,
		StartedAt:        started,
		Duration:         s.now().Sub(started),
	})

	if res.OK {
		s.logger().Info("chain verified", "blocks_checked", res.BlocksChecked)
	} else {
		s.logger().Error("chain integrity violation", "first_broken_index", *res.FirstBrokenIndex,
			"reason", res.Reason, "blocks_checked", res.BlocksChecked)
		s.raiseIntegrity(ctx, res)
	}
	s.publish(feed.Event{Type: feed.EventIntegrityChecked, Data: feed.IntegrityChecked{
		OK:               res.OK,
		FirstBrokenIndex: res.FirstBrokenIndex,
		BlocksChecked:    res.BlocksChecked,
		Reason:           res.Reason,
	}})
	return res, nil
}

// DataVerification is the outcome of VerifyData.
type DataVerification struct {
	OK           bool   `json:"ok"`
	ComputedHash string `json:"computed_hash"`
}

// VerifyData checks that SHA-256(data) equals expectedHash (hex).
func (s *AuditService) VerifyData(ctx context.Context, data []byte, expectedHash string) (DataVerification, error) {
	expected, err := hex.DecodeString(strings.TrimSpace(expectedHash))
	if err != nil || len(expected) != sha256.Size {
		return DataVerification{}, fmt.Errorf("%w: expected_hash must be %d hex bytes", ErrInvalidRequest, sha256.Size)
	}

	started := s.now()
	sum := sha256.Sum256(data)
	ok := subtle.ConstantTimeCompare(sum[:], expected) == 1

	v := domain.Verification{
		Kind:          domain.VerificationData,
		OK:            ok,
		BlocksChecked: 0,
		StartedAt:     started,
		Duration:      s.now().Sub(started),
	}
	if !ok {
		v.Reason = "data hash mismatch"
	}
	s.record(ctx, v)

	return DataVerification{OK: ok, ComputedHash: hex.EncodeToString(sum[:])}, nil
}

// Stats summarises the verification history with the most recent runs.
func (s *AuditService) Stats(ctx context.Context, limit int) (domain.VerificationStats, error) {
	switch {
	case limit <= 0:
		limit = defaultStatsLimit
	case limit > maxStatsLimit:
		limit = maxStatsLimit
	}

	total, passed, err := s.Store.Verifications().CountVerifications(ctx)
	if err != nil {
		return domain.VerificationStats{}, fmt.Errorf("failed to count verifications: %w", err)
	}
	recent, err := s.Store.Verifications().ListRecentVerifications(ctx, limit)
	if err != nil {
		return domain.VerificationStats{}, fmt.Errorf("failed to list verifications: %w", err)
	}

	stats := domain.VerificationStats{
		Total:  total,
		Passed: passed,
		Failed: total - passed,
		Recent: recent,
	}
	if len(recent) > 0 {
		last := recent[0].StartedAt
		stats.LastRun = &last
	}
	return stats, nil
}

// Trail summarises the chain: size, tip hash and the time span it covers.
func (s *AuditService) Trail(ctx context.Context) (domain.TrailInfo, error) {
	head := s.Ledger.Head()
	info := domain.TrailInfo{BlockCount: head.Length(), HeadHash: head.BlockHash}
	if head.Empty() {
		return info, nil
	}

	first, err := s.Store.Blocks().GetBlock(ctx, 0)
	if err != nil {
		return domain.TrailInfo{}, fmt.Errorf("%w: load first block: %v", domain.ErrStorage, err)
	}
	firstTime, lastTime := first.Timestamp, head.Timestamp
	info.FirstBlockTime = &firstTime
	info.LastBlockTime = &lastTime
	return info, nil
}

// Search returns up to limit blocks whose payload matches the glob pattern,
// oldest first.
func (s *AuditService) Search(ctx context.Context, pattern string, limit int) ([]domain.Block, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty search pattern", ErrInvalidRequest)
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern %q: %v", ErrInvalidRequest, pattern, err)
	}
	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}

	var matches []domain.Block
	err = s.Ledger.Scan(ctx, func(b domain.Block) error {
		if g.Match(string(b.Payload)) {
			matches = append(matches, b)
			if len(matches) >= limit {
				return errStopScan
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return nil, err
	}
	return matches, nil
}

// Export streams [start, end) in format to w. An end of zero means the
// current head. The range is fixed when the export starts.
func (s *AuditService) Export(ctx context.Context, w io.Writer, format export.Format, start, end uint64) error {
	length := s.Ledger.Length()
	if end == 0 {
		end = length
	}
	if start > end || end > length {
		return fmt.Errorf("%w: [%d, %d) with length %d", domain.ErrOutOfRange, start, end, length)
	}
	if s.MaxExportBlocks > 0 && end-start > s.MaxExportBlocks {
		return fmt.Errorf("%w: export of %d blocks exceeds the limit of %d", ErrInvalidRequest, end-start, s.MaxExportBlocks)
	}

	ew, err := export.NewWriter(w, format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := s.Ledger.ScanRange(ctx, start, end, ew.Write); err != nil {
		return err
	}
	return ew.Close()
}

// DecodeExport reads an export produced by Export.
func (s *AuditService) DecodeExport(format export.Format, r io.Reader) ([]domain.Block, error) {
	return export.Decode(r, format)
}

// VerifyExport checks decoded export blocks against every key the service
// knows, retired ones included.
func (s *AuditService) VerifyExport(blocks []domain.Block) domain.VerificationResult {
	keys := s.KeyManager.KeySet()
	return export.Verify(blocks, func(digest, sig []byte, kid string) bool {
		return keys.Verify(kid, digest, sig)
	})
}

// VerifyExportFile decodes an export and checks it against the service's
// keys. Undecodable input is ErrInvalidRequest; a broken chain is a result,
// not an error. The run is recorded in the verification history.
func (s *AuditService) VerifyExportFile(ctx context.Context, format export.Format, r io.Reader) (domain.VerificationResult, error) {
	started := s.now()
	blocks, err := s.DecodeExport(format, r)
	if err != nil {
		return domain.VerificationResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	res := s.VerifyExport(blocks)
	s.record(ctx, domain.Verification{
		Kind:             domain.VerificationExport,
		OK:               res.OK,
		FirstBrokenIndex: res.FirstBrokenIndex,
		BlocksChecked:    res.BlocksChecked,
		Reason:           res.Reason,
		StartedAt:        started,
		Duration:         s.now().Sub(started),
	})
	if !res.OK {
		s.logger().Warn("submitted export failed verification",
			"first_broken_index", *res.FirstBrokenIndex, "reason", res.Reason)
	}
	return res, nil
}

// raiseIntegrity reports a failed chain walk. A bad signature is also a
// signing problem and raises that condition too.
func (s *AuditService) raiseIntegrity(ctx context.Context, res domain.VerificationResult) {
	index := strconv.FormatUint(*res.FirstBrokenIndex, 10)
	meta := map[string]string{"first_broken_index": index, "reason": res.Reason}
	desc := fmt.Sprintf("block %s: %s", index, res.Reason)

	raiseAlert(ctx, s.Alerts, s.logger(), domain.AlertChainIntegrity, desc, meta)
	if res.Reason == chain.ReasonSignatureInvalid {
		raiseAlert(ctx, s.Alerts, s.logger(), domain.AlertSignatureFailed, desc, meta)
	}
}

func (s *AuditService) record(ctx context.Context, v domain.Verification) {
	v.ID = idx.New().String()
	v.StartedAt = v.StartedAt.UTC()
	if err := s.Store.Verifications().RecordVerification(ctx, v); err != nil {
		s.logger().Error("failed to record verification", "kind", v.Kind, "error", err)
	}
}

func (s *AuditService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuditService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *AuditService) publish(ev feed.Event) {
	if s.Feed != nil {
		s.Feed.Publish(ev)
	}
}
