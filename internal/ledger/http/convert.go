package http

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
)

func blockToSDK(b domain.Block) ledgersdk.Block {
	return ledgersdk.Block{
		Index:        b.Index,
		Timestamp:    b.Timestamp.UTC(),
		Payload:      b.Payload,
		PreviousHash: hex.EncodeToString(b.PreviousHash),
		BlockHash:    hex.EncodeToString(b.BlockHash),
		Signature:    b.Signature,
		SignerKeyID:  b.SignerKeyID,
		RequestID:    b.RequestID,
	}
}

func blocksToSDK(bs []domain.Block) []ledgersdk.Block {
	out := make([]ledgersdk.Block, 0, len(bs))
	for _, b := range bs {
		out = append(out, blockToSDK(b))
	}
	return out
}

func verificationToSDK(r domain.VerificationResult) ledgersdk.VerifyResponse {
	return ledgersdk.VerifyResponse{
		OK:               r.OK,
		FirstBrokenIndex: r.FirstBrokenIndex,
		BlocksChecked:    r.BlocksChecked,
		Reason:           r.Reason,
	}
}

func statsToSDK(s domain.VerificationStats) ledgersdk.StatsResponse {
	recent := make([]ledgersdk.VerificationRecord, 0, len(s.Recent))
	for _, v := range s.Recent {
		recent = append(recent, ledgersdk.VerificationRecord{
			ID:               v.ID,
			Kind:             v.Kind,
			OK:               v.OK,
			FirstBrokenIndex: v.FirstBrokenIndex,
			BlocksChecked:    v.BlocksChecked,
			Reason:           v.Reason,
			StartedAt:        v.StartedAt.UTC(),
			DurationMS:       v.Duration.Milliseconds(),
		})
	}
	return ledgersdk.StatsResponse{
		Total:   s.Total,
		Passed:  s.Passed,
		Failed:  s.Failed,
		LastRun: s.LastRun,
		Recent:  recent,
	}
}

func alertToSDK(a domain.Alert) ledgersdk.Alert {
	return ledgersdk.Alert{
		ID:             a.ID,
		Condition:      a.Condition,
		Severity:       string(a.Severity),
		Title:          a.Title,
		Description:    a.Description,
		Source:         a.Source,
		Status:         a.Status(),
		Metadata:       a.Metadata,
		CreatedAt:      a.CreatedAt.UTC(),
		AcknowledgedAt: a.AcknowledgedAt,
		ResolvedAt:     a.ResolvedAt,
	}
}

// decodePayload turns a request payload into bytes according to its encoding.
func decodePayload(data, encoding string) ([]byte, error) {
	switch encoding {
	case "", ledgersdk.EncodingBase64:
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("payload is not valid base64: %w", err)
		}
		return b, nil
	case ledgersdk.EncodingText:
		return []byte(data), nil
	default:
		return nil, fmt.Errorf("unknown encoding %q (use base64 or text)", encoding)
	}
}

// queryUint reads an optional unsigned query parameter.
func queryUint(q url.Values, name string, def uint64) (uint64, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return v, nil
}

// queryInt reads an optional positive integer query parameter.
func queryInt(q url.Values, name string) (int, error) {
	s := q.Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return v, nil
}
