package chain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
)

// DefaultBatchSize is how many blocks are read per storage round trip while
// verifying or scanning.
const DefaultBatchSize = 256

// Signer authorises and signs block digests.
type Signer interface {
	// Sign validates code and signs digest with the active key.
	Sign(ctx context.Context, digest []byte, code string) (sig []byte, keyID string, err error)

	// Verify reports whether sig is valid for digest under keyID, active or retired.
	Verify(digest, sig []byte, keyID string) bool
}

type Options struct {
	Store     store.Store
	Signer    Signer
	Now       func() time.Time
	Logger    *slog.Logger
	BatchSize int
}

// Ledger is the append-only hash chain. All writes go through Append, which
// is serialised; readers only hold the lock long enough to snapshot the head.
type Ledger struct {
	mu   sync.RWMutex
	head domain.Head

	store  store.Store
	signer Signer
	now    func() time.Time
	log    *slog.Logger
	batch  int
}

func New(opts Options) *Ledger {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Ledger{
		head:   domain.Head{Index: -1, BlockHash: GenesisHash},
		store:  opts.Store,
		signer: opts.Signer,
		now:    opts.Now,
		log:    opts.Logger,
		batch:  opts.BatchSize,
	}
}

// Open loads the head from storage. It must be called before Append.
func (l *Ledger) Open(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, err := l.store.Blocks().LastBlock(ctx)
	if errors.Is(err, store.ErrNotFound) {
		l.head = domain.Head{Index: -1, BlockHash: GenesisHash}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: load head: %v", domain.ErrStorage, err)
	}

	l.head = domain.Head{
		Index:     int64(last.Index),
		BlockHash: last.BlockHash,
		Timestamp: last.Timestamp,
	}
	l.log.Info("ledger opened", "head_index", last.Index)
	return nil
}

// Append signs payload into a new block. When requestID names a block that
// was already appended, that block is returned with replayed=true and
// nothing new is written.
func (l *Ledger) Append(ctx context.Context, payload []byte, code, requestID string) (b domain.Block, replayed bool, err error) {
	if err := ctx.Err(); err != nil {
		return domain.Block{}, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if requestID != "" {
		existing, err := l.store.Blocks().GetBlockByRequestID(ctx, requestID)
		switch {
		case err == nil:
			return existing, true, nil
		case !errors.Is(err, store.ErrNotFound):
			return domain.Block{}, false, fmt.Errorf("%w: lookup request id: %v", domain.ErrStorage, err)
		}
	}

	index := l.head.Length()
	prev := l.head.BlockHash

	// Timestamps never go backwards even if the wall clock does.
	ts := l.now().UTC().Round(0)
	if ts.Before(l.head.Timestamp) {
		ts = l.head.Timestamp
	}

	body := append([]byte{}, payload...)
	digest := Hash(index, ts, body, prev)

	if err := ctx.Err(); err != nil {
		return domain.Block{}, false, err
	}

	sig, keyID, err := l.signer.Sign(ctx, digest, code)
	if err != nil {
		return domain.Block{}, false, err
	}

	b = domain.Block{
		Index:        index,
		Timestamp:    ts,
		Payload:      body,
		PreviousHash: prev,
		BlockHash:    digest,
		Signature:    sig,
		SignerKeyID:  keyID,
		RequestID:    requestID,
	}

	err = l.store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Blocks().AppendBlock(ctx, b)
	})
	if err != nil {
		return domain.Block{}, false, fmt.Errorf("%w: append block %d: %v", domain.ErrStorage, index, err)
	}

	l.head = domain.Head{Index: int64(index), BlockHash: digest, Timestamp: ts}
	return b, false, nil
}

// Exclusive runs fn holding the append lock. Key changes go through here
// so no append signs with a key that is being retired.
func (l *Ledger) Exclusive(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

// Head returns the current tip. An empty chain has index -1 and the genesis hash.
func (l *Ledger) Head() domain.Head {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.head
}

// Length is the number of blocks in the chain.
func (l *Ledger) Length() uint64 {
	return l.Head().Length()
}

// GetRange returns blocks with start <= index < end.
func (l *Ledger) GetRange(ctx context.Context, start, end uint64) ([]domain.Block, error) {
	length := l.Length()
	if start > end || end > length {
		return nil, fmt.Errorf("%w: [%d, %d) with length %d", domain.ErrOutOfRange, start, end, length)
	}
	if start == end {
		return []domain.Block{}, nil
	}

	blocks, err := l.store.Blocks().ListBlocks(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: list blocks: %v", domain.ErrStorage, err)
	}
	return blocks, nil
}

// ScanRange calls fn for each block in [start, end), reading in batches and
// checking ctx between them. fn returning an error stops the scan.
func (l *Ledger) ScanRange(ctx context.Context, start, end uint64, fn func(domain.Block) error) error {
	length := l.Length()
	if start > end || end > length {
		return fmt.Errorf("%w: [%d, %d) with length %d", domain.ErrOutOfRange, start, end, length)
	}

	for lo := start; lo < end; lo += uint64(l.batch) {
		if err := ctx.Err(); err != nil {
			return err
		}
		hi := min(lo+uint64(l.batch), end)

		blocks, err := l.store.Blocks().ListBlocks(ctx, lo, hi)
		if err != nil {
			return fmt.Errorf("%w: list blocks: %v", domain.ErrStorage, err)
		}
		for _, b := range blocks {
			if err := fn(b); err != nil {
				return err
			}
		}
	}
	return nil
}

// Scan calls fn for every block present when the scan starts.
func (l *Ledger) Scan(ctx context.Context, fn func(domain.Block) error) error {
	return l.ScanRange(ctx, 0, l.Length(), fn)
}

// VerifyIntegrity walks the chain recomputing hashes, linkage and
// signatures. It stops at the first broken block. The returned error is
// only set when the walk itself could not finish (cancellation, storage).
func (l *Ledger) VerifyIntegrity(ctx context.Context) (domain.VerificationResult, error) {
	length := l.Length()
	prev := GenesisHash
	var checked uint64

	fail := func(index uint64, reason string) domain.VerificationResult {
		return domain.VerificationResult{
			OK:               false,
			FirstBrokenIndex: &index,
			BlocksChecked:    checked + 1,
			Reason:           reason,
		}
	}

	for lo := uint64(0); lo < length; lo += uint64(l.batch) {
		if err := ctx.Err(); err != nil {
			return domain.VerificationResult{}, err
		}
		hi := min(lo+uint64(l.batch), length)

		blocks, err := l.store.Blocks().ListBlocks(ctx, lo, hi)
		if err != nil {
			return domain.VerificationResult{}, fmt.Errorf("%w: list blocks: %v", domain.ErrStorage, err)
		}

		next := 0
		for expected := lo; expected < hi; expected++ {
			if next >= len(blocks) || blocks[next].Index != expected {
				return fail(expected, ReasonBlockMissing), nil
			}
			b := blocks[next]
			next++

			if reason := checkBlock(b, prev, l.signer.Verify); reason != "" {
				return fail(expected, reason), nil
			}
			prev = b.BlockHash
			checked++
		}
	}

	return domain.VerificationResult{OK: true, BlocksChecked: checked}, nil
}

// VerifyFunc reports whether sig is valid for digest under keyID.
type VerifyFunc func(digest, sig []byte, keyID string) bool

// Reasons reported by a failed verification.
const (
	ReasonBlockMissing       = "block missing"
	ReasonHashMismatch       = "block hash mismatch"
	ReasonPrevHashMismatch   = "previous hash mismatch"
	ReasonSignatureInvalid   = "signature invalid"
	ReasonIndexDiscontinuity = "index discontinuity"
)

// checkBlock returns a non-empty reason when b is not a valid successor of prev.
func checkBlock(b domain.Block, prev []byte, verify VerifyFunc) string {
	if !bytes.Equal(HashBlock(b), b.BlockHash) {
		return ReasonHashMismatch
	}
	if !bytes.Equal(b.PreviousHash, prev) {
		return ReasonPrevHashMismatch
	}
	if !verify(b.BlockHash, b.Signature, b.SignerKeyID) {
		return ReasonSignatureInvalid
	}
	return ""
}

// VerifyBlocks checks a detached sequence of blocks, such as a decoded
// export, starting from prev. Index continuity is checked from the first
// block's index.
func VerifyBlocks(blocks []domain.Block, prev []byte, verify VerifyFunc) domain.VerificationResult {
	var checked uint64

	for i, b := range blocks {
		var reason string
		if i > 0 && b.Index != blocks[i-1].Index+1 {
			reason = ReasonIndexDiscontinuity
		} else {
			reason = checkBlock(b, prev, verify)
		}
		if reason != "" {
			idx := b.Index
			return domain.VerificationResult{FirstBrokenIndex: &idx, BlocksChecked: checked + 1, Reason: reason}
		}
		prev = b.BlockHash
		checked++
	}
	return domain.VerificationResult{OK: true, BlocksChecked: checked}
}
