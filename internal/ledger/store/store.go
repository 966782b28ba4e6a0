package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the sqlite and
// leveldb drivers. Sub-repositories keep concerns apart and make it obvious
// when code runs inside a transaction.
type Store interface {
	Blocks() Blocks
	SigningKeys() SigningKeys
	TOTPSecrets() TOTPSecrets
	Verifications() Verifications
	Alerts() Alerts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the underlying storage is still reachable.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Blocks interface {
	// AppendBlock inserts a block. ErrAlreadyExists if the index or the
	// request id is already taken.
	AppendBlock(ctx context.Context, b domain.Block) error

	GetBlock(ctx context.Context, index uint64) (domain.Block, error)

	// GetBlockByRequestID looks a block up by its client idempotency key.
	GetBlockByRequestID(ctx context.Context, requestID string) (domain.Block, error)

	// ListBlocks returns blocks with start <= index < end in index order.
	// Missing indices are simply absent from the result.
	ListBlocks(ctx context.Context, start, end uint64) ([]domain.Block, error)

	// LastBlock returns the block with the highest index, ErrNotFound when empty.
	LastBlock(ctx context.Context) (domain.Block, error)

	CountBlocks(ctx context.Context) (uint64, error)
}

type SigningKeys interface {
	CreateSigningKey(ctx context.Context, key domain.SigningKey) error

	GetSigningKey(ctx context.Context, kid string) (domain.SigningKey, error)

	// ListSigningKeys returns every key, retired ones included, oldest first.
	ListSigningKeys(ctx context.Context) ([]domain.SigningKey, error)

	// RetireSigningKey sets retired_at. Retiring an already retired key keeps
	// the original timestamp. ErrNotFound for unknown kids.
	RetireSigningKey(ctx context.Context, kid string, at time.Time) error
}

type TOTPSecrets interface {
	// GetTOTPSecret returns the single TOTP secret, ErrNotFound before the first one.
	GetTOTPSecret(ctx context.Context) (domain.TOTPSecret, error)

	// PutTOTPSecret replaces the secret, resetting last_used_step.
	PutTOTPSecret(ctx context.Context, secret domain.TOTPSecret) error

	// AdvanceLastUsedStep sets last_used_step to step if step is greater than
	// the stored value. It reports whether the step was consumed.
	AdvanceLastUsedStep(ctx context.Context, step int64) (bool, error)
}

type Verifications interface {
	RecordVerification(ctx context.Context, v domain.Verification) error

	// ListRecentVerifications returns up to limit runs, newest first.
	ListRecentVerifications(ctx context.Context, limit int) ([]domain.Verification, error)

	// CountVerifications returns the total number of runs and how many passed.
	CountVerifications(ctx context.Context) (total, passed int, err error)
}

type Alerts interface {
	CreateAlert(ctx context.Context, a domain.Alert) error

	GetAlert(ctx context.Context, id string) (domain.Alert, error)

	// ListAlerts returns up to limit alerts, newest first. With activeOnly
	// resolved alerts are skipped.
	ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]domain.Alert, error)

	// FindActiveAlert returns the newest unresolved alert for condition,
	// ErrNotFound when there is none.
	FindActiveAlert(ctx context.Context, condition string) (domain.Alert, error)

	// UpdateAlertState stores acknowledged_at and resolved_at from a.
	// ErrNotFound for unknown ids.
	UpdateAlertState(ctx context.Context, a domain.Alert) error

	CountAlerts(ctx context.Context) (domain.AlertStats, error)
}
