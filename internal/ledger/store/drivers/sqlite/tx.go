package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite/gen"
)

// repos hands out repositories bound to one query target: the pool for
// Store, a single *sql.Tx for txStore.
type repos struct {
	q *gen.Queries
}

func (r repos) Blocks() store.Blocks               { return &blocksRepo{q: r.q} }
func (r repos) SigningKeys() store.SigningKeys     { return &signingKeysRepo{q: r.q} }
func (r repos) TOTPSecrets() store.TOTPSecrets     { return &totpSecretsRepo{q: r.q} }
func (r repos) Verifications() store.Verifications { return &verificationsRepo{q: r.q} }
func (r repos) Alerts() store.Alerts               { return &alertsRepo{q: r.q} }

var errNestedTx = errors.New("sqlite: nested transactions are not supported")

// txStore is the store.Tx view of one open transaction. Lifecycle methods
// that only make sense on the pool are no-ops or refuse.
type txStore struct {
	repos
	sqlTx *sql.Tx
}

func (t *txStore) Commit() error   { return t.sqlTx.Commit() }
func (t *txStore) Rollback() error { return t.sqlTx.Rollback() }

func (*txStore) Close() error                         { return nil }
func (*txStore) Ping(context.Context) error           { return nil }
func (*txStore) ApplyMigrations() error               { return nil }
func (*txStore) Tx(context.Context) (store.Tx, error) { return nil, errNestedTx }
func (*txStore) WithTx(context.Context, func(store.Tx) error) error {
	return errNestedTx
}
