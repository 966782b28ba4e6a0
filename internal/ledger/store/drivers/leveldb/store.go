// Package leveldb is an embedded key/value store driver. Records are JSON
// values under typed key prefixes; block keys are zero padded so iteration
// order is index order.
package leveldb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const schemaVersion = "1"

var (
	keySchema      = []byte("meta/schema")
	prefixBlock    = "block/"
	prefixReqID    = "reqid/"
	prefixKey      = "key/"
	keyTOTP        = []byte("totp/current")
	prefixVerifier = "verif/"
	prefixAlert    = "alert/"
)

// kv is the read/write surface shared by *leveldb.DB and *leveldb.Transaction.
type kv interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	Has(key []byte, ro *opt.ReadOptions) (bool, error)
	Put(key, value []byte, wo *opt.WriteOptions) error
	Delete(key []byte, wo *opt.WriteOptions) error
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

type Store struct {
	db *leveldb.DB

	// mu serialises read-modify-write operations and transactions. Writes
	// to the DB block while a transaction is open, so holding mu for the
	// life of a transaction keeps compare-and-set operations honest.
	mu sync.Mutex
}

// NewStore opens (or creates) a database in dir.
func NewStore(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("leveldb: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// NewMemStore opens a database backed by memory. Used in tests.
func NewMemStore() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.db.GetProperty("leveldb.stats")
	return err
}

// ApplyMigrations stamps the schema version, refusing to open data written
// by a different layout.
func (s *Store) ApplyMigrations() error {
	v, err := s.db.Get(keySchema, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return s.db.Put(keySchema, []byte(schemaVersion), &opt.WriteOptions{Sync: true})
	}
	if err != nil {
		return err
	}
	if string(v) != schemaVersion {
		return fmt.Errorf("leveldb: unsupported schema version %q", v)
	}
	return nil
}

func (s *Store) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := s.lock()
	tr, err := s.db.OpenTransaction()
	if err != nil {
		unlock()
		return nil, err
	}
	return &txStore{tr: tr, unlock: unlock}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Blocks() store.Blocks               { return &blocksRepo{kv: s.db, lock: s.lock} }
func (s *Store) SigningKeys() store.SigningKeys     { return &signingKeysRepo{kv: s.db, lock: s.lock} }
func (s *Store) TOTPSecrets() store.TOTPSecrets     { return &totpSecretsRepo{kv: s.db, lock: s.lock} }
func (s *Store) Verifications() store.Verifications { return &verificationsRepo{kv: s.db} }
func (s *Store) Alerts() store.Alerts               { return &alertsRepo{kv: s.db, lock: s.lock} }

type txStore struct {
	tr     *leveldb.Transaction
	once   sync.Once
	unlock func()
	done   bool
}

func (t *txStore) finish() {
	t.once.Do(func() {
		t.done = true
		t.unlock()
	})
}

func (t *txStore) Commit() error {
	if t.done {
		return leveldb.ErrClosed
	}
	defer t.finish()
	return t.tr.Commit()
}

func (t *txStore) Rollback() error {
	if t.done {
		return nil
	}
	defer t.finish()
	t.tr.Discard()
	return nil
}

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

var errNestedTx = errors.New("leveldb: nested transactions are not supported")

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, errNestedTx }
func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
}

func noLock() func() { return func() {} }

func (t *txStore) Blocks() store.Blocks               { return &blocksRepo{kv: t.tr, lock: noLock} }
func (t *txStore) SigningKeys() store.SigningKeys     { return &signingKeysRepo{kv: t.tr, lock: noLock} }
func (t *txStore) TOTPSecrets() store.TOTPSecrets     { return &totpSecretsRepo{kv: t.tr, lock: noLock} }
func (t *txStore) Verifications() store.Verifications { return &verificationsRepo{kv: t.tr} }
func (t *txStore) Alerts() store.Alerts               { return &alertsRepo{kv: t.tr, lock: noLock} }

func mapNotFound(err error) error {
	if errors.Is(err, leveldb.ErrNotFound) {
		return store.ErrNotFound
	}
	return err
}
