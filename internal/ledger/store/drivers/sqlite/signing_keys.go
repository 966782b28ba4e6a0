package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite/gen"
)

type signingKeysRepo struct {
	q *gen.Queries
}

func (r *signingKeysRepo) CreateSigningKey(ctx context.Context, key domain.SigningKey) error {
	err := r.q.CreateSigningKey(ctx, gen.CreateSigningKeyParams{
		Kid:                 key.Kid,
		Algorithm:           key.Algorithm,
		PublicKey:           key.PublicKeyPEM,
		PrivateKeyEncrypted: key.PrivateKeyEncrypted,
		CreatedAt:           key.CreatedAt.UTC(),
		RetiredAt:           mapOptionalTime(key.RetiredAt),
	})
	return mapConstraint(err)
}

func (r *signingKeysRepo) GetSigningKey(ctx context.Context, kid string) (domain.SigningKey, error) {
	row, err := r.q.GetSigningKey(ctx, kid)
	if err != nil {
		return domain.SigningKey{}, mapNotFound(err)
	}
	return mapSigningKey(row), nil
}

func (r *signingKeysRepo) ListSigningKeys(ctx context.Context) ([]domain.SigningKey, error) {
	rows, err := r.q.ListSigningKeys(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]domain.SigningKey, len(rows))
	for i, row := range rows {
		keys[i] = mapSigningKey(row)
	}
	return keys, nil
}

func (r *signingKeysRepo) RetireSigningKey(ctx context.Context, kid string, at time.Time) error {
	n, err := r.q.RetireSigningKey(ctx, gen.RetireSigningKeyParams{
		RetiredAt: sql.NullTime{Time: at.UTC(), Valid: true},
		Kid:       kid,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapSigningKey(row gen.SigningKey) domain.SigningKey {
	return domain.SigningKey{
		Kid:                 row.Kid,
		Algorithm:           row.Algorithm,
		PublicKeyPEM:        row.PublicKey,
		PrivateKeyEncrypted: row.PrivateKeyEncrypted,
		CreatedAt:           row.CreatedAt.UTC(),
		RetiredAt:           mapNullTimePtr(row.RetiredAt),
	}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
