package sqlite

import (
	"context"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite/gen"
)

type totpSecretsRepo struct {
	q *gen.Queries
}

func (r *totpSecretsRepo) GetTOTPSecret(ctx context.Context) (domain.TOTPSecret, error) {
	row, err := r.q.GetTOTPSecret(ctx)
	if err != nil {
		return domain.TOTPSecret{}, mapNotFound(err)
	}
	return domain.TOTPSecret{
		SecretEncrypted: row.SecretEncrypted,
		Period:          uint(row.Period),
		Digits:          int(row.Digits),
		Algorithm:       row.Algorithm,
		LastUsedStep:    row.LastUsedStep,
		CreatedAt:       row.CreatedAt.UTC(),
	}, nil
}

func (r *totpSecretsRepo) PutTOTPSecret(ctx context.Context, s domain.TOTPSecret) error {
	return r.q.PutTOTPSecret(ctx, gen.PutTOTPSecretParams{
		SecretEncrypted: s.SecretEncrypted,
		Period:          int64(s.Period),
		Digits:          int64(s.Digits),
		Algorithm:       s.Algorithm,
		LastUsedStep:    s.LastUsedStep,
		CreatedAt:       s.CreatedAt.UTC(),
	})
}

func (r *totpSecretsRepo) AdvanceLastUsedStep(ctx context.Context, step int64) (bool, error) {
	n, err := r.q.AdvanceLastUsedStep(ctx, step)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
