package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite/gen"
)

type verificationsRepo struct {
	q *gen.Queries
}

func (r *verificationsRepo) RecordVerification(ctx context.Context, v domain.Verification) error {
	var broken sql.NullInt64
	if v.FirstBrokenIndex != nil {
		broken = sql.NullInt64{Int64: int64(*v.FirstBrokenIndex), Valid: true}
	}
	err := r.q.InsertVerification(ctx, gen.InsertVerificationParams{
		ID:               v.ID,
		Kind:             v.Kind,
		Ok:               v.OK,
		FirstBrokenIndex: broken,
		BlocksChecked:    int64(v.BlocksChecked),
		Reason:           v.Reason,
		StartedAt:        v.StartedAt.UTC(),
		DurationMs:       v.Duration.Milliseconds(),
	})
	return mapConstraint(err)
}

func (r *verificationsRepo) ListRecentVerifications(ctx context.Context, limit int) ([]domain.Verification, error) {
	rows, err := r.q.ListRecentVerifications(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	out := make([]domain.Verification, len(rows))
	for i, row := range rows {
		var broken *uint64
		if row.FirstBrokenIndex.Valid {
			v := uint64(row.FirstBrokenIndex.Int64)
			broken = &v
		}
		out[i] = domain.Verification{
			ID:               row.ID,
			Kind:             row.Kind,
			OK:               row.Ok,
			FirstBrokenIndex: broken,
			BlocksChecked:    uint64(row.BlocksChecked),
			Reason:           row.Reason,
			StartedAt:        row.StartedAt.UTC(),
			Duration:         time.Duration(row.DurationMs) * time.Millisecond,
		}
	}
	return out, nil
}

func (r *verificationsRepo) CountVerifications(ctx context.Context) (int, int, error) {
	row, err := r.q.CountVerifications(ctx)
	if err != nil {
		return 0, 0, err
	}
	return int(row.Total), int(row.Passed), nil
}
