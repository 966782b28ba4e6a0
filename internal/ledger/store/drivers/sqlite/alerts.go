package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite/gen"
)

type alertsRepo struct {
	q *gen.Queries
}

func (r *alertsRepo) CreateAlert(ctx context.Context, a domain.Alert) error {
	meta := "{}"
	if len(a.Metadata) > 0 {
		b, err := json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("sqlite: encode alert metadata: %w", err)
		}
		meta = string(b)
	}
	err := r.q.InsertAlert(ctx, gen.InsertAlertParams{
		ID:             a.ID,
		Condition:      a.Condition,
		Severity:       string(a.Severity),
		Title:          a.Title,
		Description:    a.Description,
		Source:         a.Source,
		Metadata:       meta,
		CreatedAt:      a.CreatedAt.UTC(),
		AcknowledgedAt: mapOptionalTime(a.AcknowledgedAt),
		ResolvedAt:     mapOptionalTime(a.ResolvedAt),
	})
	return mapConstraint(err)
}

func (r *alertsRepo) GetAlert(ctx context.Context, id string) (domain.Alert, error) {
	row, err := r.q.GetAlert(ctx, id)
	if err != nil {
		return domain.Alert{}, mapNotFound(err)
	}
	return mapAlert(row)
}

func (r *alertsRepo) ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]domain.Alert, error) {
	var (
		rows []gen.Alert
		err  error
	)
	if activeOnly {
		rows, err = r.q.ListActiveAlerts(ctx, int64(limit))
	} else {
		rows, err = r.q.ListAlerts(ctx, int64(limit))
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.Alert, 0, len(rows))
	for _, row := range rows {
		a, err := mapAlert(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *alertsRepo) FindActiveAlert(ctx context.Context, condition string) (domain.Alert, error) {
	row, err := r.q.FindActiveAlert(ctx, condition)
	if err != nil {
		return domain.Alert{}, mapNotFound(err)
	}
	return mapAlert(row)
}

func (r *alertsRepo) UpdateAlertState(ctx context.Context, a domain.Alert) error {
	n, err := r.q.UpdateAlertState(ctx, gen.UpdateAlertStateParams{
		AcknowledgedAt: mapOptionalTime(a.AcknowledgedAt),
		ResolvedAt:     mapOptionalTime(a.ResolvedAt),
		ID:             a.ID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: alert %s", store.ErrNotFound, a.ID)
	}
	return nil
}

func (r *alertsRepo) CountAlerts(ctx context.Context) (domain.AlertStats, error) {
	rows, err := r.q.CountAlertsBySeverity(ctx)
	if err != nil {
		return domain.AlertStats{}, err
	}

	stats := domain.AlertStats{BySeverity: make(map[domain.AlertSeverity]int, len(rows))}
	for _, row := range rows {
		stats.Total += int(row.Total)
		stats.Active += int(row.Active)
		stats.Acknowledged += int(row.Acknowledged)
		stats.BySeverity[domain.AlertSeverity(row.Severity)] = int(row.Total)
	}
	return stats, nil
}

func mapAlert(row gen.Alert) (domain.Alert, error) {
	var meta map[string]string
	if row.Metadata != "" && row.Metadata != "{}" {
		if err := json.Unmarshal([]byte(row.Metadata), &meta); err != nil {
			return domain.Alert{}, fmt.Errorf("sqlite: decode alert %s metadata: %w", row.ID, err)
		}
	}
	return domain.Alert{
		ID:             row.ID,
		Condition:      row.Condition,
		Severity:       domain.AlertSeverity(row.Severity),
		Title:          row.Title,
		Description:    row.Description,
		Source:         row.Source,
		Metadata:       meta,
		CreatedAt:      row.CreatedAt.UTC(),
		AcknowledgedAt: mapNullTimePtr(row.AcknowledgedAt),
		ResolvedAt:     mapNullTimePtr(row.ResolvedAt),
	}, nil
}
