package leveldb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type alertRecord struct {
	ID             string            `json:"id"`
	Condition      string            `json:"condition"`
	Severity       string            `json:"severity"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Source         string            `json:"source,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
}

// alertsRepo keys alerts by their ULID, so reverse iteration is newest first.
type alertsRepo struct {
	kv   kv
	lock func() func()
}

func (r *alertsRepo) CreateAlert(ctx context.Context, a domain.Alert) error {
	defer r.lock()()

	k := []byte(prefixAlert + a.ID)
	if ok, err := r.kv.Has(k, nil); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: alert %s", store.ErrAlreadyExists, a.ID)
	}
	return r.put(a)
}

func (r *alertsRepo) GetAlert(ctx context.Context, id string) (domain.Alert, error) {
	val, err := r.kv.Get([]byte(prefixAlert+id), nil)
	if err != nil {
		return domain.Alert{}, mapNotFound(err)
	}
	return decodeAlert(val)
}

func (r *alertsRepo) ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]domain.Alert, error) {
	var out []domain.Alert
	err := r.eachNewestFirst(func(a domain.Alert) bool {
		if !activeOnly || a.Active() {
			out = append(out, a)
		}
		return limit <= 0 || len(out) < limit
	})
	return out, err
}

func (r *alertsRepo) FindActiveAlert(ctx context.Context, condition string) (domain.Alert, error) {
	var found *domain.Alert
	err := r.eachNewestFirst(func(a domain.Alert) bool {
		if a.Active() && a.Condition == condition {
			found = &a
			return false
		}
		return true
	})
	if err != nil {
		return domain.Alert{}, err
	}
	if found == nil {
		return domain.Alert{}, store.ErrNotFound
	}
	return *found, nil
}

func (r *alertsRepo) UpdateAlertState(ctx context.Context, a domain.Alert) error {
	defer r.lock()()

	current, err := r.GetAlert(ctx, a.ID)
	if err != nil {
		return err
	}
	current.AcknowledgedAt = a.AcknowledgedAt
	current.ResolvedAt = a.ResolvedAt
	return r.put(current)
}

func (r *alertsRepo) CountAlerts(ctx context.Context) (domain.AlertStats, error) {
	stats := domain.AlertStats{BySeverity: make(map[domain.AlertSeverity]int)}
	err := r.eachNewestFirst(func(a domain.Alert) bool {
		stats.Total++
		stats.BySeverity[a.Severity]++
		if a.Active() {
			stats.Active++
			if a.Acknowledged() {
				stats.Acknowledged++
			}
		}
		return true
	})
	return stats, err
}

// eachNewestFirst calls fn for every alert until it returns false.
func (r *alertsRepo) eachNewestFirst(fn func(domain.Alert) bool) error {
	it := r.kv.NewIterator(util.BytesPrefix([]byte(prefixAlert)), nil)
	defer it.Release()

	for ok := it.Last(); ok; ok = it.Prev() {
		a, err := decodeAlert(it.Value())
		if err != nil {
			return err
		}
		if !fn(a) {
			break
		}
	}
	return it.Error()
}

func (r *alertsRepo) put(a domain.Alert) error {
	val, err := json.Marshal(alertRecord{
		ID:             a.ID,
		Condition:      a.Condition,
		Severity:       string(a.Severity),
		Title:          a.Title,
		Description:    a.Description,
		Source:         a.Source,
		Metadata:       a.Metadata,
		CreatedAt:      a.CreatedAt.UTC(),
		AcknowledgedAt: utcPtr(a.AcknowledgedAt),
		ResolvedAt:     utcPtr(a.ResolvedAt),
	})
	if err != nil {
		return err
	}
	return r.kv.Put([]byte(prefixAlert+a.ID), val, nil)
}

func decodeAlert(val []byte) (domain.Alert, error) {
	var rec alertRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return domain.Alert{}, fmt.Errorf("leveldb: decode alert: %w", err)
	}
	return domain.Alert{
		ID:             rec.ID,
		Condition:      rec.Condition,
		Severity:       domain.AlertSeverity(rec.Severity),
		Title:          rec.Title,
		Description:    rec.Description,
		Source:         rec.Source,
		Metadata:       rec.Metadata,
		CreatedAt:      rec.CreatedAt,
		AcknowledgedAt: rec.AcknowledgedAt,
		ResolvedAt:     rec.ResolvedAt,
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
