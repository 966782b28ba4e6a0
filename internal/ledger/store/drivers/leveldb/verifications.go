package leveldb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type verificationsRepo struct {
	kv kv
}

// Verification ids are ULIDs, so key order is chronological.
func (r *verificationsRepo) RecordVerification(ctx context.Context, v domain.Verification) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.kv.Put([]byte(prefixVerifier+v.ID), val, nil)
}

func (r *verificationsRepo) ListRecentVerifications(ctx context.Context, limit int) ([]domain.Verification, error) {
	it := r.kv.NewIterator(util.BytesPrefix([]byte(prefixVerifier)), nil)
	defer it.Release()

	var out []domain.Verification
	for ok := it.Last(); ok && len(out) < limit; ok = it.Prev() {
		var v domain.Verification
		if err := json.Unmarshal(it.Value(), &v); err != nil {
			return nil, fmt.Errorf("leveldb: decode verification: %w", err)
		}
		out = append(out, v)
	}
	return out, it.Error()
}

func (r *verificationsRepo) CountVerifications(ctx context.Context) (int, int, error) {
	it := r.kv.NewIterator(util.BytesPrefix([]byte(prefixVerifier)), nil)
	defer it.Release()

	var total, passed int
	for it.Next() {
		var v struct {
			OK bool
		}
		if err := json.Unmarshal(it.Value(), &v); err != nil {
			return 0, 0, fmt.Errorf("leveldb: decode verification: %w", err)
		}
		total++
		if v.OK {
			passed++
		}
	}
	return total, passed, it.Error()
}
