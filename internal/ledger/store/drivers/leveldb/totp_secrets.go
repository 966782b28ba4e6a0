package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
)

type totpSecretsRepo struct {
	kv   kv
	lock func() func()
}

func (r *totpSecretsRepo) GetTOTPSecret(ctx context.Context) (domain.TOTPSecret, error) {
	val, err := r.kv.Get(keyTOTP, nil)
	if err != nil {
		return domain.TOTPSecret{}, mapNotFound(err)
	}
	var s domain.TOTPSecret
	if err := json.Unmarshal(val, &s); err != nil {
		return domain.TOTPSecret{}, fmt.Errorf("leveldb: decode totp secret: %w", err)
	}
	return s, nil
}

func (r *totpSecretsRepo) PutTOTPSecret(ctx context.Context, s domain.TOTPSecret) error {
	defer r.lock()()
	return r.put(s)
}

func (r *totpSecretsRepo) AdvanceLastUsedStep(ctx context.Context, step int64) (bool, error) {
	defer r.lock()()

	s, err := r.GetTOTPSecret(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if step <= s.LastUsedStep {
		return false, nil
	}
	s.LastUsedStep = step
	return true, r.put(s)
}

func (r *totpSecretsRepo) put(s domain.TOTPSecret) error {
	val, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.kv.Put(keyTOTP, val, nil)
}
