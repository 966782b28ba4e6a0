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

type signingKeyRecord struct {
	Kid                 string     `json:"kid"`
	Algorithm           string     `json:"algorithm"`
	PublicKey           string     `json:"public_key"`
	PrivateKeyEncrypted []byte     `json:"private_key_encrypted"`
	CreatedAt           time.Time  `json:"created_at"`
	RetiredAt           *time.Time `json:"retired_at,omitempty"`
}

type signingKeysRepo struct {
	kv   kv
	lock func() func()
}

func (r *signingKeysRepo) CreateSigningKey(ctx context.Context, key domain.SigningKey) error {
	defer r.lock()()

	k := []byte(prefixKey + key.Kid)
	if ok, err := r.kv.Has(k, nil); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: signing key %s", store.ErrAlreadyExists, key.Kid)
	}

	if key.RetiredAt == nil {
		keys, err := r.list()
		if err != nil {
			return err
		}
		for _, existing := range keys {
			if existing.IsActive() {
				return fmt.Errorf("%w: active signing key %s", store.ErrAlreadyExists, existing.Kid)
			}
		}
	}

	return r.put(key)
}

func (r *signingKeysRepo) GetSigningKey(ctx context.Context, kid string) (domain.SigningKey, error) {
	val, err := r.kv.Get([]byte(prefixKey+kid), nil)
	if err != nil {
		return domain.SigningKey{}, mapNotFound(err)
	}
	return decodeSigningKey(val)
}

func (r *signingKeysRepo) ListSigningKeys(ctx context.Context) ([]domain.SigningKey, error) {
	return r.list()
}

func (r *signingKeysRepo) RetireSigningKey(ctx context.Context, kid string, at time.Time) error {
	defer r.lock()()

	key, err := r.GetSigningKey(ctx, kid)
	if err != nil {
		return err
	}
	if key.RetiredAt != nil {
		return nil
	}
	at = at.UTC()
	key.RetiredAt = &at
	return r.put(key)
}

func (r *signingKeysRepo) list() ([]domain.SigningKey, error) {
	it := r.kv.NewIterator(util.BytesPrefix([]byte(prefixKey)), nil)
	defer it.Release()

	var keys []domain.SigningKey
	for it.Next() {
		k, err := decodeSigningKey(it.Value())
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, it.Error()
}

func (r *signingKeysRepo) put(key domain.SigningKey) error {
	val, err := json.Marshal(signingKeyRecord{
		Kid:                 key.Kid,
		Algorithm:           key.Algorithm,
		PublicKey:           key.PublicKeyPEM,
		PrivateKeyEncrypted: key.PrivateKeyEncrypted,
		CreatedAt:           key.CreatedAt.UTC(),
		RetiredAt:           key.RetiredAt,
	})
	if err != nil {
		return err
	}
	return r.kv.Put([]byte(prefixKey+key.Kid), val, nil)
}

func decodeSigningKey(val []byte) (domain.SigningKey, error) {
	var rec signingKeyRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return domain.SigningKey{}, fmt.Errorf("leveldb: decode signing key: %w", err)
	}
	return domain.SigningKey{
		Kid:                 rec.Kid,
		Algorithm:           rec.Algorithm,
		PublicKeyPEM:        rec.PublicKey,
		PrivateKeyEncrypted: rec.PrivateKeyEncrypted,
		CreatedAt:           rec.CreatedAt,
		RetiredAt:           rec.RetiredAt,
	}, nil
}
