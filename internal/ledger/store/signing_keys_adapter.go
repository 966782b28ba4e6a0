package store

import (
	"context"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/pkg/signx"
)

// KeyStoreAdapter lets signx bootstrap its KeyManager from a Store without
// depending on the domain package.
type KeyStoreAdapter struct {
	store Store
}

func NewKeyStoreAdapter(store Store) *KeyStoreAdapter {
	return &KeyStoreAdapter{store: store}
}

func (a *KeyStoreAdapter) ListSigningKeys(ctx context.Context) ([]signx.KeyRecord, error) {
	keys, err := a.store.SigningKeys().ListSigningKeys(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]signx.KeyRecord, len(keys))
	for i, k := range keys {
		records[i] = KeyRecordFromDomain(k)
	}
	return records, nil
}

func (a *KeyStoreAdapter) CreateSigningKey(ctx context.Context, rec signx.KeyRecord) error {
	return a.store.SigningKeys().CreateSigningKey(ctx, KeyRecordToDomain(rec))
}

func KeyRecordFromDomain(k domain.SigningKey) signx.KeyRecord {
	return signx.KeyRecord{
		Kid:                 k.Kid,
		Algorithm:           k.Algorithm,
		PublicKeyPEM:        k.PublicKeyPEM,
		PrivateKeyEncrypted: k.PrivateKeyEncrypted,
		CreatedAt:           k.CreatedAt,
		RetiredAt:           k.RetiredAt,
	}
}

func KeyRecordToDomain(rec signx.KeyRecord) domain.SigningKey {
	return domain.SigningKey{
		Kid:                 rec.Kid,
		Algorithm:           rec.Algorithm,
		PublicKeyPEM:        rec.PublicKeyPEM,
		PrivateKeyEncrypted: rec.PrivateKeyEncrypted,
		CreatedAt:           rec.CreatedAt,
		RetiredAt:           rec.RetiredAt,
	}
}
