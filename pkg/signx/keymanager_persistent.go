package signx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/aegis/pkg/cryptox"
)

// KeyRecord is a signing key as persisted by the caller's store.
type KeyRecord struct {
	Kid                 string
	Algorithm           string
	PublicKeyPEM        string
	PrivateKeyEncrypted []byte
	CreatedAt           time.Time
	RetiredAt           *time.Time
}

// KeyStore is the minimal persistence needed to bootstrap a KeyManager.
type KeyStore interface {
	ListSigningKeys(ctx context.Context) ([]KeyRecord, error)
	CreateSigningKey(ctx context.Context, key KeyRecord) error
}

// PersistentKeyManagerOptions configures NewPersistentKeyManager.
type PersistentKeyManagerOptions struct {
	Store  KeyStore
	Sealer *cryptox.Sealer

	// Algorithm is used when the store is empty and a first key is generated.
	Algorithm string

	// NewKID mints key ids. Required.
	NewKID func() string

	Now    func() time.Time
	Logger *slog.Logger
}

// NewPersistentKeyManager loads every stored public key for verification and
// decrypts the active private key, if any. A store with no keys at all gets
// a freshly generated key. A store whose keys are all retired is left
// without a signer until the next rotation.
func NewPersistentKeyManager(ctx context.Context, opts PersistentKeyManagerOptions) (*KeyManager, error) {
	if opts.Store == nil || opts.Sealer == nil {
		return nil, fmt.Errorf("signx: Store and Sealer are required")
	}
	if opts.NewKID == nil {
		return nil, fmt.Errorf("signx: NewKID is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	records, err := opts.Store.ListSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("signx: load keys: %w", err)
	}

	km := NewKeyManager()

	for _, rec := range records {
		if rec.RetiredAt != nil {
			if err := km.keys.AddPEM(rec.Kid, rec.Algorithm, rec.PublicKeyPEM); err != nil {
				return nil, fmt.Errorf("signx: load retired key %s: %w", rec.Kid, err)
			}
			continue
		}

		pemData, err := opts.Sealer.Open(rec.PrivateKeyEncrypted)
		if err != nil {
			return nil, fmt.Errorf("signx: decrypt key %s: %w", rec.Kid, err)
		}
		s, err := NewSigner(rec.Kid, rec.Algorithm, pemData)
		if err != nil {
			return nil, fmt.Errorf("signx: load key %s: %w", rec.Kid, err)
		}
		if err := km.Activate(s); err != nil {
			return nil, err
		}
	}

	if len(records) > 0 {
		if !km.IsReady() {
			opts.Logger.Warn("no active signing key; appends will fail until keys are rotated")
		}
		return km, nil
	}

	rec, s, err := NewKeyRecord(opts.Sealer, opts.NewKID(), opts.Algorithm, opts.Now())
	if err != nil {
		return nil, err
	}
	if err := opts.Store.CreateSigningKey(ctx, rec); err != nil {
		return nil, fmt.Errorf("signx: store first key: %w", err)
	}
	if err := km.Activate(s); err != nil {
		return nil, err
	}

	opts.Logger.Info("generated initial signing key", "kid", s.KID(), "alg", s.Alg())
	return km, nil
}

// NewKeyRecord generates a key pair and seals the private half for storage.
func NewKeyRecord(sealer *cryptox.Sealer, kid, alg string, now time.Time) (KeyRecord, Signer, error) {
	s, privPEM, err := Generate(kid, alg)
	if err != nil {
		return KeyRecord{}, nil, fmt.Errorf("signx: generate key: %w", err)
	}
	sealed, err := sealer.Seal(privPEM)
	if err != nil {
		return KeyRecord{}, nil, fmt.Errorf("signx: encrypt key: %w", err)
	}
	return KeyRecord{
		Kid:                 kid,
		Algorithm:           alg,
		PublicKeyPEM:        s.PublicKeyPEM(),
		PrivateKeyEncrypted: sealed,
		CreatedAt:           now.UTC(),
	}, s, nil
}
