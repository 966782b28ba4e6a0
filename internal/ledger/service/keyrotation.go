package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/aussiebroadwan/aegis/pkg/idx"
	"github.com/aussiebroadwan/aegis/pkg/signx"
)

// AppendLocker pauses appends while fn runs. *chain.Ledger implements it.
type AppendLocker interface {
	Exclusive(fn func() error) error
}

// KeyRotationService manages the signing key lifecycle. Exactly one key is
// active at a time; retired keys are kept so old blocks stay verifiable.
type KeyRotationService struct {
	Store      store.Store
	KeyManager *signx.KeyManager
	Sealer     *cryptox.Sealer
	Algorithm  string

	NewKID func() string // defaults to idx.New
	Now    func() time.Time
	Logger *slog.Logger
	Feed   feed.Publisher
	Ledger AppendLocker // optional

	mu sync.Mutex
}

// RotateKeyResponse represents the result of a key rotation.
type RotateKeyResponse struct {
	NewKeyID     string `json:"new_key_id"`
	RetiredKeyID string `json:"retired_key_id,omitempty"`
}

// KeyInfo is a signing key without its private half.
type KeyInfo struct {
	Kid         string     `json:"key_id"`
	Algorithm   string     `json:"algorithm"`
	Fingerprint string     `json:"fingerprint"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	RetiredAt   *time.Time `json:"retired_at,omitempty"`
}

// PublicKeyExport is a public key in both PEM and JWK form.
type PublicKeyExport struct {
	KeyID       string    `json:"key_id"`
	Algorithm   string    `json:"algorithm"`
	PublicKey   string    `json:"public_key"`
	Fingerprint string    `json:"fingerprint"`
	JWK         signx.JWK `json:"jwk"`
}

// RotateKeys generates a new key, retires the current one and activates the
// new one. Storage is updated in one transaction before memory changes.
func (s *KeyRotationService) RotateKeys(ctx context.Context) (RotateKeyResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec, signer, err := signx.NewKeyRecord(s.Sealer, s.newKID(), s.Algorithm, now)
	if err != nil {
		return RotateKeyResponse{}, err
	}

	var retired string
	err = s.exclusive(func() error {
		err := s.Store.WithTx(ctx, func(tx store.Tx) error {
			keys, err := tx.SigningKeys().ListSigningKeys(ctx)
			if err != nil {
				return fmt.Errorf("failed to list signing keys: %w", err)
			}
			for _, k := range keys {
				if !k.IsActive() {
					continue
				}
				if err := tx.SigningKeys().RetireSigningKey(ctx, k.Kid, now); err != nil {
					return fmt.Errorf("failed to retire key %s: %w", k.Kid, err)
				}
				retired = k.Kid
			}

			if err := tx.SigningKeys().CreateSigningKey(ctx, store.KeyRecordToDomain(rec)); err != nil {
				return fmt.Errorf("failed to create signing key: %w", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: rotate keys: %v", domain.ErrStorage, err)
		}

		if err := s.KeyManager.Activate(signer); err != nil {
			return fmt.Errorf("failed to activate key %s: %w", signer.KID(), err)
		}
		return nil
	})
	if err != nil {
		return RotateKeyResponse{}, err
	}

	s.logger().Info("signing key rotated", "kid", signer.KID(), "alg", signer.Alg(), "retired_kid", retired)
	s.publish(feed.Event{Type: feed.EventKeyRotated, Data: feed.KeyChanged{KeyID: signer.KID(), RetiredKeyID: retired}})

	return RotateKeyResponse{NewKeyID: signer.KID(), RetiredKeyID: retired}, nil
}

// RetireKey retires kid without a replacement. Retiring the active key
// leaves the ledger unable to append until the next rotation.
func (s *KeyRotationService) RetireKey(ctx context.Context, kid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.exclusive(func() error {
		key, err := s.Store.SigningKeys().GetSigningKey(ctx, kid)
		if err != nil {
			return fmt.Errorf("failed to get key %s: %w", kid, err)
		}
		if !key.IsActive() {
			return fmt.Errorf("%w: %s", ErrKeyAlreadyRetired, kid)
		}

		if err := s.Store.SigningKeys().RetireSigningKey(ctx, kid, s.now().UTC()); err != nil {
			return fmt.Errorf("%w: retire key %s: %v", domain.ErrStorage, kid, err)
		}
		s.KeyManager.Deactivate(kid)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger().Warn("signing key retired without replacement", "kid", kid)
	s.publish(feed.Event{Type: feed.EventKeyRetired, Data: feed.KeyChanged{KeyID: kid}})
	return nil
}

// ListSigningKeys returns every key, oldest first.
func (s *KeyRotationService) ListSigningKeys(ctx context.Context) ([]KeyInfo, error) {
	keys, err := s.Store.SigningKeys().ListSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list signing keys: %w", err)
	}

	out := make([]KeyInfo, 0, len(keys))
	for _, k := range keys {
		fp, err := signx.Fingerprint(k.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to fingerprint key %s: %w", k.Kid, err)
		}
		out = append(out, KeyInfo{
			Kid:         k.Kid,
			Algorithm:   k.Algorithm,
			Fingerprint: fp,
			Active:      k.IsActive(),
			CreatedAt:   k.CreatedAt,
			RetiredAt:   k.RetiredAt,
		})
	}
	return out, nil
}

// ActiveKey returns the stored record of the active key.
func (s *KeyRotationService) ActiveKey(ctx context.Context) (domain.SigningKey, error) {
	keys, err := s.Store.SigningKeys().ListSigningKeys(ctx)
	if err != nil {
		return domain.SigningKey{}, fmt.Errorf("failed to list signing keys: %w", err)
	}
	for _, k := range keys {
		if k.IsActive() {
			return k, nil
		}
	}
	return domain.SigningKey{}, domain.ErrKeyUnavailable
}

// RotateIfOlderThan rotates when the active key has existed for at least
// maxAge. A missing active key is left alone: that only happens after an
// operator retired it on purpose.
func (s *KeyRotationService) RotateIfOlderThan(ctx context.Context, maxAge time.Duration) (RotateKeyResponse, bool, error) {
	active, err := s.ActiveKey(ctx)
	if err != nil {
		return RotateKeyResponse{}, false, err
	}
	if active.Age(s.now()) < maxAge {
		return RotateKeyResponse{}, false, nil
	}
	resp, err := s.RotateKeys(ctx)
	return resp, err == nil, err
}

// ExportPublicKey returns a public key by id. An empty kid means the active key.
func (s *KeyRotationService) ExportPublicKey(kid string) (PublicKeyExport, error) {
	if kid == "" {
		active, err := s.KeyManager.Active()
		if err != nil {
			return PublicKeyExport{}, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
		}
		kid = active.KID()
	}

	pk, err := s.KeyManager.KeySet().Get(kid)
	if errors.Is(err, signx.ErrNoKey) {
		return PublicKeyExport{}, fmt.Errorf("%w: key %s", store.ErrNotFound, kid)
	}
	if err != nil {
		return PublicKeyExport{}, err
	}

	fp, err := signx.Fingerprint(pk.PEM)
	if err != nil {
		return PublicKeyExport{}, err
	}
	return PublicKeyExport{
		KeyID:       pk.Kid,
		Algorithm:   pk.Algorithm,
		PublicKey:   pk.PEM,
		Fingerprint: fp,
		JWK:         pk.JWK,
	}, nil
}

// JWKS publishes every verification key for offline verifiers.
func (s *KeyRotationService) JWKS() signx.JWKS {
	return s.KeyManager.KeySet().JWKS()
}

func (s *KeyRotationService) exclusive(fn func() error) error {
	if s.Ledger == nil {
		return fn()
	}
	return s.Ledger.Exclusive(fn)
}

func (s *KeyRotationService) newKID() string {
	if s.NewKID != nil {
		return s.NewKID()
	}
	return idx.New().String()
}

func (s *KeyRotationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *KeyRotationService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *KeyRotationService) publish(ev feed.Event) {
	if s.Feed != nil {
		s.Feed.Publish(ev)
	}
}
