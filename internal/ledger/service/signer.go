package service

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/aegis/internal/ledger/chain"
	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/pkg/signx"
)

var _ chain.Signer = (*SignerService)(nil)

// SignerService gates the active signing key behind a TOTP code.
type SignerService struct {
	KeyManager *signx.KeyManager
	TOTP       *TOTPService

	// SingleUse consumes the code's step on success. Codes the service
	// mints for itself never leave the process and are only peeked.
	SingleUse bool
}

// Sign validates code and signs digest with the active key.
func (s *SignerService) Sign(ctx context.Context, digest []byte, code string) ([]byte, string, error) {
	active, err := s.KeyManager.Active()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}

	if s.SingleUse {
		if err := s.TOTP.Validate(ctx, code); err != nil {
			return nil, "", err
		}
	} else if !s.TOTP.Peek(code) {
		return nil, "", fmt.Errorf("%w: code not valid in the current window", domain.ErrAuthentication)
	}

	sig, err := active.SignDigest(digest)
	if err != nil {
		return nil, "", fmt.Errorf("%w: key %s: %v", ErrSigningFailed, active.KID(), err)
	}
	return sig, active.KID(), nil
}

// Verify checks sig against the key named by keyID, active or retired.
// Unknown keys and bad signatures both report false.
func (s *SignerService) Verify(digest, sig []byte, keyID string) bool {
	return s.KeyManager.Verify(keyID, digest, sig)
}
