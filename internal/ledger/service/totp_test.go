package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestTOTPValidateWindow(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr bool
	}{
		{"current step", 0, false},
		{"previous step", 30 * time.Second, false},
		{"two steps ago", 60 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, service.PolicySupplied)
			code := f.code(t)

			f.clock.Advance(tt.advance)
			err := f.totp.Validate(context.Background(), code)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrAuthentication)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTOTPRejectsReplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicySupplied)
	code := f.code(t)

	require.NoError(t, f.totp.Validate(ctx, code))
	require.ErrorIs(t, f.totp.Validate(ctx, code), domain.ErrAuthentication)
}

func TestTOTPRejectsOlderStepAfterNewerUsed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicySupplied)
	old := f.code(t)

	f.clock.Advance(30 * time.Second)
	current := f.code(t)
	if current == old {
		t.Skip("consecutive steps produced the same code")
	}
	require.NoError(t, f.totp.Validate(ctx, current))
	require.ErrorIs(t, f.totp.Validate(ctx, old), domain.ErrAuthentication)
}

func TestTOTPRejectsGarbage(t *testing.T) {
	f := newFixture(t, service.PolicySupplied)
	for _, code := range []string{"", "abcdef", "1234567"} {
		require.ErrorIs(t, f.totp.Validate(context.Background(), code), domain.ErrAuthentication, code)
	}
}

func TestTOTPPeekDoesNotConsume(t *testing.T) {
	f := newFixture(t, service.PolicySupplied)
	code := f.code(t)

	require.True(t, f.totp.Peek(code))
	require.True(t, f.totp.Peek(code))
	require.NoError(t, f.totp.Validate(context.Background(), code))
}

func TestTOTPCurrentCode(t *testing.T) {
	f := newFixture(t, service.PolicySupplied)
	c, err := f.totp.CurrentCode()
	require.NoError(t, err)
	require.Len(t, c.Code, 6)
	require.Equal(t, uint(30), c.Period)
	require.Equal(t, 25, c.SecondsRemaining)

	remaining, period := f.totp.SecondsRemaining()
	require.Equal(t, 25, remaining)
	require.Equal(t, uint(30), period)
}

func TestTOTPRegenerateInvalidatesOldCodes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicySupplied)
	old := f.code(t)

	enroll, err := f.totp.RegenerateSecret(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, enroll.Secret)
	require.Contains(t, enroll.ProvisioningURL, "otpauth://totp/")

	if f.code(t) == old {
		t.Skip("old and new secret produced the same code")
	}
	require.False(t, f.totp.Peek(old))
	require.Contains(t, f.feed.Types(), "totp_regenerated")
}

func TestTOTPRegenerateResetsReplayGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.PolicySupplied)
	require.NoError(t, f.totp.Validate(ctx, f.code(t)))

	_, err := f.totp.RegenerateSecret(ctx)
	require.NoError(t, err)
	require.NoError(t, f.totp.Validate(ctx, f.code(t)), "same step, new secret")
}

func TestTOTPInitLoadsStoredSecret(t *testing.T) {
	f := newFixture(t, service.PolicySupplied)

	reloaded := &service.TOTPService{Store: f.store, Sealer: f.totpSeal, Now: f.clock.Now}
	require.NoError(t, reloaded.Init(context.Background()))

	want, err := f.totp.CurrentCode()
	require.NoError(t, err)
	got, err := reloaded.CurrentCode()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestTOTPInitFailsUnderWrongMasterKey(t *testing.T) {
	f := newFixture(t, service.PolicySupplied)

	other, err := cryptox.LoadMasterKey(context.Background(), cryptox.EphemeralSource{})
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer(other, cryptox.PurposeTOTPSecret)
	require.NoError(t, err)

	reloaded := &service.TOTPService{Store: f.store, Sealer: sealer, Now: f.clock.Now}
	require.ErrorIs(t, reloaded.Init(context.Background()), cryptox.ErrDecrypt)
}

func TestTOTPNotReady(t *testing.T) {
	s := &service.TOTPService{}
	require.False(t, s.Ready())
	_, err := s.CurrentCode()
	require.ErrorIs(t, err, service.ErrTOTPNotReady)
	require.False(t, s.Peek("123456"))
}
