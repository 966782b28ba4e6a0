package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultTOTPPeriod = 30
	DefaultTOTPDigits = 6
	totpAlgorithm     = "SHA1"
	totpAccount       = "ledger-signing"
)

// TOTPService owns the single shared TOTP secret that authorises signing.
// The plaintext secret is held in memory only; storage keeps it sealed.
type TOTPService struct {
	Store  store.Store
	Sealer *cryptox.Sealer
	Issuer string // Issuer in provisioning URLs (e.g., "Aegis")

	// Period and Digits apply to newly generated secrets. A loaded secret
	// keeps the parameters it was created with.
	Period uint
	Digits int

	Now    func() time.Time
	Logger *slog.Logger
	Feed   feed.Publisher

	mu     sync.RWMutex
	secret string
	params totpParams
}

type totpParams struct {
	period uint
	digits otp.Digits
	alg    otp.Algorithm
}

// TOTPCode is the code for the current step.
type TOTPCode struct {
	Code             string `json:"code"`
	SecondsRemaining int    `json:"seconds_remaining"`
	Period           uint   `json:"period"`
	Digits           int    `json:"digits"`
}

// TOTPEnrollment is returned by RegenerateSecret so an operator can load the
// new secret into an authenticator.
type TOTPEnrollment struct {
	Secret          string `json:"secret"`
	ProvisioningURL string `json:"provisioning_url"`
	Period          uint   `json:"period"`
	Digits          int    `json:"digits"`
}

// Init loads the stored secret, creating one on first start.
func (s *TOTPService) Init(ctx context.Context) error {
	rec, err := s.Store.TOTPSecrets().GetTOTPSecret(ctx)
	if errors.Is(err, store.ErrNotFound) {
		if _, err := s.RegenerateSecret(ctx); err != nil {
			return fmt.Errorf("failed to create totp secret: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load totp secret: %w", err)
	}

	plain, err := s.Sealer.Open(rec.SecretEncrypted)
	if err != nil {
		return fmt.Errorf("failed to decrypt totp secret: %w", err)
	}
	alg, err := parseOTPAlgorithm(rec.Algorithm)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.secret = string(plain)
	s.params = totpParams{period: rec.Period, digits: otp.Digits(rec.Digits), alg: alg}
	s.mu.Unlock()

	s.logger().Info("totp secret loaded", "period", rec.Period, "digits", rec.Digits)
	return nil
}

// Ready reports whether a secret is loaded.
func (s *TOTPService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secret != ""
}

// CurrentCode returns the code for the current step and how long it has left.
func (s *TOTPService) CurrentCode() (TOTPCode, error) {
	secret, p := s.snapshot()
	if secret == "" {
		return TOTPCode{}, ErrTOTPNotReady
	}

	now := s.now()
	step := stepAt(now, p.period)
	code, err := codeAt(secret, step, p)
	if err != nil {
		return TOTPCode{}, err
	}
	return TOTPCode{
		Code:             code,
		SecondsRemaining: secondsRemaining(now, p.period),
		Period:           p.period,
		Digits:           int(p.digits),
	}, nil
}

// SecondsRemaining is how long the current code stays current. Zero before
// the secret is loaded.
func (s *TOTPService) SecondsRemaining() (remaining int, period uint) {
	secret, p := s.snapshot()
	if secret == "" {
		return 0, 0
	}
	return secondsRemaining(s.now(), p.period), p.period
}

// Validate accepts a code for the current or the previous step and consumes
// that step, so a code (or any older one) cannot be used twice.
func (s *TOTPService) Validate(ctx context.Context, code string) error {
	step, ok := s.match(code)
	if !ok {
		return fmt.Errorf("%w: code not valid in the current window", domain.ErrAuthentication)
	}

	consumed, err := s.Store.TOTPSecrets().AdvanceLastUsedStep(ctx, step)
	if err != nil {
		return fmt.Errorf("%w: consume totp step: %v", domain.ErrStorage, err)
	}
	if !consumed {
		return fmt.Errorf("%w: code already used", domain.ErrAuthentication)
	}
	return nil
}

// Peek runs the same window check as Validate without consuming the step.
func (s *TOTPService) Peek(code string) bool {
	_, ok := s.match(code)
	return ok
}

// RegenerateSecret replaces the secret. Codes from the old secret stop
// working immediately.
func (s *TOTPService) RegenerateSecret(ctx context.Context) (TOTPEnrollment, error) {
	period := s.Period
	if period == 0 {
		period = DefaultTOTPPeriod
	}
	digits := s.Digits
	if digits == 0 {
		digits = DefaultTOTPDigits
	}
	issuer := s.Issuer
	if issuer == "" {
		issuer = "Aegis"
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: totpAccount,
		Period:      period,
		Digits:      otp.Digits(digits),
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return TOTPEnrollment{}, fmt.Errorf("failed to generate totp key: %w", err)
	}

	sealed, err := s.Sealer.Seal([]byte(key.Secret()))
	if err != nil {
		return TOTPEnrollment{}, fmt.Errorf("failed to encrypt totp secret: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.Store.TOTPSecrets().PutTOTPSecret(ctx, domain.TOTPSecret{
		SecretEncrypted: sealed,
		Period:          period,
		Digits:          digits,
		Algorithm:       totpAlgorithm,
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		return TOTPEnrollment{}, fmt.Errorf("%w: store totp secret: %v", domain.ErrStorage, err)
	}

	s.secret = key.Secret()
	s.params = totpParams{period: period, digits: otp.Digits(digits), alg: otp.AlgorithmSHA1}

	s.logger().Info("totp secret regenerated", "period", period, "digits", digits)
	s.publish(feed.Event{Type: feed.EventTOTPRegenerated, Data: map[string]any{"period": period, "digits": digits}})

	return TOTPEnrollment{
		Secret:          key.Secret(),
		ProvisioningURL: key.URL(),
		Period:          period,
		Digits:          digits,
	}, nil
}

// match returns the newest step in the accepted window whose code equals
// code. Both candidates are always computed and compared in constant time.
func (s *TOTPService) match(code string) (int64, bool) {
	secret, p := s.snapshot()
	if secret == "" || code == "" {
		return 0, false
	}

	current := stepAt(s.now(), p.period)
	matched := int64(-1)
	for _, step := range []int64{current - 1, current} {
		if step < 0 {
			continue
		}
		expected, err := codeAt(secret, step, p)
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			matched = step
		}
	}
	return matched, matched >= 0
}

func (s *TOTPService) snapshot() (string, totpParams) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secret, s.params
}

func (s *TOTPService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TOTPService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *TOTPService) publish(ev feed.Event) {
	if s.Feed != nil {
		s.Feed.Publish(ev)
	}
}

func stepAt(t time.Time, period uint) int64 {
	return t.Unix() / int64(period)
}

func secondsRemaining(t time.Time, period uint) int {
	return int(int64(period) - t.Unix()%int64(period))
}

func codeAt(secret string, step int64, p totpParams) (string, error) {
	return totp.GenerateCodeCustom(secret, time.Unix(step*int64(p.period), 0), totp.ValidateOpts{
		Period:    p.period,
		Digits:    p.digits,
		Algorithm: p.alg,
	})
}

func parseOTPAlgorithm(s string) (otp.Algorithm, error) {
	switch strings.ToUpper(s) {
	case "", "SHA1":
		return otp.AlgorithmSHA1, nil
	case "SHA256":
		return otp.AlgorithmSHA256, nil
	case "SHA512":
		return otp.AlgorithmSHA512, nil
	default:
		return 0, fmt.Errorf("unsupported totp algorithm %q", s)
	}
}
