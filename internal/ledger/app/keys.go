package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/aussiebroadwan/aegis/pkg/idx"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// MasterKeyEnvVar holds the master key material for the env source.
const MasterKeyEnvVar = "AEGIS_MASTER_KEY"

// masterKeySource builds the configured source. The aws source loads the
// default AWS credential chain.
func masterKeySource(ctx context.Context, cfg Config) (cryptox.MasterKeySource, error) {
	switch cfg.MasterKeySource {
	case MasterKeyEnv:
		return cryptox.EnvSource{Var: MasterKeyEnvVar}, nil
	case MasterKeyFile:
		return cryptox.FileSource{Path: cfg.MasterKeyPath}, nil
	case MasterKeyKeyring:
		return cryptox.KeyringSource{Service: KeyringService, User: KeyringUser}, nil
	case MasterKeyAWS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return cryptox.AWSSource{
			Client:   secretsmanager.NewFromConfig(awsCfg),
			SecretID: cfg.MasterKeySecretID,
		}, nil
	case MasterKeyEphemeral:
		return cryptox.EphemeralSource{}, nil
	default:
		return nil, fmt.Errorf("unknown master key source %q", cfg.MasterKeySource)
	}
}

// Sealers holds the per-purpose encryption derived from the master key.
type Sealers struct {
	Keys *cryptox.Sealer
	TOTP *cryptox.Sealer
}

// InitSealers loads the master key and derives the signing key and TOTP
// secret sealers from it.
func InitSealers(ctx context.Context, cfg Config, logger *slog.Logger) (*Sealers, error) {
	src, err := masterKeySource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mk, err := cryptox.LoadMasterKey(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	if cfg.MasterKeySource == MasterKeyEphemeral {
		logger.Warn("ephemeral master key in use: stored keys and the totp secret will be unreadable after restart")
	}
	logger.Info("master key loaded", "source", mk.Source())

	keySeal, err := cryptox.NewSealer(mk, cryptox.PurposeSigningKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key sealer: %w", err)
	}
	totpSeal, err := cryptox.NewSealer(mk, cryptox.PurposeTOTPSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive totp sealer: %w", err)
	}
	return &Sealers{Keys: keySeal, TOTP: totpSeal}, nil
}

// InitSigningKeys loads stored signing keys, generating the first one on an
// empty store.
func InitSigningKeys(ctx context.Context, cfg Config, db store.Store, sealer *cryptox.Sealer, logger *slog.Logger) (*signx.KeyManager, error) {
	logger.Info("initializing signing keys", "algorithm", cfg.Algorithm)

	km, err := signx.NewPersistentKeyManager(ctx, signx.PersistentKeyManagerOptions{
		Store:     store.NewKeyStoreAdapter(db),
		Sealer:    sealer,
		Algorithm: cfg.Algorithm,
		NewKID:    func() string { return idx.New().String() },
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key manager: %w", err)
	}

	if active, err := km.Active(); err == nil {
		logger.Info("signing key ready", "kid", active.KID(), "algorithm", active.Alg(), "known_keys", km.KeySet().Len())
	} else {
		logger.Warn("no active signing key, appends are refused until keys are rotated", "known_keys", km.KeySet().Len())
	}
	return km, nil
}
