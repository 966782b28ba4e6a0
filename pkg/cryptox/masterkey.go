package cryptox

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/hkdf"
)

// MinMasterKeyLen is the shortest key material accepted from any source.
const MinMasterKeyLen = 16

var (
	// ErrNoMasterKey is returned by a source that is not configured.
	// LoadMasterKey moves on to the next source when it sees it.
	ErrNoMasterKey = errors.New("cryptox: master key not configured")

	ErrWeakMasterKey = errors.New("cryptox: master key material too short")
)

// MasterKeySource yields raw master key material.
type MasterKeySource interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
}

// MasterKey is the root secret. Purpose-bound subkeys are derived from it with
// HKDF so the signing key store and the TOTP secret never share a key.
type MasterKey struct {
	material []byte
	source   string
}

// NewMasterKey wraps raw key material.
func NewMasterKey(material []byte, source string) (*MasterKey, error) {
	if len(material) < MinMasterKeyLen {
		return nil, ErrWeakMasterKey
	}
	return &MasterKey{material: append([]byte(nil), material...), source: source}, nil
}

// Source names where the key was loaded from.
func (m *MasterKey) Source() string { return m.source }

// Subkey derives a 32-byte key bound to purpose.
func (m *MasterKey) Subkey(purpose string) ([]byte, error) {
	r := hkdf.New(sha256.New, m.material, nil, []byte(purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cryptox: hkdf: %w", err)
	}
	return key, nil
}

// LoadMasterKey tries each source in order and returns the first configured key.
func LoadMasterKey(ctx context.Context, sources ...MasterKeySource) (*MasterKey, error) {
	for _, src := range sources {
		material, err := src.Load(ctx)
		if errors.Is(err, ErrNoMasterKey) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cryptox: load master key from %s: %w", src.Name(), err)
		}
		return NewMasterKey(material, src.Name())
	}
	return nil, ErrNoMasterKey
}

// EnvSource reads the key from an environment variable.
type EnvSource struct {
	Var string
}

func (s EnvSource) Name() string { return "env:" + s.Var }

func (s EnvSource) Load(context.Context) ([]byte, error) {
	v := os.Getenv(s.Var)
	if v == "" {
		return nil, ErrNoMasterKey
	}
	return []byte(v), nil
}

// FileSource reads the key from a file, trimming surrounding whitespace.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(context.Context) ([]byte, error) {
	if s.Path == "" {
		return nil, ErrNoMasterKey
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read master key file: %w", err)
	}
	return []byte(strings.TrimSpace(string(data))), nil
}

// KeyringSource reads the key from the OS keyring.
type KeyringSource struct {
	Service string
	User    string
}

func (s KeyringSource) Name() string { return "keyring:" + s.Service }

func (s KeyringSource) Load(context.Context) ([]byte, error) {
	if s.Service == "" {
		return nil, ErrNoMasterKey
	}
	secret, err := keyring.Get(s.Service, s.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoMasterKey
	}
	if err != nil {
		return nil, err
	}
	return []byte(secret), nil
}

// Store writes secret into the OS keyring under the source's service and user.
func (s KeyringSource) Store(secret string) error {
	if s.Service == "" {
		return errors.New("cryptox: keyring service not set")
	}
	return keyring.Set(s.Service, s.User, secret)
}

// SecretsManagerAPI is the subset of the Secrets Manager client we use.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSource reads the key from AWS Secrets Manager. When Client is nil the
// default credential chain is used.
type AWSSource struct {
	SecretID string
	Client   SecretsManagerAPI
}

func (s AWSSource) Name() string { return "aws:" + s.SecretID }

func (s AWSSource) Load(ctx context.Context) ([]byte, error) {
	if s.SecretID == "" {
		return nil, ErrNoMasterKey
	}

	client := s.Client
	if client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client = secretsmanager.NewFromConfig(cfg)
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.SecretID),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret value: %w", err)
	}

	if len(out.SecretBinary) > 0 {
		return out.SecretBinary, nil
	}
	if v := aws.ToString(out.SecretString); v != "" {
		return []byte(v), nil
	}
	return nil, errors.New("secret has no value")
}

// EphemeralSource generates a random key on every call. Data encrypted with
// it does not survive a restart, so it is only meant for development.
type EphemeralSource struct{}

func (EphemeralSource) Name() string { return "ephemeral" }

func (EphemeralSource) Load(context.Context) ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate ephemeral master key: %w", err)
	}
	return buf, nil
}
