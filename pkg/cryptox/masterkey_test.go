package cryptox_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

type fakeSecrets struct {
	value *string
	err   error
	asked string
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.asked = aws.ToString(in.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.value}, nil
}

func TestLoadMasterKey_FirstConfiguredSourceWins(t *testing.T) {
	t.Setenv("AEGIS_TEST_MASTER_KEY", "")

	path := filepath.Join(t.TempDir(), "master.key")
	require.NoError(t, os.WriteFile(path, []byte("file-master-key-0123456789\n"), 0o600))

	mk, err := cryptox.LoadMasterKey(context.Background(),
		cryptox.EnvSource{Var: "AEGIS_TEST_MASTER_KEY"},
		cryptox.FileSource{Path: path},
		cryptox.EphemeralSource{},
	)
	require.NoError(t, err)
	require.Equal(t, "file:"+path, mk.Source())
}

func TestLoadMasterKey_Env(t *testing.T) {
	t.Setenv("AEGIS_TEST_MASTER_KEY", "env-master-key-0123456789")

	mk, err := cryptox.LoadMasterKey(context.Background(), cryptox.EnvSource{Var: "AEGIS_TEST_MASTER_KEY"})
	require.NoError(t, err)
	require.Equal(t, "env:AEGIS_TEST_MASTER_KEY", mk.Source())
}

func TestLoadMasterKey_NoneConfigured(t *testing.T) {
	_, err := cryptox.LoadMasterKey(context.Background(),
		cryptox.FileSource{},
		cryptox.AWSSource{},
	)
	require.ErrorIs(t, err, cryptox.ErrNoMasterKey)
}

func TestLoadMasterKey_WeakMaterial(t *testing.T) {
	t.Setenv("AEGIS_TEST_MASTER_KEY", "short")

	_, err := cryptox.LoadMasterKey(context.Background(), cryptox.EnvSource{Var: "AEGIS_TEST_MASTER_KEY"})
	require.ErrorIs(t, err, cryptox.ErrWeakMasterKey)
}

func TestLoadMasterKey_FileErrorIsFatal(t *testing.T) {
	_, err := cryptox.LoadMasterKey(context.Background(),
		cryptox.FileSource{Path: filepath.Join(t.TempDir(), "missing")},
		cryptox.EphemeralSource{},
	)
	require.Error(t, err)
	require.NotErrorIs(t, err, cryptox.ErrNoMasterKey)
}

func TestKeyringSource(t *testing.T) {
	keyring.MockInit()

	src := cryptox.KeyringSource{Service: "aegis-test", User: "master"}
	_, err := src.Load(context.Background())
	require.ErrorIs(t, err, cryptox.ErrNoMasterKey)

	require.NoError(t, src.Store("keyring-master-key-0123456789"))

	mk, err := cryptox.LoadMasterKey(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, "keyring:aegis-test", mk.Source())
}

func TestAWSSource(t *testing.T) {
	fake := &fakeSecrets{value: aws.String("aws-master-key-0123456789")}

	mk, err := cryptox.LoadMasterKey(context.Background(), cryptox.AWSSource{SecretID: "aegis/master", Client: fake})
	require.NoError(t, err)
	require.Equal(t, "aegis/master", fake.asked)
	require.Equal(t, "aws:aegis/master", mk.Source())

	failing := &fakeSecrets{err: errors.New("access denied")}
	_, err = cryptox.LoadMasterKey(context.Background(), cryptox.AWSSource{SecretID: "aegis/master", Client: failing})
	require.ErrorContains(t, err, "access denied")
}

func TestSubkeyIsDeterministicPerPurpose(t *testing.T) {
	mk, err := cryptox.NewMasterKey([]byte("subkey-master-key-0123456789"), "test")
	require.NoError(t, err)

	a1, err := mk.Subkey(cryptox.PurposeSigningKeys)
	require.NoError(t, err)
	a2, err := mk.Subkey(cryptox.PurposeSigningKeys)
	require.NoError(t, err)
	b, err := mk.Subkey(cryptox.PurposeTOTPSecret)
	require.NoError(t, err)

	require.Len(t, a1, 32)
	require.Equal(t, a1, a2)
	require.NotEqual(t, a1, b)
}
