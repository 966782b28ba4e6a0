package ledger_test

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for ledger end-to-end tests.
 * This includes container setup, client construction, and assertions.
 */

const (
	testImageName = "aegis-ledger-test:latest"

	adminToken = "test-admin-token-12345"
	masterKey  = "e2e-master-key-0123456789abcdef"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Aegis Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Aegis Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/aegis/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// baseEnv is the container environment shared by every test. Rate limits are
// raised because tests make many rapid requests.
func baseEnv() map[string]string {
	return map[string]string{
		"AEGIS_ADMIN_TOKEN":       adminToken,
		"AEGIS_MASTER_KEY_SOURCE": "env",
		"AEGIS_MASTER_KEY":        masterKey,
		"AEGIS_ALGORITHM":         "EdDSA",
		"AEGIS_STATUS_INTERVAL":   "1s",
		"ENV":                     "test",
		"LOG_LEVEL":               "info",
		"LOG_FORMAT":              "json",

		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
		"RATELIMIT_LENIENT_REQUESTS":  "1000",
		"RATELIMIT_LENIENT_BURST":     "1000",
	}
}

// ledgerContainer is a running Aegis server.
type ledgerContainer struct {
	container testcontainers.Container
}

// startLedger starts the server with baseEnv plus overrides. A value of ""
// in overrides removes the key.
func startLedger(t *testing.T, overrides map[string]string) *ledgerContainer {
	t.Helper()
	ctx := context.Background()

	env := baseEnv()
	maps.Copy(env, overrides)
	for k, v := range env {
		if v == "" {
			delete(env, k)
		}
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8001/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8001/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &ledgerContainer{container: container}
}

// baseURL resolves the mapped port. It changes across a restart.
func (c *ledgerContainer) baseURL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	mappedPort, err := c.container.MappedPort(ctx, "8001")
	require.NoError(t, err)

	host, err := c.container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// restart stops and starts the container, keeping its filesystem.
func (c *ledgerContainer) restart(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	stopTimeout := 10 * time.Second
	require.NoError(t, c.container.Stop(ctx, &stopTimeout))
	require.NoError(t, c.container.Start(ctx))
}

// adminClient returns an SDK client carrying the admin token.
func (c *ledgerContainer) adminClient(t *testing.T) *ledgersdk.Client {
	t.Helper()
	client := ledgersdk.NewClient(c.baseURL(t))
	client.AdminToken = adminToken
	return client
}

// setupLedgerContainer starts a server with the default environment and
// returns an admin client for it.
func setupLedgerContainer(t *testing.T) *ledgersdk.Client {
	t.Helper()
	return startLedger(t, nil).adminClient(t)
}

// submitText appends each payload as a text record.
func submitText(t *testing.T, client *ledgersdk.Client, payloads ...string) []*ledgersdk.Block {
	t.Helper()
	blocks := make([]*ledgersdk.Block, 0, len(payloads))
	for _, p := range payloads {
		b, err := client.SubmitLog(t.Context(), ledgersdk.SubmitLogRequest{
			Payload:  p,
			Encoding: ledgersdk.EncodingText,
		})
		require.NoError(t, err, "submit %q", p)
		blocks = append(blocks, b)
	}
	return blocks
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *ledgersdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertChainIntact runs a full verification and expects it to pass.
func assertChainIntact(t *testing.T, client *ledgersdk.Client, wantBlocks uint64) {
	t.Helper()
	res, err := client.Verify(t.Context())
	require.NoError(t, err)
	require.True(t, res.OK, "chain should verify, reason: %s", res.Reason)
	require.Equal(t, wantBlocks, res.BlocksChecked)
}

// assertAPIError checks that err is an API error with the given code.
func assertAPIError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, ledgersdk.IsCode(err, code), "expected %s, got: %v", code, err)
}
