package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aegis.yaml")
	writeFile(t, path, "log_level: info\n")

	changes := make(chan Config, 4)
	w := &ConfigWatcher{
		Path:     path,
		OnChange: func(c Config) { changes <- c },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The watcher registers asynchronously, so keep writing until it sees one.
	var got Config
	require.Eventually(t, func() bool {
		writeFile(t, path, "log_level: debug\nstatus_interval: 1s\n")
		select {
		case got = <-changes:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.Equal(t, "debug", got.LogLevel)
	require.Equal(t, time.Second, got.StatusInterval)

	cancel()
	require.NoError(t, <-done)
}

func TestConfigWatcherKeepsRunningOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aegis.yaml")
	writeFile(t, path, "log_level: info\n")

	changes := make(chan Config, 4)
	w := &ConfigWatcher{Path: path, OnChange: func(c Config) { changes <- c }}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "totp_digits: 7\n")

	select {
	case c := <-changes:
		t.Fatalf("invalid config applied: %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}
