package ledger_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/stretchr/testify/require"
)

// TestLiveFeed verifies that appends and heartbeats reach a websocket
// subscriber, and that heartbeats never carry the TOTP code.
func TestLiveFeed(t *testing.T) {
	client := setupLedgerContainer(t)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Second)
	defer cancel()

	events := make(chan ledgersdk.FeedEvent, 32)
	done := make(chan error, 1)
	go func() {
		done <- client.Watch(ctx, func(ev ledgersdk.FeedEvent) error {
			events <- ev
			return nil
		})
	}()

	// The first heartbeat proves the subscription is live.
	var status feed.SystemStatus
	waitFor(t, events, feed.EventSystemStatus, &status)
	require.True(t, status.SignerReady)
	require.Positive(t, status.TOTPPeriod)

	submitText(t, client, "streamed")

	var appended feed.BlockAppended
	waitFor(t, events, feed.EventBlockAppended, &appended)
	require.Equal(t, uint64(0), appended.Index)

	cancel()
	<-done
}

func waitFor(t *testing.T, events <-chan ledgersdk.FeedEvent, typ string, data any) {
	t.Helper()
	deadline := time.After(15 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != typ {
				continue
			}
			require.NotContains(t, string(ev.Data), `"code"`)
			require.NoError(t, json.Unmarshal(ev.Data, data))
			return
		case <-deadline:
			t.Fatalf("no %s event", typ)
		}
	}
}
