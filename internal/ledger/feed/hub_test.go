package feed_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsToSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := feed.NewHub(nil)
	go func() { _ = hub.Run(ctx) }()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(feed.Event{Type: feed.EventBlockAppended, Data: feed.BlockAppended{Index: 7, BlockHash: "ab"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type string             `json:"type"`
		Time time.Time          `json:"time"`
		Data feed.BlockAppended `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &got))
	require.Equal(t, feed.EventBlockAppended, got.Type)
	require.Equal(t, uint64(7), got.Data.Index)
	require.False(t, got.Time.IsZero())
}

func TestHubDropsSubscriberOnDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := feed.NewHub(nil)
	go func() { _ = hub.Run(ctx) }()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := feed.NewHub(nil)
	for range 1000 {
		hub.Publish(feed.Event{Type: feed.EventSystemStatus})
	}
	feed.Discard.Publish(feed.Event{Type: feed.EventSystemStatus})
}
