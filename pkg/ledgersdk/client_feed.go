package ledgersdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

// Watch subscribes to the live feed and calls fn for each event. It returns
// when ctx is cancelled (with ctx.Err()), when fn returns an error, or when
// the connection drops.
func (c *Client) Watch(ctx context.Context, fn func(FeedEvent) error) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.feedURL(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to feed: %s: %w", resp.Status, err)
		}
		return fmt.Errorf("failed to connect to feed: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("feed read failed: %w", err)
		}

		var ev FeedEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			return fmt.Errorf("failed to decode feed event: %w", err)
		}
		if err := fn(ev); err != nil {
			if errors.Is(err, ErrStopWatch) {
				return nil
			}
			return err
		}
	}
}

// ErrStopWatch can be returned by a Watch callback to end the subscription
// without an error.
var ErrStopWatch = errors.New("stop watch")

func (c *Client) feedURL() string {
	u := c.BaseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/v1/feed"
}
