package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = (pongTimeout * 9) / 10
)

// Hub fans events out to WebSocket subscribers. A single goroutine (Run)
// owns the subscriber set; everything else talks to it over channels.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	broadcastCh  chan []byte
	registerCh   chan *client
	unregisterCh chan *client

	subscribers atomic.Int64
	now         func() time.Time
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			// The feed is read-only and carries no secrets.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		broadcastCh:  make(chan []byte, 256),
		registerCh:   make(chan *client),
		unregisterCh: make(chan *client),
		now:          time.Now,
	}
}

// Run owns the subscriber set until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) error {
	clients := make(map[*client]struct{})
	drop := func(c *client) {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
			h.subscribers.Store(int64(len(clients)))
		}
	}

	for {
		select {
		case <-ctx.Done():
			for c := range clients {
				drop(c)
			}
			return nil

		case c := <-h.registerCh:
			clients[c] = struct{}{}
			h.subscribers.Store(int64(len(clients)))
			h.log.Debug("feed subscriber connected", "total", len(clients))

		case c := <-h.unregisterCh:
			drop(c)
			h.log.Debug("feed subscriber disconnected", "total", len(clients))

		case msg := <-h.broadcastCh:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					// Slow subscriber; cut it loose rather than stall the feed.
					drop(c)
				}
			}
		}
	}
}

// Publish queues ev for every subscriber. Events are dropped when the queue
// is full.
func (h *Hub) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = h.now().UTC()
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode feed event", "type", ev.Type, "error", err)
		return
	}
	select {
	case h.broadcastCh <- msg:
	default:
		h.log.Warn("feed queue full, dropping event", "type", ev.Type)
	}
}

// Subscribers is the number of connected clients.
func (h *Hub) Subscribers() int {
	return int(h.subscribers.Load())
}

// ServeHTTP upgrades the request and streams events until either side hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case h.registerCh <- c:
	case <-r.Context().Done():
		_ = conn.Close()
		return
	}

	var once sync.Once
	unregister := func() {
		once.Do(func() {
			select {
			case h.unregisterCh <- c:
			case <-time.After(time.Second):
			}
		})
	}

	go c.writePump(unregister)
	go c.readPump(unregister)
}

func (c *client) writePump(unregister func()) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		unregister()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only exists to notice disconnects and answer pongs.
func (c *client) readPump(unregister func()) {
	defer func() {
		unregister()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
