package api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zappabad/papertrade/internal/session"
)

// Message is the WebSocket envelope.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client is one WebSocket connection.
type Client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub fans session events out to every connected client. Run owns the
// client set; the mutex only guards Count.
type Hub struct {
	cfg      Config
	logger   *slog.Logger
	snapshot func() any

	clients    map[*Client]bool
	mu         sync.Mutex
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
}

// NewHub creates a Hub. snapshot supplies the state sent to new clients.
func NewHub(cfg Config, snapshot func() any, logger *slog.Logger) *Hub {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		cfg:        cfg,
		logger:     logger,
		snapshot:   snapshot,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Run serves the hub until ctx is done or events' producer is done.
func (h *Hub) Run(ctx context.Context, events <-chan session.Event, done <-chan struct{}) {
	defer close(h.stopped)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			if h.snapshot != nil {
				c.send <- Message{Type: "snapshot", Data: h.snapshot()}
			}
			h.logger.Debug("websocket client registered")
		case c := <-h.unregister:
			h.remove(c)
		case ev := <-events:
			h.fanOut(Message{Type: string(ev.Kind()), Data: ev})
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) fanOut(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// slow client
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.logger.Debug("websocket client unregistered")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(h.cfg.AllowedOrigins, "*") {
				return true
			}
			return slices.Contains(h.cfg.AllowedOrigins, origin)
		},
	}
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS() http.HandlerFunc {
	up := h.upgrader()
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		c := &Client{conn: conn, send: make(chan Message, h.cfg.ClientBuffer)}
		select {
		case h.register <- c:
		case <-h.stopped:
			conn.Close()
			return
		}

		go c.writePump(h.cfg)
		go c.readPump(h)
	}
}

// readPump discards inbound frames and unregisters on error.
func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.stopped:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump(cfg Config) {
	ticker := time.NewTicker(cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
