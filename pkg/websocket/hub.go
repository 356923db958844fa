// Package websocket streams reported opportunities to connected clients.
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub accepts WebSocket clients and broadcasts messages to all of them.
type Hub struct {
	upgrader websocket.Upgrader
	config   Config
	logger   *zap.Logger
	mu       sync.RWMutex
	clients  map[*client]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// Config holds hub configuration.
type Config struct {
	SendBufferSize int           // per-client queue; a full queue drops the client
	WriteTimeout   time.Duration // per-message write deadline
	PingInterval   time.Duration
	PongTimeout    time.Duration
	Logger         *zap.Logger
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	started   time.Time
}

// NewHub creates a new hub.
func NewHub(cfg Config) *Hub {
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 16
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 2 * cfg.PingInterval
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		config:  cfg,
		logger:  cfg.Logger,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket-upgrade-failed", zap.Error(err))
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, h.config.SendBufferSize),
		done:    make(chan struct{}),
		started: time.Now(),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.wg.Add(2)
	h.mu.Unlock()

	ActiveClients.Set(float64(count))
	h.logger.Info("websocket-client-connected",
		zap.String("remote-addr", r.RemoteAddr),
		zap.Int("clients", count))

	go h.writePump(c)
	go h.readPump(c)
}

// Broadcast queues msg for every client and returns how many accepted it.
// Clients whose queue is full are disconnected.
func (h *Hub) Broadcast(msg []byte) int {
	h.mu.RLock()
	var slow []*client
	delivered := 0
	for c := range h.clients {
		select {
		case c.send <- msg:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	BroadcastsTotal.Inc()
	for _, c := range slow {
		MessagesDroppedTotal.WithLabelValues("client_queue_full").Inc()
		h.logger.Warn("websocket-client-too-slow", zap.String("remote-addr", c.conn.RemoteAddr().String()))
		h.remove(c)
	}

	return delivered
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
	h.wg.Wait()

	h.logger.Info("websocket-hub-closed")
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(h.config.WriteTimeout))
		c.conn.Close()
	})

	if ok {
		ActiveClients.Set(float64(count))
		ConnectionDuration.Observe(time.Since(c.started).Seconds())
		h.logger.Info("websocket-client-disconnected", zap.Int("clients", count))
	}
}

// writePump owns all writes to the connection.
func (h *Hub) writePump(c *client) {
	defer h.wg.Done()
	defer h.remove(c)

	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			err := c.conn.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				h.logger.Debug("websocket-write-failed", zap.Error(err))
				return
			}
			MessagesSentTotal.Inc()
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed.
func (h *Hub) readPump(c *client) {
	defer h.wg.Done()
	defer h.remove(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}
