package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fruitdash/internal/infrastructure"
	"fruitdash/pkg/contracts"
	"fruitdash/pkg/contracts/events"
)

// Hub tracks the open dashboard sessions. Sessions never share state; the
// hub exists so that they are counted and can be closed on shutdown.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics

	totalConnections int64

	quit     chan struct{}
	stopOnce sync.Once
	running  bool
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Stop closes every session and ends the hub loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Register adds a client; it is a no-op once the hub has stopped
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
		c.closeSend()
	}
}

// Unregister removes a client
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// ClientCount returns the number of open sessions
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run is the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			h.sessionDelta(ctx, 1)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			client.enqueue(ctx, events.NewMessage(client.id, events.MessageTypeConnect, client.traceID, map[string]interface{}{
				"status":      "connected",
				"client_id":   client.id,
				"api_version": contracts.APIVersion,
			}))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
			}
			count := len(h.clients)
			h.mu.Unlock()

			if !ok {
				continue
			}
			client.closeSend()

			ctx := client.context()
			h.sessionDelta(ctx, -1)
			h.logger.InfoContext(ctx, "Client unregistered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for _, c := range clients {
		c.closeSend()
		h.sessionDelta(c.context(), -1)
	}
	h.logger.Info("Hub shutting down", slog.Int("closed_sessions", len(clients)))
}

func (h *Hub) sessionDelta(ctx context.Context, delta int64) {
	if h.metrics != nil {
		h.metrics.WebSocketSessions.Add(ctx, delta)
	}
}

// Stats reports hub counters for diagnostics
func (h *Hub) Stats() map[string]int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]int64{
		"active_connections": int64(len(h.clients)),
		"total_connections":  h.totalConnections,
	}
}
