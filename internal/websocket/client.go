package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apierrors "fruitdash/internal/errors"
	"fruitdash/internal/infrastructure"
	"fruitdash/internal/services"
	apiv1 "fruitdash/pkg/contracts/api/v1"
	"fruitdash/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Outbound messages buffered per client
	sendBuffer = 16
)

// Timing bounds the keepalive of one connection
type Timing struct {
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

// Client is one dashboard session. Each selection it receives is answered
// with a freshly computed view on the same connection.
type Client struct {
	hub       *Hub
	conn      Connection
	service   ViewService
	validator RequestValidator
	timing    Timing

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	messagesReceived int64
	messagesSent     int64
}

// NewClient creates a session for an upgraded connection
func NewClient(hub *Hub, conn Connection, service ViewService, validator RequestValidator, timing Timing, traceID, remoteAddr string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	if traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		service:     service,
		validator:   validator,
		timing:      timing,
		send:        make(chan []byte, sendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  remoteAddr,
		connectedAt: time.Now(),
		logger:      logger,
	}
}

// ID returns the session identifier
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// ReadPump reads selections until the peer goes away. Selections are handled
// in arrival order, so replies keep the same order.
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.context(), "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.timing.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.timing.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.timing.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived++

		c.handleMessage(message)
	}
}

// handleMessage dispatches one client message on its type
func (c *Client) handleMessage(message []byte) {
	var envelope struct {
		Type events.MessageType `json:"type"`
	}
	if err := json.Unmarshal(message, &envelope); err != nil {
		c.sendError(c.context(), apierrors.InvalidRequestWithError(err))
		return
	}

	switch envelope.Type {
	case events.MessageTypeHeartbeat:
	case "", events.MessageTypeSelect:
		c.handleSelection(message)
	default:
		c.sendError(c.context(), apierrors.ErrValidation("type",
			"unsupported message type "+string(envelope.Type)))
	}
}

// handleSelection decodes, validates and answers one selection
func (c *Client) handleSelection(message []byte) {
	ctx := c.context()

	var req apiv1.DashboardRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.sendError(ctx, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := c.validator.ValidateStruct(req); err != nil {
		c.sendError(ctx, err)
		return
	}

	view, err := c.service.View(ctx, req)
	if err != nil {
		c.sendError(ctx, err)
		return
	}

	c.enqueue(ctx, events.NewMessage(c.id, events.MessageTypeView, c.traceID, view))
}

// sendError reports a failed selection without closing the session
func (c *Client) sendError(ctx context.Context, err error) {
	payload := events.ErrorPayload{Code: "INTERNAL_ERROR", Message: "failed to compute view"}

	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
		payload.Code = apiErr.ErrorCode
		payload.Message = apiErr.Message
		payload.Details = apiErr.Details
	case errors.Is(err, services.ErrDatasetNotLoaded):
		payload.Code = apierrors.ErrDataNotLoaded.ErrorCode
		payload.Message = apierrors.ErrDataNotLoaded.Message
	case errors.Is(err, services.ErrUnknownMode):
		payload.Code = apierrors.CodeValidationFailed
		payload.Message = err.Error()
	}

	c.logger.WarnContext(ctx, "selection rejected",
		slog.String("code", payload.Code),
		slog.String("error", err.Error()))
	c.enqueue(ctx, events.NewMessage(c.id, events.MessageTypeError, c.traceID, payload))
}

// enqueue hands a message to the write pump. A client that cannot keep up
// is disconnected rather than blocking the read loop.
func (c *Client) enqueue(ctx context.Context, msg events.WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to encode message", slog.String("error", err.Error()))
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.WarnContext(ctx, "Client send buffer full, disconnecting")
		c.conn.Close()
	}
}

// closeSend stops the write pump; safe to call more than once
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump writes queued messages and keepalive pings to the connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.timing.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(c.context(), "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
