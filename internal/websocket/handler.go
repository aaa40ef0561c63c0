package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"fruitdash/internal/config"
	apierrors "fruitdash/internal/errors"
	mw "fruitdash/internal/middleware"
)

// Handler upgrades GET /ws requests into dashboard sessions
type Handler struct {
	hub          *Hub
	upgrader     websocket.Upgrader
	service      ViewService
	validator    RequestValidator
	timing       Timing
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHandler creates the session endpoint. allowedOrigins limits which pages
// may open a session; same-host requests are always accepted.
func NewHandler(hub *Hub, service ViewService, validator RequestValidator, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		service:   service,
		validator: validator,
		timing: Timing{
			PongWait:       cfg.PongWait,
			PingPeriod:     cfg.PingPeriod,
			MaxMessageSize: cfg.MaxMessageSize,
		},
		logger:       logger.With(slog.String("component", "websocket.handler")),
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles the upgrade and starts the session pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		h.errorHandler.HandleError(w, r, apierrors.ErrUpgradeRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")))
		return
	}

	client := NewClient(h.hub, conn, h.service, h.validator, h.timing,
		mw.GetRequestID(r.Context()), r.RemoteAddr, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// checkOrigin accepts requests without an Origin header, same-host origins
// and the configured allow list
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}
