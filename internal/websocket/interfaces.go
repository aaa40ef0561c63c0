package websocket

import (
	"context"
	"time"

	apiv1 "fruitdash/pkg/contracts/api/v1"
	"fruitdash/pkg/contracts/domain"
)

// Connection is the subset of *websocket.Conn a session uses
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
}

// ViewService recomputes the dashboard for a selection
type ViewService interface {
	View(ctx context.Context, req apiv1.DashboardRequest) (*domain.DashboardView, error)
}

// RequestValidator checks a decoded selection
type RequestValidator interface {
	ValidateStruct(v interface{}) error
}
