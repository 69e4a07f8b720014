// Package socket keeps the set of connected dashboard websockets and
// broadcasts events to them.
package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"rationdist/pkg/notify"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Hub tracks connected clients by id.
type Hub struct {
	clients map[string]Conn
	mu      sync.RWMutex
	// writeMu serialises writes, a websocket allows one writer at a time
	writeMu sync.Mutex
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: make(map[string]Conn), logger: logger}
}

// Register adds a client.
func (h *Hub) Register(id string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = conn
	h.logger.Debug("websocket client registered", zap.String("client", id))
}

// Unregister removes a client.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		h.logger.Debug("websocket client unregistered", zap.String("client", id))
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts ev as JSON. Clients that fail to receive it are
// dropped and closed.
func (h *Hub) Publish(_ context.Context, ev notify.Event) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.mu.RLock()
	targets := make(map[string]Conn, len(h.clients))
	for id, c := range h.clients {
		targets[id] = c
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	var failed []string
	for id, c := range targets {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Info("websocket send failed", zap.String("client", id), zap.Error(err))
			failed = append(failed, id)
		}
	}
	h.writeMu.Unlock()

	for _, id := range failed {
		h.mu.Lock()
		c, ok := h.clients[id]
		delete(h.clients, id)
		h.mu.Unlock()
		if ok {
			_ = c.Close()
		}
	}
	return nil
}
