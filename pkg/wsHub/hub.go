package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/Temutjin2k/route-guard/pkg/logger"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	"github.com/google/uuid"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub keeps every active websocket connection
type ConnectionHub struct {
	clients map[uuid.UUID]*Conn
	l       logger.Logger
	mu      sync.Mutex
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[uuid.UUID]*Conn),
		l:       l,
	}
}

// Add registers a connection. An existing connection with the same ID is closed.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")

	if existing, ok := h.clients[newConn.id]; ok {
		h.l.Warn(ctx, "replacing existing connection", "conn_id", existing.id)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx, "failed to close existing conn", "conn_id", existing.id, "err", err.Error())
		}
	}

	h.clients[newConn.id] = newConn
	return nil
}

// Delete closes and removes the connection
func (h *ConnectionHub) Delete(id uuid.UUID) error {
	h.mu.Lock()
	conn, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Warn(wrap.WithAction(context.Background(), "ws_connection_delete"), "failed to close conn", "conn_id", id, "err", err.Error())
	}
	return nil
}

// Broadcast sends msg to every client and drops the ones that fail.
// Returns the number of clients that received the message.
func (h *ConnectionHub) Broadcast(ctx context.Context, msg any) int {
	ctx = wrap.WithAction(ctx, "ws_broadcast")

	clients := h.snapshot()

	sent := 0
	for _, conn := range clients {
		if err := conn.Send(msg); err != nil {
			h.l.Warn(ctx, "dropping websocket client", "conn_id", conn.id, "err", err.Error())
			_ = h.Delete(conn.id)
			continue
		}
		sent++
	}
	return sent
}

// Len returns the number of active connections
func (h *ConnectionHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close closes every websocket connection
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	for _, conn := range h.snapshot() {
		_ = h.Delete(conn.id)
	}

	h.l.Info(ctx, "all websocket connections closed gracefully")
}

func (h *ConnectionHub) snapshot() []*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		clients = append(clients, conn)
	}
	return clients
}
