package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub keeps every active live-map WebSocket connection grouped by
// family, so an accepted location update can be fanned out to all watchers
// of that family.
type ConnectionHub struct {
	families map[uuid.UUID]map[uuid.UUID]*Conn
	l        logger.Logger
	mu       sync.Mutex
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		families: make(map[uuid.UUID]map[uuid.UUID]*Conn),
		l:        l,
	}
}

// Add registers a new watcher connection under its family.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.families[newConn.familyID]
	if !ok {
		group = make(map[uuid.UUID]*Conn)
		h.families[newConn.familyID] = group
	}
	group[newConn.id] = newConn

	return nil
}

// Delete removes and closes a watcher connection.
func (h *ConnectionHub) Delete(conn *Conn) error {
	if conn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "ws_connection_delete")

	group, ok := h.families[conn.familyID]
	if !ok {
		return ErrConnIsNotFound
	}
	if _, ok := group[conn.id]; !ok {
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Warn(ctx,
			"failed to close conn",
			"family_id", conn.familyID,
			"err", err.Error(),
		)
	}

	delete(group, conn.id)
	if len(group) == 0 {
		delete(h.families, conn.familyID)
	}

	return nil
}

// Broadcast sends a message to every watcher of the given family.
// Dead connections are dropped from the hub instead of failing the caller.
func (h *ConnectionHub) Broadcast(familyID uuid.UUID, msg any) {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.families[familyID]))
	for _, c := range h.families[familyID] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "ws_broadcast")

	for _, c := range conns {
		if err := c.Send(msg); err != nil {
			h.l.Debug(ctx, "dropping dead watcher connection", "family_id", familyID)
			_ = h.Delete(c)
		}
	}
}

// WatcherCount returns the number of active watchers for a family.
func (h *ConnectionHub) WatcherCount(familyID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.families[familyID])
}

// Close closes every websocket connection.
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	h.mu.Lock()
	conns := []*Conn{}
	for _, group := range h.families {
		for _, c := range group {
			conns = append(conns, c)
		}
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = h.Delete(c)
	}

	h.l.Info(ctx, "all websocket connections closed gracefully")
}
