// Package ws serves the live family map: one long-lived connection per
// watcher, fed by the ingestion pipeline through the connection hub.
package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
	"github.com/famhub/location-tracking-system/pkg/metrics"
	ws "github.com/famhub/location-tracking-system/pkg/wsHub"
)

const serviceName = "tracking-service"

type FamilyWsHandler struct {
	connections *ws.ConnectionHub
	l           logger.Logger

	upgrader websocket.Upgrader
}

func NewFamilyWsHandler(connections *ws.ConnectionHub, l logger.Logger) *FamilyWsHandler {
	return &FamilyWsHandler{
		connections: connections,
		l:           l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth happens via the bearer token middleware, not the origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Watch upgrades the request and keeps the connection registered until the
// client goes away. Only members of the family (or admins) may watch it.
func (h *FamilyWsHandler) Watch(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_watch_family")
	user := models.UserFromContext(ctx)

	familyID, err := uuid.Parse(r.PathValue("family_id"))
	if err != nil {
		http.Error(w, "invalid family uuid format", http.StatusBadRequest)
		return
	}

	if user == nil || user.IsAnonymous() {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}
	if user.FamilyID != familyID && user.Role != types.RoleAdmin {
		http.Error(w, "forbidden: not a member of this family", http.StatusForbidden)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "websocket upgrade failed", err)
		return
	}

	conn := ws.NewConn(ctx, familyID, socket)
	if err := h.connections.Add(conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register watcher", err)
		conn.Close()
		return
	}

	metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName).Inc()
	h.l.Info(ctx, "family watcher connected", "conn_id", conn.ID())

	defer func() {
		h.connections.Delete(conn)
		metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName).Dec()
		h.l.Info(ctx, "family watcher disconnected", "conn_id", conn.ID())
	}()

	// The map stream is one-way; inbound frames only keep the connection
	// alive and surface closes.
	err = conn.Listen(func(msg map[string]any) error {
		return nil
	})
	if err != nil {
		h.l.Debug(ctx, "watcher listen loop ended", "error", err.Error())
	}
}
