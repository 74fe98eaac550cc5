// Package realtime pushes change notifications to connected dashboards over
// websockets.
package realtime

import (
	"context"
	"encoding/json"

	"relais/internal/events"
	"relais/internal/metrics"
	"relais/internal/models"

	"go.uber.org/zap"
)

// Hub maintains the set of active clients and broadcasts changes to the ones
// allowed to see them.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan events.Change
	done       chan struct{}
	log        *zap.Logger
}

// connected is the first frame every client receives once registered.
var connected = []byte(`{"type":"connected"}`)

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.Change, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			c.send <- connected
			metrics.SetRealtimeClients(len(h.clients))
		case c := <-h.unregister:
			h.drop(c)
		case change := <-h.broadcast:
			h.deliver(change)
		}
	}
}

// Broadcast queues change for delivery. It never blocks; changes arriving
// while the queue is full are dropped.
func (h *Hub) Broadcast(change events.Change) {
	select {
	case h.broadcast <- change:
	default:
		h.log.Warn("realtime queue full, dropping change",
			zap.String("entity", change.Entity), zap.Uint("id", change.ID))
	}
}

// add hands c to the hub; it fails once the hub has stopped.
func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish lets the hub act as an in-process event sink when redis is not
// available to relay changes between instances.
func (h *Hub) Publish(_ context.Context, change events.Change) error {
	h.Broadcast(change)
	return nil
}

func (h *Hub) deliver(change events.Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		h.log.Error("encode change", zap.Error(err))
		return
	}

	for c := range h.clients {
		if !Visible(c.claims, change) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// slow reader
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.SetRealtimeClients(len(h.clients))
}

// Visible reports whether the holder of claims may receive change.
func Visible(claims *models.UserClaims, change events.Change) bool {
	switch {
	case claims.IsAdmin():
		return true
	case claims.Role == models.RoleDeveloper:
		return change.Entity == events.EntityOperationType
	case claims.Role == models.RolePartner:
		return claims.PartnerID != nil && change.PartnerID != nil && *claims.PartnerID == *change.PartnerID
	case claims.Role == models.RoleAgent:
		return change.UserID != nil && *change.UserID == claims.UserID
	}
	return false
}
