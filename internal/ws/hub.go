// Package ws streams layout events (accessory actions, switch position
// changes, section occupancy) to connected viewers over WebSocket.
package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event is a broadcast layout change.
type Event struct {
	Type        string      `json:"type"`
	AccessoryID uint        `json:"accessoryId,omitempty"`
	SwitchID    uint        `json:"switchId,omitempty"`
	SectionID   uint        `json:"sectionId,omitempty"`
	Payload     interface{} `json:"payload,omitempty"`
}

// Hub maintains the set of connected clients and fans events out to them.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*Client]bool),
	}
}

// Broadcast sends an event to every connected client. Slow clients whose
// send buffer is full are dropped rather than allowed to stall the rest.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to marshal event", zap.Error(err))
		return
	}

	h.mu.RLock()
	var stalled []*Client
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.logger.Warn("dropping stalled viewer", zap.String("clientId", client.id))
		h.remove(client)
	}
}

// ClientCount reports how many viewers are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.logger.Info("viewer connected", zap.String("clientId", client.id))
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Info("viewer disconnected", zap.String("clientId", client.id))
	}
	h.mu.Unlock()
}
