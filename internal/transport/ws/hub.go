package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Message is the WebSocket envelope format, both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub tracks one connection per authenticated player and fans events out to
// individual players. The game service addresses the two members of a
// session explicitly, so no connection ever sees another session's state.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection

	broadcast chan *playerMessage
}

// Connection represents one player's WebSocket connection.
type Connection struct {
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

type playerMessage struct {
	playerID string
	message  *Message
}

// NewHub creates a hub and starts its fan-out loop.
func NewHub() *Hub {
	h := &Hub{
		conns:     make(map[string]*Connection),
		broadcast: make(chan *playerMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for msg := range h.broadcast {
		h.mu.RLock()
		conn, ok := h.conns[msg.playerID]
		h.mu.RUnlock()
		if !ok {
			continue
		}

		data, err := json.Marshal(msg.message)
		if err != nil {
			log.Error().Err(err).Str("type", msg.message.Type).Msg("failed to marshal event")
			continue
		}
		select {
		case conn.Send <- data:
		default:
			// Drop message if buffer full
		}
	}
}

// Register adds a connection. It reports false if the player already has a
// live connection, in which case the caller must close the new one.
func (h *Hub) Register(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn.PlayerID]; ok {
		return false
	}
	h.conns[conn.PlayerID] = conn
	log.Debug().Str("player_id", conn.PlayerID).Msg("player connected")
	return true
}

// Unregister removes a connection. It reports whether conn was the player's
// registered connection, so a rejected duplicate never triggers a forfeit.
func (h *Hub) Unregister(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	existing, ok := h.conns[conn.PlayerID]
	if !ok || existing != conn {
		return false
	}
	delete(h.conns, conn.PlayerID)
	close(conn.Send)
	log.Debug().Str("player_id", conn.PlayerID).Msg("player disconnected")
	return true
}

// BroadcastToPlayer sends an event to a single player (implements
// service.Broadcaster).
func (h *Hub) BroadcastToPlayer(playerID string, msgType string, payload interface{}) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("type", msgType).Msg("failed to marshal payload")
			return
		}
		raw = data
	}
	h.broadcast <- &playerMessage{
		playerID: playerID,
		message:  &Message{Type: msgType, Payload: raw},
	}
}
