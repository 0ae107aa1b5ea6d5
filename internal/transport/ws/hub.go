package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message pushed to a client.
type MessageType string

const (
	MsgLobbyUpdate  MessageType = "lobby_update"
	MsgQuestion     MessageType = "question"
	MsgReveal       MessageType = "reveal"
	MsgPodium       MessageType = "podium"
	MsgTimerStarted MessageType = "timer_started"
	MsgTimerStopped MessageType = "timer_stopped"
	MsgRoomClosed   MessageType = "room_closed"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode marshals an envelope for the wire.
func Encode(msgType MessageType, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(&Message{Type: msgType, Payload: raw})
}

// Hub tracks the WebSocket connections per room.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[string]*Connection // roomCode -> playerID -> conn
}

// Connection represents one client's WebSocket connection.
type Connection struct {
	RoomCode string
	PlayerID string
	Send     chan []byte

	mu     sync.Mutex
	closed bool
}

// closeSend shuts the outbound channel exactly once, after which push
// becomes a no-op. The bridge goroutine can race disconnects, so the
// channel close has to be guarded.
func (c *Connection) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[string]*Connection),
	}
}

// Register adds a connection, replacing any previous one for the player.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[conn.RoomCode] == nil {
		h.conns[conn.RoomCode] = make(map[string]*Connection)
	}
	if old, ok := h.conns[conn.RoomCode][conn.PlayerID]; ok {
		old.closeSend()
	}
	h.conns[conn.RoomCode][conn.PlayerID] = conn
	log.Printf("player %s connected to room %s", conn.PlayerID, conn.RoomCode)
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if players, ok := h.conns[conn.RoomCode]; ok {
		if existing, ok := players[conn.PlayerID]; ok && existing == conn {
			delete(players, conn.PlayerID)
			conn.closeSend()
			log.Printf("player %s disconnected from room %s", conn.PlayerID, conn.RoomCode)
		}
		if len(players) == 0 {
			delete(h.conns, conn.RoomCode)
		}
	}
}

// Send delivers a message to the player's currently registered connection.
// A player with no live connection just misses the push; the resync on the
// next connect catches them up.
func (h *Hub) Send(roomCode, playerID string, data []byte) {
	h.mu.RLock()
	conn := h.conns[roomCode][playerID]
	h.mu.RUnlock()
	if conn != nil {
		conn.push(data)
	}
}

// push queues a message without blocking; a full buffer drops the message,
// the client converges on the next snapshot.
func (c *Connection) push(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}
