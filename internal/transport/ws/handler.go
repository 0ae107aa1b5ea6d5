package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Eray464646/Algorithmen/internal/game"
	"github.com/Eray464646/Algorithmen/internal/model"
	"github.com/Eray464646/Algorithmen/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler bridges each player's session command stream onto a WebSocket.
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
	roomSvc *service.RoomService

	mu      sync.Mutex
	bridges map[string]struct{} // playerID -> running command pump
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, authSvc *service.AuthService, roomSvc *service.RoomService) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		roomSvc: roomSvc,
		bridges: make(map[string]struct{}),
	}
}

// RoomWS handles GET /v1/ws/rooms/{code}?token=
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidatePlayerToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.RoomCode != code {
		http.Error(w, "token not valid for this room", http.StatusForbidden)
		return
	}

	sess, ok := h.roomSvc.Session(claims.PlayerID)
	if !ok {
		http.Error(w, "no live session for player", http.StatusNotFound)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		RoomCode: code,
		PlayerID: claims.PlayerID,
		Send:     make(chan []byte, 256),
	}

	h.hub.Register(conn)
	h.ensureBridge(sess)
	h.resync(sess, conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

// ensureBridge starts the session's command pump exactly once per player.
// The session command stream is single consumer, so the pump outlives any
// individual connection: it forwards every command through the hub to
// whichever connection is currently registered for the player. A reconnect
// therefore never leaves two consumers racing on one stream.
func (h *Handler) ensureBridge(sess *game.Session) {
	playerID := sess.PlayerID()

	h.mu.Lock()
	if _, running := h.bridges[playerID]; running {
		h.mu.Unlock()
		return
	}
	h.bridges[playerID] = struct{}{}
	h.mu.Unlock()

	code := sess.Room().Code
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.bridges, playerID)
			h.mu.Unlock()
		}()

		for cmd := range sess.Commands() {
			msg, err := encodeCommand(cmd)
			if err != nil {
				log.Printf("room %s: failed to encode %s: %v", code, cmd.Kind, err)
				continue
			}
			h.hub.Send(code, playerID, msg)
		}
		if msg, err := Encode(MsgRoomClosed, nil); err == nil {
			h.hub.Send(code, playerID, msg)
		}
	}()
}

// resync replays the current state onto a fresh connection, so a client that
// reconnected mid-game renders immediately instead of waiting for the next
// document change.
func (h *Handler) resync(sess *game.Session, conn *Connection) {
	for _, cmd := range sess.Resync() {
		msg, err := encodeCommand(cmd)
		if err != nil {
			log.Printf("room %s: failed to encode %s: %v", conn.RoomCode, cmd.Kind, err)
			continue
		}
		conn.push(msg)
	}
}

func encodeCommand(cmd game.Command) ([]byte, error) {
	switch cmd.Kind {
	case game.CommandRenderLobby:
		return Encode(MsgLobbyUpdate, map[string]interface{}{
			"room": cmd.Room,
		})
	case game.CommandRenderQuestion:
		var question *model.Question
		if cmd.Room != nil {
			question = cmd.Room.ActiveQuestion()
		}
		return Encode(MsgQuestion, map[string]interface{}{
			"questionIndex": cmd.Question,
			"question":      question,
			"room":          cmd.Room,
		})
	case game.CommandRenderReveal:
		var ranked []model.PlayerResult
		if cmd.Reveal != nil {
			ranked = game.RevealRanking(cmd.Reveal.PlayerResults)
		}
		return Encode(MsgReveal, map[string]interface{}{
			"reveal":  cmd.Reveal,
			"ranking": ranked,
		})
	case game.CommandRenderPodium:
		var standings []game.Standing
		if cmd.Room != nil {
			standings = game.Podium(cmd.Room.Players)
		}
		return Encode(MsgPodium, map[string]interface{}{
			"standings": standings,
		})
	case game.CommandStartTimer:
		return Encode(MsgTimerStarted, map[string]interface{}{
			"questionIndex": cmd.Question,
			"deadline":      cmd.Deadline,
		})
	case game.CommandStopTimer:
		return Encode(MsgTimerStopped, nil)
	}
	return Encode(MsgLobbyUpdate, nil)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}
		// Clients only listen on this socket; all verbs go through REST.
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
