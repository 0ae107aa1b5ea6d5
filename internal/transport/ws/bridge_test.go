package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eray464646/Algorithmen/internal/game"
	"github.com/Eray464646/Algorithmen/internal/model"
	"github.com/Eray464646/Algorithmen/internal/store"
)

func wsQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:           "q" + string(rune('1'+i)),
			Question:     "?",
			Choices:      []string{"a", "b", "c"},
			CorrectIndex: 0,
		}
	}
	return qs
}

func newTestConn(code, playerID string) *Connection {
	return &Connection{RoomCode: code, PlayerID: playerID, Send: make(chan []byte, 256)}
}

func waitForPlayers(t *testing.T, s *game.Session, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(s.Room().Players) == n
	}, 3*time.Second, 10*time.Millisecond)
}

func waitForAnswer(t *testing.T, s *game.Session, playerID string, q int) {
	t.Helper()
	require.Eventually(t, func() bool {
		p := s.Room().FindPlayer(playerID)
		return p != nil && p.AnswerAt(q) != nil
	}, 3*time.Second, 10*time.Millisecond)
}

func waitForReveal(t *testing.T, s *game.Session, q int) {
	t.Helper()
	require.Eventually(t, func() bool {
		r := s.Room().LastReveal
		return r != nil && r.QuestionIndex == q
	}, 3*time.Second, 10*time.Millisecond)
}

// decode avoids require: it runs inside Eventually conditions, which execute
// on their own goroutine.
func decode(t *testing.T, data []byte) Message {
	t.Helper()
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Errorf("undecodable envelope: %v", err)
	}
	return msg
}

// A reconnect must not cost the client any commands: the session's command
// stream has a single pump that follows the currently registered connection,
// so the live socket sees every reveal and the podium even after the first
// socket dropped mid-lobby.
func TestBridge_ReconnectKeepsEveryCommand(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	host, err := game.CreateRoom(ctx, st, "Alice", wsQuestions(3), 2, 30)
	require.NoError(t, err)
	guest, err := game.JoinRoom(ctx, st, host.Room().Code, "Bob")
	require.NoError(t, err)
	code := host.Room().Code

	h := NewHandler(NewHub(), nil, nil)

	// First connect, then the socket drops before the game starts.
	conn1 := newTestConn(code, guest.PlayerID())
	h.hub.Register(conn1)
	h.ensureBridge(guest)
	h.hub.Unregister(conn1)

	// Reconnect: same session, fresh connection, no second pump.
	conn2 := newTestConn(code, guest.PlayerID())
	h.hub.Register(conn2)
	h.ensureBridge(guest)
	h.resync(guest, conn2)

	waitForPlayers(t, host, 2)
	require.NoError(t, host.Start(ctx))

	for q := 1; q <= 3; q++ {
		require.Eventually(t, func() bool {
			return guest.Phase() == game.Phase{Kind: game.PhaseAnswering, Question: q}
		}, 3*time.Second, 10*time.Millisecond)

		require.NoError(t, host.SubmitAnswer(ctx, 0))
		waitForAnswer(t, guest, host.PlayerID(), q)
		require.NoError(t, guest.SubmitAnswer(ctx, 1))

		waitForReveal(t, host, q)
		require.NoError(t, host.Next(ctx))
	}

	reveals, podiums := 0, 0
	require.Eventually(t, func() bool {
		for {
			select {
			case data := <-conn2.Send:
				switch decode(t, data).Type {
				case MsgReveal:
					reveals++
				case MsgPodium:
					podiums++
				}
			default:
				return reveals == 3 && podiums == 1
			}
		}
	}, 3*time.Second, 10*time.Millisecond, "live connection lost reveal or podium messages")

	// The room closing reaches the live connection through the same pump.
	require.NoError(t, host.Leave(ctx))
	require.Eventually(t, func() bool {
		for {
			select {
			case data, ok := <-conn2.Send:
				if !ok {
					return false
				}
				if decode(t, data).Type == MsgRoomClosed {
					return true
				}
			default:
				return false
			}
		}
	}, 3*time.Second, 10*time.Millisecond)
}

// A fresh connection replays the current state instead of waiting for the
// next document change.
func TestResync_ReplaysCurrentState(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	host, err := game.CreateRoom(ctx, st, "Alice", wsQuestions(1), 2, 30)
	require.NoError(t, err)
	defer host.Leave(ctx)
	guest, err := game.JoinRoom(ctx, st, host.Room().Code, "Bob")
	require.NoError(t, err)

	waitForPlayers(t, host, 2)
	require.NoError(t, host.Start(ctx))
	require.Eventually(t, func() bool {
		return guest.Phase().Kind == game.PhaseAnswering
	}, 3*time.Second, 10*time.Millisecond)

	h := NewHandler(NewHub(), nil, nil)
	conn := newTestConn(host.Room().Code, guest.PlayerID())
	h.hub.Register(conn)
	h.resync(guest, conn)

	var types []MessageType
	for len(conn.Send) > 0 {
		types = append(types, decode(t, <-conn.Send).Type)
	}
	assert.Equal(t, []MessageType{MsgTimerStarted, MsgQuestion}, types)
}
