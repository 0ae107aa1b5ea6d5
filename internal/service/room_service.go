package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Eray464646/Algorithmen/internal/cache"
	"github.com/Eray464646/Algorithmen/internal/game"
	"github.com/Eray464646/Algorithmen/internal/model"
	"github.com/Eray464646/Algorithmen/internal/store"
)

// Multiplayer games keep at most 20 questions per round, matching the
// single-player modes.
const questionsPerGame = 20

// RoomService fronts the multiplayer core for the gateway: it creates and
// joins sessions, keeps a registry of the live ones keyed by player id, and
// mirrors scores into the leaderboard cache.
//
// Known limitation, kept from the original design: if the host's session
// disappears without an explicit leave, nobody can advance the room and it
// stays stuck in its last state.
type RoomService struct {
	store       store.RoomStore
	leaderboard cache.LeaderboardCache
	authSvc     *AuthService

	mu       sync.RWMutex
	sessions map[string]*game.Session
}

// NewRoomService creates a new room service.
func NewRoomService(st store.RoomStore, leaderboard cache.LeaderboardCache, authSvc *AuthService) *RoomService {
	return &RoomService{
		store:       st,
		leaderboard: leaderboard,
		authSvc:     authSvc,
		sessions:    make(map[string]*game.Session),
	}
}

// JoinResult is returned to a client that created or joined a room.
type JoinResult struct {
	Room     *model.Room `json:"room"`
	PlayerID string      `json:"playerId"`
	Token    string      `json:"token"`
	IsHost   bool        `json:"isHost"`
}

// CreateRoom prepares the frozen question set and opens a room with the
// caller as host.
func (s *RoomService) CreateRoom(ctx context.Context, name string, raws []model.RawQuestion, maxPlayers, timerSeconds int) (*JoinResult, error) {
	questions, err := model.PrepareQuestions(raws, questionsPerGame)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare questions: %w", err)
	}

	sess, err := game.CreateRoom(ctx, s.store, name, questions, maxPlayers, timerSeconds)
	if err != nil {
		return nil, err
	}
	return s.admit(ctx, sess)
}

// JoinRoom joins an existing room by code.
func (s *RoomService) JoinRoom(ctx context.Context, code, name string) (*JoinResult, error) {
	sess, err := game.JoinRoom(ctx, s.store, code, name)
	if err != nil {
		return nil, err
	}
	return s.admit(ctx, sess)
}

func (s *RoomService) admit(ctx context.Context, sess *game.Session) (*JoinResult, error) {
	room := sess.Room()

	token, err := s.authSvc.GeneratePlayerToken(room.Code, sess.PlayerID(), sess.IsHost())
	if err != nil {
		_ = sess.Leave(ctx)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.leaderboard.UpdateScore(ctx, room.Code, sess.PlayerID(), 0); err != nil {
		log.Printf("room %s: failed to init leaderboard entry: %v", room.Code, err)
	}

	s.mu.Lock()
	s.sessions[sess.PlayerID()] = sess
	s.mu.Unlock()

	return &JoinResult{
		Room:     room,
		PlayerID: sess.PlayerID(),
		Token:    token,
		IsHost:   sess.IsHost(),
	}, nil
}

// Session looks up the live session for a player id.
func (s *RoomService) Session(playerID string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[playerID]
	return sess, ok
}

// ToggleReady flips the player's ready flag.
func (s *RoomService) ToggleReady(ctx context.Context, playerID string) error {
	sess, ok := s.Session(playerID)
	if !ok {
		return store.ErrNotFound
	}
	return sess.ToggleReady(ctx)
}

// SubmitAnswer records the player's answer and mirrors the new score into
// the leaderboard.
func (s *RoomService) SubmitAnswer(ctx context.Context, playerID string, selectedIndex int) error {
	sess, ok := s.Session(playerID)
	if !ok {
		return store.ErrNotFound
	}
	if err := sess.SubmitAnswer(ctx, selectedIndex); err != nil {
		return err
	}

	room := sess.Room()
	if me, ok := sess.Player(); ok {
		if err := s.leaderboard.UpdateScore(ctx, room.Code, me.ID, me.Score); err != nil {
			log.Printf("room %s: failed to update leaderboard: %v", room.Code, err)
		}
	}
	return nil
}

// StartGame begins the game; host only.
func (s *RoomService) StartGame(ctx context.Context, playerID string) error {
	sess, ok := s.Session(playerID)
	if !ok {
		return store.ErrNotFound
	}
	return sess.Start(ctx)
}

// NextQuestion advances past a revealed question; host only.
func (s *RoomService) NextQuestion(ctx context.Context, playerID string) error {
	sess, ok := s.Session(playerID)
	if !ok {
		return store.ErrNotFound
	}
	return sess.Next(ctx)
}

// ResetGame returns a finished room to the lobby; host only. Leaderboard
// entries are rewound to zero alongside the players.
func (s *RoomService) ResetGame(ctx context.Context, playerID string) error {
	sess, ok := s.Session(playerID)
	if !ok {
		return store.ErrNotFound
	}
	if err := sess.Reset(ctx); err != nil {
		return err
	}

	room := sess.Room()
	for _, p := range room.Players {
		if err := s.leaderboard.UpdateScore(ctx, room.Code, p.ID, 0); err != nil {
			log.Printf("room %s: failed to reset leaderboard: %v", room.Code, err)
		}
	}
	return nil
}

// LeaveRoom removes the player; the host or last player leaving deletes
// the room and its leaderboard.
func (s *RoomService) LeaveRoom(ctx context.Context, playerID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[playerID]
	delete(s.sessions, playerID)
	s.mu.Unlock()
	if !ok {
		return store.ErrNotFound
	}

	room := sess.Room()
	deletesRoom := sess.IsHost() || len(room.Players) <= 1

	if err := sess.Leave(ctx); err != nil {
		return err
	}

	if deletesRoom {
		if err := s.leaderboard.Delete(ctx, room.Code); err != nil {
			log.Printf("room %s: failed to drop leaderboard: %v", room.Code, err)
		}
	} else if err := s.leaderboard.RemovePlayer(ctx, room.Code, playerID); err != nil {
		log.Printf("room %s: failed to drop leaderboard entry: %v", room.Code, err)
	}
	return nil
}

// Leaderboard returns the ranked scores for a room with names resolved
// from the current document.
func (s *RoomService) Leaderboard(ctx context.Context, code string, limit int) ([]cache.LeaderboardEntry, error) {
	entries, err := s.leaderboard.GetTop(ctx, code, limit)
	if err != nil {
		return nil, err
	}

	room, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if p := room.FindPlayer(entries[i].PlayerID); p != nil {
			entries[i].Name = p.Name
		}
	}
	return entries, nil
}
