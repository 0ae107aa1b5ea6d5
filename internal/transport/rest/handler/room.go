package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Eray464646/Algorithmen/internal/game"
	"github.com/Eray464646/Algorithmen/internal/model"
	"github.com/Eray464646/Algorithmen/internal/service"
	"github.com/Eray464646/Algorithmen/internal/store"
	"github.com/Eray464646/Algorithmen/internal/transport/rest/middleware"
)

// RoomHandler exposes the multiplayer room verbs over REST.
type RoomHandler struct {
	roomSvc *service.RoomService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(roomSvc *service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

type createRoomRequest struct {
	Name         string              `json:"name"`
	Questions    []model.RawQuestion `json:"questions"`
	MaxPlayers   int                 `json:"maxPlayers"`
	TimerSeconds int                 `json:"timerPerQuestionSeconds"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.roomSvc.CreateRoom(r.Context(), req.Name, req.Questions, req.MaxPlayers, req.TimerSeconds)
	if err != nil {
		if errors.Is(err, model.ErrInvalidQuestion) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

type joinRoomRequest struct {
	Name string `json:"name"`
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.roomSvc.JoinRoom(r.Context(), code, req.Name)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Ready handles POST /v1/rooms/{code}/ready
func (h *RoomHandler) Ready(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing claims")
		return
	}
	if err := h.roomSvc.ToggleReady(r.Context(), claims.PlayerID); err != nil {
		respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type submitAnswerRequest struct {
	SelectedIndex int `json:"selectedIndex"`
}

// Answer handles POST /v1/rooms/{code}/answers
func (h *RoomHandler) Answer(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing claims")
		return
	}

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.roomSvc.SubmitAnswer(r.Context(), claims.PlayerID, req.SelectedIndex); err != nil {
		respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Start handles POST /v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.hostAction(w, r, h.roomSvc.StartGame)
}

// Next handles POST /v1/rooms/{code}/next
func (h *RoomHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.hostAction(w, r, h.roomSvc.NextQuestion)
}

// Reset handles POST /v1/rooms/{code}/reset
func (h *RoomHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.hostAction(w, r, h.roomSvc.ResetGame)
}

// Leave handles POST /v1/rooms/{code}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.hostAction(w, r, h.roomSvc.LeaveRoom)
}

// hostAction runs one of the claims-scoped room verbs.
func (h *RoomHandler) hostAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, playerID string) error) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing claims")
		return
	}
	if err := action(r.Context(), claims.PlayerID); err != nil {
		respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Leaderboard handles GET /v1/rooms/{code}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	entries, err := h.roomSvc.Leaderboard(r.Context(), code, 20)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// respondGameError maps core errors onto HTTP statuses.
func respondGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrGameStarted),
		errors.Is(err, game.ErrAlreadyStarted),
		errors.Is(err, game.ErrNeedMorePlayers),
		errors.Is(err, game.ErrAlreadyAnswered),
		errors.Is(err, game.ErrAnswersClosed),
		errors.Is(err, game.ErrInvalidChoice),
		errors.Is(err, game.ErrNotRevealed),
		errors.Is(err, game.ErrNotFinished),
		errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrNotInRoom):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrNotHost):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		respondError(w, http.StatusBadGateway, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
