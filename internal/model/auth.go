package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims is the room-scoped JWT issued when a player creates or joins
// a room. The host is just the creating player with IsHost set.
type PlayerClaims struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	IsHost   bool   `json:"isHost"`
	jwt.RegisteredClaims
}
