package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache mirrors per-room scores in a Redis ZSET so the gateway
// can serve rankings without loading the room document.
type LeaderboardCache interface {
	UpdateScore(ctx context.Context, roomCode, playerID string, score int) error
	GetTop(ctx context.Context, roomCode string, limit int) ([]LeaderboardEntry, error)
	RemovePlayer(ctx context.Context, roomCode, playerID string) error
	Delete(ctx context.Context, roomCode string) error
}

// LeaderboardEntry is a single ranked line. Name is filled in by the
// service from the room document; the ZSET only knows ids and scores.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache.
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{client: client}
}

func (c *leaderboardCache) key(roomCode string) string {
	return fmt.Sprintf("room:%s:lb", roomCode)
}

func (c *leaderboardCache) UpdateScore(ctx context.Context, roomCode, playerID string, score int) error {
	return c.client.ZAdd(ctx, c.key(roomCode), redis.Z{
		Score:  float64(score),
		Member: playerID,
	}).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, roomCode string, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(roomCode), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerID: z.Member.(string),
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) RemovePlayer(ctx context.Context, roomCode, playerID string) error {
	return c.client.ZRem(ctx, c.key(roomCode), playerID).Err()
}

func (c *leaderboardCache) Delete(ctx context.Context, roomCode string) error {
	return c.client.Del(ctx, c.key(roomCode)).Err()
}
