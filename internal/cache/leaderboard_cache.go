package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const winsKey = "leaderboard:wins"

// LeaderboardCache tracks all-time win counts in a Redis ZSET.
type LeaderboardCache interface {
	IncrementWins(ctx context.Context, playerID string) error
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Rank(ctx context.Context, playerID string) (int64, error)
}

// LeaderboardEntry is a single leaderboard row.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Wins     int    `json:"wins"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache.
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) IncrementWins(ctx context.Context, playerID string) error {
	return c.client.ZIncrBy(ctx, winsKey, 1, playerID).Err()
}

func (c *leaderboardCache) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, winsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerID: z.Member.(string),
			Wins:     int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) Rank(ctx context.Context, playerID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, winsKey, playerID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
