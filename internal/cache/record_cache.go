package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DaveMolla/Emoji-Game/internal/model"
)

const recordTTL = 10 * time.Minute

// RecordCache keeps recently archived game records in Redis so end-of-game
// queries don't hit MongoDB.
type RecordCache interface {
	Set(ctx context.Context, record *model.GameRecord) error
	Get(ctx context.Context, sessionID string) (*model.GameRecord, error)
	Delete(ctx context.Context, sessionID string) error
}

type recordCache struct {
	client *redis.Client
}

func NewRecordCache(client *redis.Client) RecordCache {
	return &recordCache{
		client: client,
	}
}

func (c *recordCache) Set(ctx context.Context, record *model.GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "session:"+record.SessionID, data, recordTTL).Err()
}

func (c *recordCache) Get(ctx context.Context, sessionID string) (*model.GameRecord, error) {
	data, err := c.client.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record model.GameRecord
	err = json.Unmarshal([]byte(data), &record)
	return &record, err
}

func (c *recordCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, "session:"+sessionID).Err()
}
