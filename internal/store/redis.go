package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mvoronin/jobscout/internal/model"
)

// Ensure RedisStore implements model.SettingsStore.
var _ model.SettingsStore = (*RedisStore)(nil)

const redisKeyPrefix = "jobscout:settings:"

// RedisStore keeps each user's settings as a JSON blob under
// jobscout:settings:<user_id>. Per-user writes are serialized by the
// session layer, so a read-merge-write here is safe.
type RedisStore struct {
	client *redis.Client
}

// redisRecord is the stored JSON shape.
type redisRecord struct {
	Keywords   []string `json:"keywords"`
	Locations  []string `json:"locations"`
	SalaryMin  int      `json:"salary_min"`
	Experience string   `json:"experience"`
}

// NewRedisStore parses redisURL, verifies connectivity, and returns the store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func redisKey(userID int64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, userID)
}

// Get returns the stored record for userID, or ok=false when none exists.
func (s *RedisStore) Get(ctx context.Context, userID int64) (model.Settings, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(userID)).Result()
	if err == redis.Nil {
		return model.Settings{}, false, nil
	}
	if err != nil {
		return model.Settings{}, false, fmt.Errorf("reading settings for user %d: %w", userID, err)
	}

	var rec redisRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return model.Settings{}, false, fmt.Errorf("decoding settings for user %d: %w", userID, err)
	}

	return model.Settings{
		Keywords:   rec.Keywords,
		Locations:  rec.Locations,
		SalaryMin:  rec.SalaryMin,
		Experience: model.Experience(rec.Experience),
	}, true, nil
}

// Upsert merges patch over the existing record (or the defaults) and writes
// the full result back.
func (s *RedisStore) Upsert(ctx context.Context, userID int64, patch model.Patch) (model.Settings, error) {
	base, ok, err := s.Get(ctx, userID)
	if err != nil {
		return model.Settings{}, err
	}
	if !ok {
		base = model.DefaultSettings()
	}
	merged := patch.Apply(base)

	raw, err := json.Marshal(redisRecord{
		Keywords:   merged.Keywords,
		Locations:  merged.Locations,
		SalaryMin:  merged.SalaryMin,
		Experience: string(merged.Experience),
	})
	if err != nil {
		return model.Settings{}, fmt.Errorf("encoding settings for user %d: %w", userID, err)
	}

	if err := s.client.Set(ctx, redisKey(userID), raw, 0).Err(); err != nil {
		return model.Settings{}, fmt.Errorf("saving settings for user %d: %w", userID, err)
	}

	return merged, nil
}

// Users scans for all settings keys and returns the user IDs.
func (s *RedisStore) Users(ctx context.Context) ([]int64, error) {
	var ids []int64
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		var id int64
		if _, err := fmt.Sscanf(iter.Val(), redisKeyPrefix+"%d", &id); err != nil {
			continue // foreign key under our prefix
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return ids, nil
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
