package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/redis"
)

// RedisSnapshotStore keeps the whole snapshot as one JSON value under key.
type RedisSnapshotStore struct {
	client *redisclient.Client
	key    string
}

// NewRedisSnapshotStore creates a snapshot store writing to key.
func NewRedisSnapshotStore(client *redisclient.Client, key string) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: key}
}

var _ providers.SnapshotStore = (*RedisSnapshotStore)(nil)

// Save replaces the stored snapshot
func (s *RedisSnapshotStore) Save(ctx context.Context, snapshot entities.Snapshot) error {
	if snapshot.SavedAt.IsZero() {
		snapshot.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Client().Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or an empty one if none exists
func (s *RedisSnapshotStore) Load(ctx context.Context) (entities.Snapshot, error) {
	data, err := s.client.Client().Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.Snapshot{Donors: []entities.Donor{}, Requests: []entities.EmergencyRequest{}}, nil
	}
	if err != nil {
		return entities.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot entities.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return entities.Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", s.key, err)
	}
	if snapshot.Donors == nil {
		snapshot.Donors = []entities.Donor{}
	}
	if snapshot.Requests == nil {
		snapshot.Requests = []entities.EmergencyRequest{}
	}
	return snapshot, nil
}
