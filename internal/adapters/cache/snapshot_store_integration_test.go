//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	redisclient "github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/redis"
)

func TestRedisSnapshotStore_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisSnapshotStore(redisclient.NewFromClient(rdb), "donorconnect:test")

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	at := time.Date(2026, 1, 15, 6, 0, 0, 0, time.UTC)
	want := entities.Snapshot{
		Donors:   []entities.Donor{{ID: "d-1", Name: "Asha", BloodType: entities.BloodTypeAPositive, Region: "bangalore", RegisteredAt: at}},
		Requests: []entities.EmergencyRequest{{SequenceID: 1, PatientName: "Ravi", BloodType: entities.BloodTypeAPositive, Region: "bangalore", CreatedAt: at}},
		SavedAt:  at,
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
