package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

// fakeRedis serves Get/Set/Del from a map; any other command panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	values  map[string]string
	ttls    map[string]time.Duration
	deleted []string
	getErr  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		f.deleted = append(f.deleted, key)
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type cachedStats struct {
	Year          int `json:"year"`
	TotalStations int `json:"total_stations"`
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	client := newFakeRedis()
	repo := NewCacheRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "season-stats:2024", cachedStats{Year: 2024, TotalStations: 12}, time.Hour))
	assert.Equal(t, time.Hour, client.ttls["season-stats:2024"])

	var got cachedStats
	require.NoError(t, repo.Get(ctx, "season-stats:2024", &got))
	assert.Equal(t, cachedStats{Year: 2024, TotalStations: 12}, got)

	require.NoError(t, repo.DeleteByPattern(ctx, "season-stats:2024"))
	assert.ErrorIs(t, repo.Get(ctx, "season-stats:2024", &got), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDropsUndecodableEntry(t *testing.T) {
	client := newFakeRedis()
	client.values["season-stats:2023"] = "{not json"
	repo := NewCacheRepository(client, nil)

	var got cachedStats
	err := repo.Get(context.Background(), "season-stats:2023", &got)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Equal(t, []string{"season-stats:2023"}, client.deleted)
}

func TestCacheRepositoryWrapsBackendErrors(t *testing.T) {
	client := newFakeRedis()
	client.getErr = errors.New("connection refused")
	repo := NewCacheRepository(client, nil)

	var got cachedStats
	err := repo.Get(context.Background(), "season-stats:2022", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCacheRepositoryNilClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var got cachedStats
	assert.ErrorIs(t, repo.Get(ctx, "season-stats:2024", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "season-stats:2024", got, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "season-stats:*"))
}
