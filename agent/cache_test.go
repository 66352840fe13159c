package agent

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tbxark/convoform/internal/modeltest"
	"github.com/tbxark/convoform/types"
)

func sampleState(t *testing.T) *State {
	t.Helper()
	return &State{
		Version: CheckpointVersion,
		Status:  types.StatusAwaitHuman,
		Record:  reservation(t),
		Messages: []*schema.Message{
			schema.SystemMessage("sys"),
			schema.AssistantMessage("Who is this for?", nil),
		},
	}
}

func caches(t *testing.T) map[string]Cache[*State] {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "checkpoints.db")), &gorm.Config{})
	require.NoError(t, err)
	gc, err := NewGormCache[*State](db, StateCodec{})
	require.NoError(t, err)

	return map[string]Cache[*State]{
		"memory": NewMemoryCache[*State](StateCodec{}),
		"redis":  NewRedisCache[*State](client, StateCodec{}, time.Hour, nil),
		"gorm":   gc,
	}
}

func TestCaches(t *testing.T) {
	for name, cache := range caches(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, ok, err := cache.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			st := sampleState(t)
			require.NoError(t, cache.Set(ctx, "k", st))
			exists, err := cache.Exists(ctx, "k")
			require.NoError(t, err)
			assert.True(t, exists)

			got, ok, err := cache.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, st.Status, got.Status)
			assert.Equal(t, []string{"name", "guests"}, got.Record.Missing())
			require.Len(t, got.Messages, 2)
			assert.Equal(t, "Who is this for?", got.Messages[1].Content)

			st.Status = types.StatusTerminal
			require.NoError(t, cache.Set(ctx, "k", st))
			got, _, err = cache.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, types.StatusTerminal, got.Status)

			require.NoError(t, cache.Del(ctx, "k"))
			exists, err = cache.Exists(ctx, "k")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestMemoryCacheDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache[*State](nil)
	st := sampleState(t)
	require.NoError(t, cache.Set(ctx, "k", st))

	st.Messages = append(st.Messages, schema.UserMessage("later"))
	got, _, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, []string{"k"}, cache.Keys())
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache[*State](client, StateCodec{}, time.Minute, nil)

	require.NoError(t, cache.Set(ctx, "k", sampleState(t)))
	assert.Equal(t, time.Minute, mr.TTL("k"))
	mr.FastForward(2 * time.Minute)
	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnmarshalCheckpointVersion(t *testing.T) {
	st := sampleState(t)
	st.Version = "0.1"
	data, err := MarshalCheckpoint(st)
	require.NoError(t, err)
	_, err = UnmarshalCheckpoint(data)
	require.ErrorIs(t, err, ErrCheckpointVersion)
}

func TestStoreRequiresThread(t *testing.T) {
	store := NewStore[*State](NewMemoryCache[*State](StateCodec{}), "")
	_, _, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrNoThread)
	assert.Equal(t, "convoform:thread:abc", store.Key("abc"))

	ctx := WithThreadID(context.Background(), "abc")
	require.NoError(t, store.Save(ctx, sampleState(t)))
	ok, err := store.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOrchestratorOnRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache[*State](client, StateCodec{}, 0, nil)

	m := modeltest.New(modeltest.Say("Hi"))
	o, err := New(reservation(t), m, WithStore(cache), WithNamespace("booking"))
	require.NoError(t, err)
	_, err = o.Advance(ctx, "t1", nil)
	require.NoError(t, err)
	assert.True(t, mr.Exists("booking:t1"))
}
