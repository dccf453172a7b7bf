package editor

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisKV connects to REDIS_TEST_ADDRESS and skips when it is unset
// or unreachable.
func newTestRedisKV(t *testing.T) *RedisKV {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDRESS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return NewRedisKVWithClient(client, time.Minute)
}

func TestRedisKV(t *testing.T) {
	kv := newTestRedisKV(t)
	key := DraftKey("redis-flow")

	_, err := kv.Get(key)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(key, []byte("{}")))
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))

	keys, err := kv.Keys(draftKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	require.NoError(t, kv.Delete(key))
	_, err = kv.Get(key)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisBackedDraftStore(t *testing.T) {
	drafts := NewDraftStore(newTestRedisKV(t), quietLogger())
	drafts.SaveSteps("f1", sampleSteps())

	got := drafts.Read("f1")
	require.NotNil(t, got)
	assert.Equal(t, canonical(sampleSteps()), canonical(got.StepsDraft))
	assert.Equal(t, []string{"f1"}, drafts.Flows())
}
