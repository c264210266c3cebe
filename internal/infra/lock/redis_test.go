package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	mu   sync.Mutex
	keys map[string]interface{}
	err  error
}

func newFakeRedis() *fakeRedis { return &fakeRedis{keys: map[string]interface{}{}} }

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = value
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[keys[0]] == args[0] {
		delete(f.keys, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestLockAndRelease(t *testing.T) {
	rdb := newFakeRedis()
	l := NewRedisLocker(rdb, time.Second, 100*time.Millisecond)
	l.poll = 5 * time.Millisecond

	unlock, err := l.Lock(context.Background(), "attendance:42")
	require.NoError(t, err)
	assert.Contains(t, rdb.keys, "lock:attendance:42")

	_, err = l.Lock(context.Background(), "attendance:42")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	assert.NotContains(t, rdb.keys, "lock:attendance:42")

	unlock2, err := l.Lock(context.Background(), "attendance:42")
	require.NoError(t, err)
	unlock2()
}

func TestReleaseKeepsForeignKey(t *testing.T) {
	rdb := newFakeRedis()
	l := NewRedisLocker(rdb, time.Second, 10*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	// ключ истёк и его занял другой экземпляр
	rdb.keys["lock:k"] = "other"
	unlock()
	assert.Equal(t, "other", rdb.keys["lock:k"])
}

func TestLockRedisError(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")
	l := NewRedisLocker(rdb, time.Second, time.Second)

	_, err := l.Lock(context.Background(), "k")
	assert.EqualError(t, err, "connection refused")
}

func TestLockContextCancelled(t *testing.T) {
	rdb := newFakeRedis()
	l := NewRedisLocker(rdb, time.Second, time.Minute)
	_, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
