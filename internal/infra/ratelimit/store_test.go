package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int, error)
}

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:abuse")
}

func stores(t *testing.T) map[string]store {
	return map[string]store{
		"memory": NewMemoryStore(),
		"redis":  newRedisStore(t),
	}
}

func TestStore_SlidingWindow(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
			window := 10 * time.Minute

			for i := 0; i < 5; i++ {
				allowed, count, err := s.Hit(ctx, "+5491100000000", start.Add(time.Duration(i)*time.Minute), window, 5)
				require.NoError(t, err)
				assert.True(t, allowed)
				assert.Equal(t, i+1, count)
			}

			allowed, count, err := s.Hit(ctx, "+5491100000000", start.Add(5*time.Minute), window, 5)
			require.NoError(t, err)
			assert.False(t, allowed)
			assert.Equal(t, 5, count)

			// другой телефон не затронут
			allowed, _, err = s.Hit(ctx, "+5491100000001", start.Add(5*time.Minute), window, 5)
			require.NoError(t, err)
			assert.True(t, allowed)

			// первая попытка выпала из окна
			allowed, count, err = s.Hit(ctx, "+5491100000000", start.Add(10*time.Minute+time.Second), window, 5)
			require.NoError(t, err)
			assert.True(t, allowed)
			assert.Equal(t, 5, count)
		})
	}
}

func TestStore_Concurrent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now()

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				allowed int
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, _, err := s.Hit(ctx, "shared", now, time.Minute, 5)
					assert.NoError(t, err)
					if ok {
						mu.Lock()
						allowed++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 5, allowed)
		})
	}
}

func TestMemoryStore_DropsStaleKeys(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	window := 15 * time.Minute

	for i := 0; i < 3; i++ {
		_, _, err := s.Hit(context.Background(), fmt.Sprintf("k%d", i), now.Add(-time.Duration(i)*10*time.Minute), window, 5)
		require.NoError(t, err)
	}

	_, _, err := s.Hit(context.Background(), "fresh", now.Add(window), window, 5)
	require.NoError(t, err)

	assert.NotContains(t, s.hits, "k0")
	assert.NotContains(t, s.hits, "k1")
	assert.NotContains(t, s.hits, "k2")
	assert.Contains(t, s.hits, "fresh")
}
