package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	client, err := NewClient(&Config{Host: "localhost", Port: "6379"})
	if err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSeatDateKey(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "seat:seat-1:2026-03-02", SeatDateKey("seat-1", date))
}

func TestLockManager_AcquireLock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	manager := NewLockManager(client)
	prefix := "test-" + time.Now().Format("150405.000") + "-"

	t.Run("ロックを取得できる", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, prefix+"1", 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, lock)
		require.NoError(t, lock.Release(ctx))
	})

	t.Run("同じキーのロックは取得できない", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, prefix+"2", 5*time.Second)
		require.NoError(t, err)
		defer lock1.Release(ctx)

		lock2, err := manager.AcquireLock(ctx, prefix+"2", 5*time.Second)
		assert.ErrorIs(t, err, ErrLockNotAcquired)
		assert.Nil(t, lock2)
	})

	t.Run("リトライで取得できる", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, prefix+"3", 5*time.Second)
		require.NoError(t, err)

		go func() {
			time.Sleep(200 * time.Millisecond)
			lock1.Release(ctx)
		}()

		lock2, err := manager.AcquireLockWithRetry(ctx, prefix+"3", 5*time.Second, 10, 100*time.Millisecond)
		require.NoError(t, err)
		require.NoError(t, lock2.Release(ctx))
	})

	t.Run("解放後は延長できない", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, prefix+"4", time.Second)
		require.NoError(t, err)
		require.NoError(t, lock.Extend(ctx, 5*time.Second))
		require.NoError(t, lock.Release(ctx))

		assert.ErrorIs(t, lock.Extend(ctx, 5*time.Second), ErrLockNotOwned)
		assert.ErrorIs(t, lock.Release(ctx), ErrLockNotOwned)
	})
}

func TestAcquireAll(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	manager := NewLockManager(client)
	prefix := "test-all-" + time.Now().Format("150405.000") + "-"

	t.Run("複数キーをまとめて取得・解放できる", func(t *testing.T) {
		lock, err := AcquireAll(ctx, manager, []string{prefix + "b", prefix + "a", prefix + "b"}, 5*time.Second, 1, 10*time.Millisecond)
		require.NoError(t, err)

		_, err = manager.AcquireLock(ctx, prefix+"a", time.Second)
		assert.ErrorIs(t, err, ErrLockNotAcquired)

		require.NoError(t, lock.Release(ctx))

		again, err := manager.AcquireLock(ctx, prefix+"a", time.Second)
		require.NoError(t, err)
		require.NoError(t, again.Release(ctx))
	})

	t.Run("一部が取得できない場合は取得済み分を解放する", func(t *testing.T) {
		held, err := manager.AcquireLock(ctx, prefix+"z", 5*time.Second)
		require.NoError(t, err)
		defer held.Release(ctx)

		_, err = AcquireAll(ctx, manager, []string{prefix + "y", prefix + "z"}, 5*time.Second, 1, 10*time.Millisecond)
		assert.ErrorIs(t, err, ErrLockNotAcquired)

		y, err := manager.AcquireLock(ctx, prefix+"y", time.Second)
		require.NoError(t, err)
		require.NoError(t, y.Release(ctx))
	})
}
