package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// 所有者確認と削除・延長をアトミックに行う
var (
	releaseScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`)
	extendScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("PEXPIRE", KEYS[1], ARGV[2])
		end
		return 0
	`)
)

// Lock は取得済みのロック
type Lock interface {
	Release(ctx context.Context) error
	Extend(ctx context.Context, ttl time.Duration) error
}

// LockManagerInterface はロック取得の抽象
type LockManagerInterface interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (Lock, error)
	AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (Lock, error)
}

// SeatDateKey は座席・日付単位のロックキーを返す
func SeatDateKey(seatID string, date time.Time) string {
	return "seat:" + seatID + ":" + date.Format("2006-01-02")
}

// DistributedLock は Redis の SET NX による分散ロック
type DistributedLock struct {
	client *redis.Client
	key    string
	token  string
}

// LockManager は分散ロックを管理する
type LockManager struct {
	client *redis.Client
}

func NewLockManager(client *redis.Client) *LockManager {
	return &LockManager{client: client}
}

// AcquireLock はロックを1回だけ試行する
func (m *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lockKey := "lock:" + key
	token := uuid.NewString()

	ok, err := m.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}
	return &DistributedLock{client: m.client, key: lockKey, token: token}, nil
}

// AcquireLockWithRetry は競合時に retryDelay 間隔で maxRetries 回まで試行する
func (m *LockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (Lock, error) {
	lastErr := ErrLockNotAcquired
	for i := 0; i < maxRetries; i++ {
		lock, err := m.AcquireLock(ctx, key, ttl)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, lastErr
}

// AcquireAll はキーをソート順に取得する（途中で失敗した場合は取得済み分を解放する）
func AcquireAll(ctx context.Context, m LockManagerInterface, keys []string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (Lock, error) {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			sorted = append(sorted, k)
		}
	}
	sort.Strings(sorted)

	locks := make(multiLock, 0, len(sorted))
	for _, k := range sorted {
		l, err := m.AcquireLockWithRetry(ctx, k, ttl, maxRetries, retryDelay)
		if err != nil {
			_ = locks.Release(ctx)
			return nil, err
		}
		locks = append(locks, l)
	}
	return locks, nil
}

// multiLock は複数キーのロックをまとめて扱う
type multiLock []Lock

func (ml multiLock) Release(ctx context.Context) error {
	var errs []error
	for i := len(ml) - 1; i >= 0; i-- {
		if err := ml[i].Release(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ml multiLock) Extend(ctx context.Context, ttl time.Duration) error {
	for _, l := range ml {
		if err := l.Extend(ctx, ttl); err != nil {
			return err
		}
	}
	return nil
}

// Release はロックを解放する
func (l *DistributedLock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if n == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// Extend はロックの有効期限を延長する
func (l *DistributedLock) Extend(ctx context.Context, ttl time.Duration) error {
	n, err := extendScript.Run(ctx, l.client, []string{l.key}, l.token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("ロック延長に失敗: %w", err)
	}
	if n == 0 {
		return ErrLockNotOwned
	}
	return nil
}
