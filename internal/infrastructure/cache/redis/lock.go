package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"respa-server/internal/infrastructure/config"
)

// unlockScript 自分が保持しているロックのみ解放する
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewClient 新しいRedisクライアントを作成
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Locker SET NX PXによる分散ロック
type Locker struct {
	client redis.Cmdable
	owner  string
}

// NewLocker 新しいLockerを作成
func NewLocker(client redis.Cmdable) *Locker {
	return &Locker{client: client, owner: uuid.New().String()}
}

// TryLock ロックの取得を試みる。他のインスタンスが保持している場合はfalse
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Unlock ロックを解放
func (l *Locker) Unlock(ctx context.Context, key string) error {
	if err := unlockScript.Run(ctx, l.client, []string{key}, l.owner).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Ping 接続を確認
func (l *Locker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
