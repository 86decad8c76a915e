/*
 * @module service/distributed_lock/redis_lock
 * @description Redis分布式锁，多实例部署时保证同一时刻只有一个实例生成并发布完整度报告
 * @architecture 工具层 - 提供分布式锁能力
 * @stateFlow 获取锁 -> 执行任务 -> 释放锁/自动过期
 * @rules 使用 SET NX 加锁，持有者校验后才允许释放
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/report/scheduler.go, service/init.go
 */

package distributed_lock

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"completion-service/service/config"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "completion:lock:"

var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// DistributedLock 分布式锁接口
type DistributedLock interface {
	// TryLock 尝试获取锁，已被其他实例持有时返回 false
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Unlock 释放锁
	Unlock(ctx context.Context, key string) error
}

// RedisLock Redis分布式锁实现
type RedisLock struct {
	client *redis.Client
	owner  string
}

// NewRedisLock 创建Redis分布式锁
func NewRedisLock(cfg config.RedisConfig) (*RedisLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	hostname, _ := os.Hostname()
	owner := fmt.Sprintf("%s:%d", hostname, os.Getpid())
	slog.Info("Redis分布式锁初始化成功", "owner", owner, "redis_host", cfg.Host)

	return &RedisLock{client: client, owner: owner}, nil
}

// lockKey 锁在 Redis 中的键
func lockKey(key string) string {
	return keyPrefix + key
}

// TryLock 尝试获取锁
func (r *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(key), r.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("获取锁失败: %w", err)
	}
	if ok {
		slog.Debug("分布式锁: 成功获取锁", "key", key, "ttl", ttl, "owner", r.owner)
	}
	return ok, nil
}

// Unlock 释放锁，只有持有者才能删除
func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	n, err := unlockScript.Run(ctx, r.client, []string{lockKey(key)}, r.owner).Int64()
	if err != nil {
		return fmt.Errorf("释放锁失败: %w", err)
	}
	if n == 0 {
		slog.Warn("分布式锁: 锁不存在或已被其他实例持有", "key", key, "owner", r.owner)
	}
	return nil
}

// Close 关闭Redis客户端
func (r *RedisLock) Close() error {
	return r.client.Close()
}

// LockExecutor 带锁执行器
type LockExecutor struct {
	lock DistributedLock
}

// NewLockExecutor 创建带锁执行器
func NewLockExecutor(lock DistributedLock) *LockExecutor {
	return &LockExecutor{lock: lock}
}

// ExecuteWithLock 在锁保护下执行函数；锁被其他实例持有时跳过执行，返回 executed=false
func (e *LockExecutor) ExecuteWithLock(ctx context.Context, key string, ttl time.Duration, fn func() error) (executed bool, err error) {
	locked, err := e.lock.TryLock(ctx, key, ttl)
	if err != nil {
		return false, err
	}
	if !locked {
		slog.Debug("分布式锁: 锁已被其他实例持有，跳过执行", "key", key)
		return false, nil
	}

	defer func() {
		// 任务可能因 ctx 超时结束，释放锁使用独立的上下文
		unlockCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if unlockErr := e.lock.Unlock(unlockCtx, key); unlockErr != nil {
			slog.Error("分布式锁: 释放锁失败", "key", key, "error", unlockErr)
		}
	}()

	return true, fn()
}
