/*
 * @module service/rate_limiter/redis_rate_limiter
 * @description 基于Redis的分布式限流服务，按客户端地址限制完整度查询接口的请求频率
 * @architecture 工具层 - 提供分布式限流能力
 * @stateFlow 请求 -> 构造窗口Key -> Redis原子计数 -> 判断是否超限 -> 放行或返回429
 * @rules 使用Redis INCR和EXPIRE实现固定窗口限流；Redis不可用时放行并记录告警
 * @dependencies github.com/go-redis/redis/v8
 * @refs api/routes.go
 */

package rate_limiter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"completion-service/service/config"

	"github.com/go-redis/redis/v8"
)

// RateLimitResult 限流检查结果
type RateLimitResult struct {
	Allowed   bool   `json:"allowed"`   // 是否允许请求
	Limit     int    `json:"limit"`     // 限制数量
	Remaining int    `json:"remaining"` // 剩余数量
	ResetAt   int64  `json:"reset_at"`  // 重置时间（Unix时间戳）
	Message   string `json:"message"`   // 提示信息
}

// Limiter 限流器
type Limiter interface {
	Allow(ctx context.Context, key string) (*RateLimitResult, error)
}

// RedisRateLimiter Redis限流器
type RedisRateLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

// 原子地检查并递增窗口计数，返回 {是否允许, 当前计数, 剩余秒数}
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local max_requests = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', key) or '0')
	if current >= max_requests then
		local ttl = redis.call('TTL', key)
		if ttl < 0 then
			ttl = window
		end
		return {0, current, ttl}
	end

	local new_count = redis.call('INCR', key)
	if new_count == 1 then
		redis.call('EXPIRE', key, window)
	end

	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end
	return {1, new_count, ttl}
`)

// NewRedisRateLimiter 创建Redis限流器，maxRequests 为每分钟允许的请求数
func NewRedisRateLimiter(cfg config.RedisConfig, maxRequests int) (*RedisRateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	slog.Info("Redis限流器初始化成功",
		"redis_host", cfg.Host,
		"redis_port", cfg.Port,
		"max_requests_per_minute", maxRequests)

	return &RedisRateLimiter{
		client:      client,
		maxRequests: maxRequests,
		window:      time.Minute,
	}, nil
}

// Allow 检查指定客户端在当前窗口内是否超限
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (*RateLimitResult, error) {
	windowSeconds := int(r.window.Seconds())
	redisKey := buildRateLimitKey(key, windowSeconds, time.Now())

	result, err := allowScript.Run(ctx, r.client, []string{redisKey}, r.maxRequests, windowSeconds).Result()
	if err != nil {
		return nil, fmt.Errorf("限流检查失败: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return nil, fmt.Errorf("限流脚本返回格式错误: %v", result)
	}
	allowed := values[0].(int64) == 1
	current := int(values[1].(int64))
	ttl := int(values[2].(int64))

	return newResult(allowed, r.maxRequests, current, ttl), nil
}

func newResult(allowed bool, limit, current, ttlSeconds int) *RateLimitResult {
	remaining := limit - current
	if remaining < 0 {
		remaining = 0
	}
	message := "允许请求"
	if !allowed {
		message = fmt.Sprintf("请求过于频繁，每分钟最多%d次", limit)
	}
	return &RateLimitResult{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(time.Duration(ttlSeconds) * time.Second).Unix(),
		Message:   message,
	}
}

// buildRateLimitKey 构造限流Key，同一窗口内的请求落在同一个Key上
func buildRateLimitKey(client string, windowSeconds int, now time.Time) string {
	return fmt.Sprintf("rate_limit:completion:%s:%d", client, now.Unix()/int64(windowSeconds))
}

// Close 关闭Redis客户端
func (r *RedisRateLimiter) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
