/*
 * @Description: 按 Redis 是否可用选择缓存实现
 */
package utility

import (
	"log"

	"github.com/redis/go-redis/v9"
)

// Backend 缓存实际使用的后端
type Backend string

const (
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// NewCacheServiceWithFallback 有 Redis 客户端时使用 Redis，否则退回内存缓存。
// redisClient 应来自 database.NewRedisClient，连通性已在那里检查过。
func NewCacheServiceWithFallback(redisClient *redis.Client) (CacheService, Backend) {
	if redisClient == nil {
		log.Println("[Cache] Redis 不可用，使用内存缓存")
		return NewMemoryCacheService(), BackendMemory
	}
	return NewCacheService(redisClient), BackendRedis
}
