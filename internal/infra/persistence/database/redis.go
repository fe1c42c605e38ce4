/*
 * @Description: Redis 客户端
 */
package database

import (
	"context"
	"log"
	"time"

	"github.com/binary-blogs/binary-blogs/pkg/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient 接收配置并返回 Redis 客户端或 nil（用于自动降级）
// 如果 Redis 未配置或连接失败，返回 nil 而不是 error，让上层降级到内存缓存
func NewRedisClient(ctx context.Context, cfg *config.Config) *redis.Client {
	redisAddr := cfg.GetString(config.KeyRedisAddr)
	if redisAddr == "" {
		log.Println("⚠️  Redis 地址未配置，将使用内存缓存")
		return nil
	}
	redisDB := cfg.GetInt(config.KeyRedisDB)

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: cfg.GetString(config.KeyRedisPassword),
		DB:       redisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("⚠️  连接 Redis (%s, DB %d) 失败: %v，将使用内存缓存", redisAddr, redisDB, err)
		rdb.Close()
		return nil
	}

	log.Printf("✅ 成功连接到 Redis (%s, DB %d)", redisAddr, redisDB)
	return rdb
}
