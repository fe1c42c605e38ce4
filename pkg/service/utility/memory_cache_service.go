/*
 * @Description: 内存缓存服务实现（Redis 不可用时的降级方案）
 */
package utility

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"
)

// cacheItem 缓存项结构
type cacheItem struct {
	value      string
	expiration time.Time
}

func (item cacheItem) isExpired(now time.Time) bool {
	return !item.expiration.IsZero() && now.After(item.expiration)
}

// memoryCacheService 是基于内存的缓存服务实现
type memoryCacheService struct {
	mu     sync.RWMutex
	data   map[string]cacheItem
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewMemoryCacheService 创建内存缓存服务实例
func NewMemoryCacheService() CacheService {
	svc := &memoryCacheService{
		data:   make(map[string]cacheItem),
		ticker: time.NewTicker(time.Minute),
		done:   make(chan struct{}),
	}
	go svc.cleanupExpired()
	return svc
}

// cleanupExpired 定期清理过期的缓存项
func (s *memoryCacheService) cleanupExpired() {
	for {
		select {
		case now := <-s.ticker.C:
			s.mu.Lock()
			for key, item := range s.data {
				if item.isExpired(now) {
					delete(s.data, key)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

func (s *memoryCacheService) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	item := cacheItem{value: value}
	if expiration > 0 {
		item.expiration = time.Now().Add(expiration)
	}
	s.mu.Lock()
	s.data[key] = item
	s.mu.Unlock()
	return nil
}

func (s *memoryCacheService) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	item, ok := s.data[key]
	s.mu.RUnlock()
	if !ok || item.isExpired(time.Now()) {
		return "", false, nil
	}
	return item.value, true, nil
}

func (s *memoryCacheService) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.data, key)
	}
	s.mu.Unlock()
	return nil
}

// Scan 使用 path.Match 解释 glob 模式，与 Redis 的 * ? [] 语义一致
func (s *memoryCacheService) Scan(ctx context.Context, pattern string) ([]string, error) {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key, item := range s.data {
		if item.isExpired(now) {
			continue
		}
		matched, err := path.Match(pattern, key)
		if err != nil {
			return nil, err
		}
		if matched {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close 停止清理任务
func (s *memoryCacheService) Close() error {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
	return nil
}
