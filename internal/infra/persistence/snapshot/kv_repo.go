// internal/infra/persistence/snapshot/kv_repo.go
package snapshot

import (
	"context"
	"fmt"
	"strings"

	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
	"github.com/binary-blogs/binary-blogs/pkg/service/utility"
)

// KeyPrefix 是快照在键值存储中的命名空间
const KeyPrefix = "binaryblogs:snapshot:"

type kvRepository struct {
	cache utility.CacheService
}

// NewKVRepository 基于缓存服务（Redis 或内存）创建快照仓库。快照不设置过期时间。
func NewKVRepository(cache utility.CacheService) repository.SnapshotRepository {
	return &kvRepository{cache: cache}
}

func (r *kvRepository) Load(ctx context.Context, key string) ([]byte, error) {
	val, ok, err := r.cache.Get(ctx, KeyPrefix+key)
	if err != nil {
		return nil, fmt.Errorf("读取快照 %s 失败: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	return []byte(val), nil
}

func (r *kvRepository) Save(ctx context.Context, key string, data []byte) error {
	if err := r.cache.Set(ctx, KeyPrefix+key, string(data), 0); err != nil {
		return fmt.Errorf("写入快照 %s 失败: %w", key, err)
	}
	return nil
}

func (r *kvRepository) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, KeyPrefix+key)
}

func (r *kvRepository) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.cache.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, KeyPrefix))
	}
	return out, nil
}
