// internal/infra/persistence/snapshot/factory.go
package snapshot

import (
	"context"
	"fmt"
	"log"

	"github.com/binary-blogs/binary-blogs/internal/infra/persistence/database"
	"github.com/binary-blogs/binary-blogs/pkg/config"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"
	"github.com/binary-blogs/binary-blogs/pkg/service/utility"
)

// NewRepositoryFromConfig 按 Storage.Driver 选择快照后端，返回仓库和释放资源的函数
func NewRepositoryFromConfig(ctx context.Context, cfg *config.Config) (repository.SnapshotRepository, func(), error) {
	driver := constant.StorageDriver(cfg.GetString(config.KeyStorageDriver))
	switch driver {
	case constant.StorageDriverDatabase:
		db, dialectName, err := database.NewSQLDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo, err := NewSQLRepository(ctx, db, dialectName)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Printf("[Snapshot] 使用数据库快照存储 (%s)", dialectName)
		return repo, func() { db.Close() }, nil

	case constant.StorageDriverRedis:
		cache, backend := utility.NewCacheServiceWithFallback(database.NewRedisClient(ctx, cfg))
		log.Printf("[Snapshot] 使用键值快照存储 (%s)", backend)
		return NewKVRepository(cache), func() { cache.Close() }, nil

	case constant.StorageDriverMemory, "":
		cache := utility.NewMemoryCacheService()
		log.Println("[Snapshot] 使用内存快照存储，进程退出后数据不保留")
		return NewKVRepository(cache), func() { cache.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("不支持的存储驱动: %s (支持: memory, redis, database)", driver)
	}
}
